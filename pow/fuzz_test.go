// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow_test

import (
	"testing"

	"github.com/blinklabs-io/fpowd/pow"
)

func FuzzCheckPrimeFactorization(f *testing.F) {
	f.Add(uint32(8), []byte{1, 0x03, 1, 0x01, 1, 0x07, 1, 0x02})
	f.Add(uint32(24), []byte{2, 0x6f, 0x01, 1, 1, 2, 0x5f, 0x6b, 1, 1})
	f.Add(uint32(0), []byte{})
	f.Add(uint32(512), []byte{64})
	f.Add(uint32(8), []byte{1, 0x03, 4, 0xff, 0xff, 0xff, 0xff})
	f.Fuzz(func(t *testing.T, bitLength uint32, factors []byte) {
		bitLength %= 1024
		// Must never panic, and decoding must agree with verification
		ok := pow.CheckPrimeFactorization(zeroBlock, bitLength, factors)
		entries, err := pow.DecodeFactors(factors)
		if ok && err != nil {
			t.Fatalf("accepted a proof that does not decode: %s", err)
		}
		if err != nil {
			return
		}
		reencoded, err := pow.EncodeFactors(entries)
		if err != nil {
			return
		}
		if ok != pow.CheckPrimeFactorization(zeroBlock, bitLength, reencoded) {
			t.Fatalf("re-encoding %x changed the verdict", factors)
		}
	})
}
