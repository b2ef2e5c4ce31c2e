// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/tuneinsight/lattigo/v4/utils/factorization"

	"github.com/blinklabs-io/fpowd/bigint"
)

var ErrUnprovable = errors.New("target cannot be proven")

// Prove factors the target for prev and bitLength and returns the encoded
// proof. Factoring cost grows quickly with bitLength, this is meant for
// tooling and tests rather than competitive mining.
func (v *Verifier) Prove(prev BlockID, bitLength uint32) ([]byte, error) {
	if bitLength > v.maxBitLength {
		return nil, fmt.Errorf("%w: %d", ErrBitLengthTooLarge, bitLength)
	}
	target, err := DeriveTarget(prev, bitLength)
	if err != nil {
		return nil, err
	}
	entries, err := Factorize(target)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !v.oracle.IsPrime(entry.Factor) {
			return nil, fmt.Errorf(
				"%w: factor %s is not accepted by the %s oracle",
				ErrUnprovable,
				entry.Factor,
				v.oracle.Policy(),
			)
		}
	}
	proof, err := EncodeFactors(entries)
	if err != nil {
		return nil, err
	}
	if err := v.Verify(prev, bitLength, proof); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnprovable, err)
	}
	return proof, nil
}

// Factorize returns the prime factorization of n in increasing order. Table
// primes are divided out first; whatever is left is handed to the lattigo
// factoring routines.
func Factorize(n *bigint.Int) ([]FactorEntry, error) {
	remaining := n.ToBig()
	one := big.NewInt(1)
	switch remaining.Cmp(one) {
	case -1:
		return nil, fmt.Errorf("%w: zero has no factorization", ErrUnprovable)
	case 0:
		return nil, nil
	}
	var ret []FactorEntry
	divideOut := func(p *big.Int) error {
		quo, rem := new(big.Int), new(big.Int)
		var count uint32
		for remaining.Cmp(one) > 0 {
			quo.QuoRem(remaining, p, rem)
			if rem.Sign() != 0 {
				break
			}
			remaining.Set(quo)
			count++
		}
		if count == 0 {
			return nil
		}
		factor, err := bigint.FromBig(p)
		if err != nil {
			return err
		}
		ret = append(ret, FactorEntry{Factor: factor, Count: count})
		return nil
	}
	small := new(big.Int)
	for _, p := range primes8Bit {
		if err := divideOut(small.SetUint64(uint64(p))); err != nil {
			return nil, err
		}
	}
	for _, p := range primes16Bit {
		if err := divideOut(small.SetUint64(uint64(p))); err != nil {
			return nil, err
		}
	}
	if remaining.Cmp(one) == 0 {
		return ret, nil
	}
	var primes []*big.Int
	if remaining.ProbablyPrime(20) {
		primes = []*big.Int{new(big.Int).Set(remaining)}
	} else {
		primes = factorization.GetFactors(new(big.Int).Set(remaining))
		slices.SortFunc(primes, func(a, b *big.Int) int {
			return a.Cmp(b)
		})
		primes = slices.CompactFunc(primes, func(a, b *big.Int) bool {
			return a.Cmp(b) == 0
		})
	}
	for _, p := range primes {
		if err := divideOut(p); err != nil {
			return nil, err
		}
	}
	if remaining.Cmp(one) != 0 {
		return nil, fmt.Errorf(
			"%w: unfactored remainder %x",
			ErrUnprovable,
			remaining,
		)
	}
	return ret, nil
}
