// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package proof_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/blinklabs-io/fpowd/internal/proof"
)

func TestUvarint(t *testing.T) {
	testDefs := []struct {
		value   uint64
		encoded []byte
	}{
		{value: 0, encoded: []byte{0x00}},
		{value: 0xfc, encoded: []byte{0xfc}},
		{value: 0xfd, encoded: []byte{0xfd, 0xfd, 0x00}},
		{value: 0xffff, encoded: []byte{0xfd, 0xff, 0xff}},
		{value: 0x10000, encoded: []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		{value: 0x100000000, encoded: []byte{0xff, 0, 0, 0, 0, 1, 0, 0, 0}},
	}
	for _, td := range testDefs {
		encoded := proof.WriteUvarint(td.value)
		if !bytes.Equal(encoded, td.encoded) {
			t.Fatalf("did not get expected encoding for %d: got %x, want %x", td.value, encoded, td.encoded)
		}
		decoded, err := proof.ReadUvarint(bytes.NewReader(td.encoded))
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if decoded != td.value {
			t.Fatalf("did not get expected value: got %d, want %d", decoded, td.value)
		}
	}
}

func TestUvarintErrors(t *testing.T) {
	testDefs := []struct {
		name         string
		encoded      []byte
		nonCanonical bool
	}{
		{name: "empty", encoded: []byte{}},
		{name: "short uint16", encoded: []byte{0xfd, 0x01}},
		{name: "short uint32", encoded: []byte{0xfe, 0x01, 0x02}},
		{name: "short uint64", encoded: []byte{0xff, 0x01}},
		{name: "uint16 below prefix", encoded: []byte{0xfd, 0xfc, 0x00}, nonCanonical: true},
		{name: "uint32 fits uint16", encoded: []byte{0xfe, 0xff, 0xff, 0x00, 0x00}, nonCanonical: true},
		{name: "uint64 fits uint32", encoded: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0}, nonCanonical: true},
	}
	for _, td := range testDefs {
		_, err := proof.ReadUvarint(bytes.NewReader(td.encoded))
		if err == nil {
			t.Fatalf("%s: expected error, got none", td.name)
		}
		if errors.Is(err, proof.ErrNonCanonicalVarint) != td.nonCanonical {
			t.Fatalf("%s: unexpected error: %s", td.name, err)
		}
	}
}
