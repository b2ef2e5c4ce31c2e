// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package bigint_test

import (
	"testing"

	"github.com/blinklabs-io/fpowd/bigint"
)

func TestBitwise(t *testing.T) {
	testDefs := []struct {
		name     string
		op       func(z, x *bigint.Int) error
		a        []byte
		b        []byte
		expected string
	}{
		{
			name: "and clears bytes past the operand",
			op: func(z, x *bigint.Int) error {
				z.And(x)
				return nil
			},
			a:        []byte{0xff, 0xff, 0xff},
			b:        []byte{0x0f},
			expected: "00000f",
		},
		{
			name: "and with longer operand keeps receiver length",
			op: func(z, x *bigint.Int) error {
				z.And(x)
				return nil
			},
			a:        []byte{0xf0},
			b:        []byte{0x3c, 0xff, 0xff},
			expected: "30",
		},
		{
			name:     "or widens receiver",
			op:       (*bigint.Int).Or,
			a:        []byte{0x01},
			b:        []byte{0x02, 0x80},
			expected: "8003",
		},
		{
			name:     "or keeps receiver high bytes",
			op:       (*bigint.Int).Or,
			a:        []byte{0x01, 0x00, 0x7f},
			b:        []byte{0x10},
			expected: "7f0011",
		},
		{
			name:     "xor widens receiver",
			op:       (*bigint.Int).Xor,
			a:        []byte{0xff},
			b:        []byte{0x0f, 0x01},
			expected: "01f0",
		},
	}
	for _, td := range testDefs {
		z := mustBytes(t, td.a...)
		if err := td.op(z, mustBytes(t, td.b...)); err != nil {
			t.Fatalf("%s: unexpected error: %s", td.name, err)
		}
		if z.HexBE() != td.expected {
			t.Fatalf("%s: got %s, want %s", td.name, z.HexBE(), td.expected)
		}
	}
}

func TestNotInvolution(t *testing.T) {
	z := mustBytes(t, 0x00, 0x5a, 0xff, 0x00)
	z.Not()
	if z.HexLE() != "ffa500ff" {
		t.Fatalf("Not: got %s", z.HexLE())
	}
	z.Not()
	if z.HexLE() != "005aff00" || z.Len() != 4 {
		t.Fatalf("Not(Not(x)): got %s", z.HexLE())
	}
}

func TestRsh(t *testing.T) {
	testDefs := []struct {
		value    []byte
		shift    uint
		expected string
	}{
		{value: []byte{0x00, 0x01}, shift: 1, expected: "0080"},
		{value: []byte{0x34, 0x12}, shift: 4, expected: "0123"},
		{value: []byte{0x34, 0x12}, shift: 8, expected: "0012"},
		{value: []byte{0x34, 0x12}, shift: 12, expected: "0001"},
		{value: []byte{0x34, 0x12}, shift: 16, expected: "0000"},
		{value: []byte{0x34, 0x12}, shift: 1000, expected: "0000"},
		{value: []byte{0xff, 0xff, 0xff}, shift: 3, expected: "1fffff"},
	}
	for _, td := range testDefs {
		z := mustBytes(t, td.value...)
		z.Rsh(td.shift)
		if z.HexBE() != td.expected {
			t.Fatalf(
				"%x >> %d: got %s, want %s",
				td.value,
				td.shift,
				z.HexBE(),
				td.expected,
			)
		}
	}
}

func TestSetBit(t *testing.T) {
	z := mustBytes(t, 0x00)
	if err := z.SetBit(0); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := z.SetBit(17); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if z.HexBE() != "020001" {
		t.Fatalf("SetBit: got %s, want 020001", z.HexBE())
	}
	if z.Bit(17) != 1 || z.Bit(16) != 0 || z.Bit(500) != 0 {
		t.Fatalf("unexpected Bit results")
	}
}
