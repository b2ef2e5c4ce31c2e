// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package bigint implements an explicitly sized unsigned integer backed by a
// little-endian byte buffer. The byte length of a value is part of its state:
// addition and the bitwise operations keep (or grow) it, subtraction and
// multiplication trim high zero bytes. Comparisons never depend on length.
package bigint

import (
	"encoding/binary"
	"errors"
	"math/big"
	"math/bits"
	"slices"
)

// MaxLength is the largest buffer, in bytes, an Int may hold. Requests past
// this limit fail with ErrTooLarge and leave the receiver null.
const MaxLength = 1 << 20

var ErrTooLarge = errors.New("bigint: length exceeds maximum")

// Int is an unsigned integer. Byte i of the buffer contributes value*256^i.
// The zero value is the null state, which has no storage and reads as zero.
type Int struct {
	buf []byte
}

// New returns a zero-filled Int of n bytes. New(0) is null.
func New(n int) (*Int, error) {
	if n < 0 || n > MaxLength {
		return &Int{}, ErrTooLarge
	}
	if n == 0 {
		return &Int{}, nil
	}
	return &Int{buf: make([]byte, n)}, nil
}

// NewUint64 returns an 8 byte Int holding v
func NewUint64(v uint64) *Int {
	z := &Int{buf: make([]byte, 8)}
	binary.LittleEndian.PutUint64(z.buf, v)
	return z
}

// NewUint64Len returns an Int holding v with at least max(n, 8) bytes
func NewUint64Len(v uint64, n int) (*Int, error) {
	z, err := New(max(n, 8))
	if err != nil {
		return z, err
	}
	binary.LittleEndian.PutUint64(z.buf, v)
	return z, nil
}

// FromBytesLE returns an Int holding a copy of the little-endian bytes in b
func FromBytesLE(b []byte) (*Int, error) {
	if len(b) > MaxLength {
		return &Int{}, ErrTooLarge
	}
	if len(b) == 0 {
		return &Int{}, nil
	}
	return &Int{buf: slices.Clone(b)}, nil
}

// FromBig converts a non-negative math/big value. The result has the minimal
// number of bytes, and at least one.
func FromBig(x *big.Int) (*Int, error) {
	if x.Sign() < 0 {
		return &Int{}, errors.New("bigint: negative value")
	}
	be := x.Bytes()
	if len(be) > MaxLength {
		return &Int{}, ErrTooLarge
	}
	if len(be) == 0 {
		return &Int{buf: []byte{0}}, nil
	}
	slices.Reverse(be)
	return &Int{buf: be}, nil
}

// ToBig returns the value as a math/big integer
func (z *Int) ToBig() *big.Int {
	be := slices.Clone(z.bytes())
	slices.Reverse(be)
	return new(big.Int).SetBytes(be)
}

// SetUint64 stores v. Buffers of at least 8 bytes keep their length,
// shorter ones are widened to 8 bytes.
func (z *Int) SetUint64(v uint64) {
	if len(z.buf) >= 8 {
		clear(z.buf)
	} else {
		z.buf = make([]byte, 8)
	}
	binary.LittleEndian.PutUint64(z.buf, v)
}

// Clone returns an independent copy with identical bytes
func (z *Int) Clone() *Int {
	if z == nil || z.buf == nil {
		return &Int{}
	}
	return &Int{buf: slices.Clone(z.buf)}
}

// Move transfers the storage of z into a new Int and leaves z null
func (z *Int) Move() *Int {
	if z == nil {
		return &Int{}
	}
	ret := &Int{buf: z.buf}
	z.buf = nil
	return ret
}

// Set makes z a copy of x
func (z *Int) Set(x *Int) {
	if z == x {
		return
	}
	z.buf = slices.Clone(x.bytes())
}

// SetNull releases the storage. It is safe to call repeatedly.
func (z *Int) SetNull() {
	z.buf = nil
}

func (z *Int) IsNull() bool {
	return z == nil || len(z.buf) == 0
}

func (z *Int) IsInitialized() bool {
	return !z.IsNull()
}

// Bytes returns a copy of the little-endian buffer
func (z *Int) Bytes() []byte {
	return slices.Clone(z.bytes())
}

// Len returns the byte length
func (z *Int) Len() int {
	return len(z.bytes())
}

// BitLen returns the storage size in bits. It is not the position of the
// highest set bit.
func (z *Int) BitLen() int {
	return z.Len() * 8
}

// NonzeroBytes returns the length excluding high zero bytes
func (z *Int) NonzeroBytes() int {
	b := z.bytes()
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return n
}

// topBit returns the position of the highest set bit plus one
func (z *Int) topBit() int {
	n := z.NonzeroBytes()
	if n == 0 {
		return 0
	}
	return (n-1)*8 + bits.Len8(z.buf[n-1])
}

// IsZero reports whether every stored byte is zero. A null Int is zero.
func (z *Int) IsZero() bool {
	return z.NonzeroBytes() == 0
}

// Trim drops high zero bytes. An initialized value keeps at least one byte,
// a null value stays null.
func (z *Int) Trim() {
	if len(z.bytes()) == 0 {
		return
	}
	n := max(z.NonzeroBytes(), 1)
	z.buf = z.buf[:n:n]
}

// resize changes the length to n, zero-filling new high bytes. The buffer is
// always replaced, never extended in place.
func (z *Int) resize(n int) error {
	if n < 0 || n > MaxLength {
		z.buf = nil
		return ErrTooLarge
	}
	if n == 0 {
		z.buf = nil
		return nil
	}
	tmp := make([]byte, n)
	copy(tmp, z.buf)
	z.buf = tmp
	return nil
}

func (z *Int) bytes() []byte {
	if z == nil {
		return nil
	}
	return z.buf
}
