// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package bigint

import (
	"encoding/binary"
	"encoding/hex"
	"slices"
)

// Cmp compares magnitudes and returns -1, 0 or +1. The shorter operand is
// treated as zero-extended.
func (z *Int) Cmp(x *Int) int {
	return cmpBytes(z.bytes(), x.bytes())
}

// CmpUint64 compares z with v
func (z *Int) CmpUint64(v uint64) int {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return cmpBytes(z.bytes(), tmp[:])
}

func cmpBytes(a, b []byte) int {
	for i := max(len(a), len(b)) - 1; i >= 0; i-- {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av > bv {
				return 1
			}
			return -1
		}
	}
	return 0
}

func (z *Int) Eq(x *Int) bool { return z.Cmp(x) == 0 }
func (z *Int) Ne(x *Int) bool { return z.Cmp(x) != 0 }
func (z *Int) Lt(x *Int) bool { return z.Cmp(x) < 0 }
func (z *Int) Gt(x *Int) bool { return z.Cmp(x) > 0 }
func (z *Int) Le(x *Int) bool { return z.Cmp(x) <= 0 }
func (z *Int) Ge(x *Int) bool { return z.Cmp(x) >= 0 }

func (z *Int) EqUint64(v uint64) bool { return z.CmpUint64(v) == 0 }
func (z *Int) NeUint64(v uint64) bool { return z.CmpUint64(v) != 0 }
func (z *Int) LtUint64(v uint64) bool { return z.CmpUint64(v) < 0 }
func (z *Int) GtUint64(v uint64) bool { return z.CmpUint64(v) > 0 }
func (z *Int) LeUint64(v uint64) bool { return z.CmpUint64(v) <= 0 }
func (z *Int) GeUint64(v uint64) bool { return z.CmpUint64(v) >= 0 }

// Low64 returns the lowest 64 bits
func (z *Int) Low64() uint64 {
	var tmp [8]byte
	copy(tmp[:], z.bytes())
	return binary.LittleEndian.Uint64(tmp[:])
}

// High64 returns the 8 byte window ending at the top of the buffer. Values
// shorter than 8 bytes are zero padded, giving the same result as Low64.
func (z *Int) High64() uint64 {
	b := z.bytes()
	if len(b) <= 8 {
		return z.Low64()
	}
	return binary.LittleEndian.Uint64(b[len(b)-8:])
}

// Window64 returns 64 bits starting at byte offset. The offset is clamped so
// the window stays inside the buffer.
func (z *Int) Window64(offset int) uint64 {
	b := z.bytes()
	if len(b) <= 8 {
		return z.Low64()
	}
	offset = min(max(offset, 0), len(b)-8)
	return binary.LittleEndian.Uint64(b[offset : offset+8])
}

// HexBE renders the buffer most significant byte first, including any high
// zero bytes
func (z *Int) HexBE() string {
	be := slices.Clone(z.bytes())
	slices.Reverse(be)
	return hex.EncodeToString(be)
}

// HexLE renders the buffer in storage order
func (z *Int) HexLE() string {
	return hex.EncodeToString(z.bytes())
}

func (z *Int) String() string {
	return z.HexBE()
}
