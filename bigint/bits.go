// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package bigint

// And sets z to z&x with x zero-extended, so bytes of z past the length of x
// are cleared. The length of z does not change.
func (z *Int) And(x *Int) {
	xb := x.bytes()
	for i := range z.buf {
		if i < len(xb) {
			z.buf[i] &= xb[i]
		} else {
			z.buf[i] = 0
		}
	}
}

// Or sets z to z|x, widening z to the length of x if needed
func (z *Int) Or(x *Int) error {
	xb := x.bytes()
	if len(xb) > len(z.buf) {
		if err := z.resize(len(xb)); err != nil {
			return err
		}
	}
	for i, b := range xb {
		z.buf[i] |= b
	}
	return nil
}

// Xor sets z to z^x, widening z to the length of x if needed
func (z *Int) Xor(x *Int) error {
	xb := x.bytes()
	if len(xb) > len(z.buf) {
		if err := z.resize(len(xb)); err != nil {
			return err
		}
	}
	for i, b := range xb {
		z.buf[i] ^= b
	}
	return nil
}

// Not complements every stored byte
func (z *Int) Not() {
	for i := range z.buf {
		z.buf[i] = ^z.buf[i]
	}
}

// Rsh shifts z right by n bits, keeping its length
func (z *Int) Rsh(n uint) {
	l := len(z.buf)
	if n/8 >= uint(l) {
		clear(z.buf)
		return
	}
	byteShift := int(n / 8)
	bitShift := n % 8
	for i := 0; i < l; i++ {
		src := i + byteShift
		var v uint16
		if src < l {
			v = uint16(z.buf[src])
		}
		if src+1 < l {
			v |= uint16(z.buf[src+1]) << 8
		}
		z.buf[i] = byte(v >> bitShift)
	}
}

// SetBit sets bit i, growing z to hold it
func (z *Int) SetBit(i uint) error {
	idx := i / 8
	if idx >= MaxLength {
		z.buf = nil
		return ErrTooLarge
	}
	if int(idx) >= len(z.buf) {
		if err := z.resize(int(idx) + 1); err != nil {
			return err
		}
	}
	z.buf[idx] |= 1 << (i % 8)
	return nil
}

// Bit returns bit i, which is zero past the end of the buffer
func (z *Int) Bit(i uint) uint {
	b := z.bytes()
	idx := i / 8
	if idx >= uint(len(b)) {
		return 0
	}
	return uint(b[idx]>>(i%8)) & 1
}
