// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package bigint

// Add sets z to z+x. If x is longer, z is first widened to its length. A
// carry out of the top byte grows z by one byte.
func (z *Int) Add(x *Int) error {
	xb := x.bytes()
	if len(xb) > len(z.buf) {
		if err := z.resize(len(xb)); err != nil {
			return err
		}
	}
	var carry uint16
	i := 0
	for ; i < len(xb); i++ {
		sum := uint16(z.buf[i]) + uint16(xb[i]) + carry
		z.buf[i] = byte(sum)
		carry = sum >> 8
	}
	// Only the carry is left to propagate, stop as soon as it is absorbed
	for ; carry != 0 && i < len(z.buf); i++ {
		sum := uint16(z.buf[i]) + carry
		z.buf[i] = byte(sum)
		carry = sum >> 8
	}
	if carry != 0 {
		if err := z.resize(len(z.buf) + 1); err != nil {
			return err
		}
		z.buf[len(z.buf)-1] = byte(carry)
	}
	return nil
}

// addWrap adds x into z modulo 256^len(z). x must not be longer than z.
func (z *Int) addWrap(x *Int) {
	var carry uint16
	for i := range z.buf {
		sum := uint16(z.buf[i]) + carry
		if i < len(x.buf) {
			sum += uint16(x.buf[i])
		}
		z.buf[i] = byte(sum)
		carry = sum >> 8
	}
}

// Sub sets z to z-x, saturating at zero. A saturated result keeps the length
// of z with every byte cleared; otherwise the result is trimmed.
func (z *Int) Sub(x *Int) {
	if z.Cmp(x) <= 0 {
		clear(z.buf)
		return
	}
	// z > x here, so any bytes of x past len(z) are zero and can be dropped
	neg := &Int{buf: make([]byte, len(z.buf))}
	copy(neg.buf, x.bytes())
	neg.Negate()
	z.addWrap(neg)
	z.Trim()
}

// Negate replaces z with its two's complement within its current length
func (z *Int) Negate() {
	z.Not()
	for i := range z.buf {
		z.buf[i]++
		if z.buf[i] != 0 {
			break
		}
	}
}

// Inc adds one, growing z on overflow
func (z *Int) Inc() error {
	return z.Add(&Int{buf: []byte{1}})
}

// Dec subtracts one, saturating at zero
func (z *Int) Dec() {
	z.Sub(&Int{buf: []byte{1}})
}

// Mul sets z to z*x using schoolbook multiplication. The scratch buffer is
// len(z)+len(x) bytes, which always holds the product; the result is trimmed.
func (z *Int) Mul(x *Int) error {
	xb := x.bytes()
	n := len(z.buf) + len(xb)
	if n > MaxLength {
		z.buf = nil
		return ErrTooLarge
	}
	if n == 0 {
		return nil
	}
	scratch := make([]byte, n)
	for i, a := range z.buf {
		if a == 0 {
			continue
		}
		var acc uint32
		for j, b := range xb {
			acc += uint32(scratch[i+j]) + uint32(a)*uint32(b)
			scratch[i+j] = byte(acc)
			acc >>= 8
		}
		for k := i + len(xb); acc != 0; k++ {
			acc += uint32(scratch[k])
			scratch[k] = byte(acc)
			acc >>= 8
		}
	}
	z.buf = scratch
	z.Trim()
	return nil
}

// Pow sets z to z**e by square-and-multiply. e == 0 gives one in a single
// byte; bases of zero or one and e == 1 leave z untouched.
func (z *Int) Pow(e uint64) error {
	if e == 0 {
		z.buf = []byte{1}
		return nil
	}
	if e == 1 || z.CmpUint64(1) <= 0 {
		return nil
	}
	// The result has at least (topBit-1)*e bits, reject early rather than
	// squaring our way up to the limit
	if (uint64(z.topBit()) - 1) > uint64(MaxLength*8)/e {
		z.buf = nil
		return ErrTooLarge
	}
	base := z.Clone()
	result := &Int{buf: []byte{1}}
	for {
		if e&1 == 1 {
			if err := result.Mul(base); err != nil {
				z.buf = nil
				return err
			}
		}
		e >>= 1
		if e == 0 {
			break
		}
		if err := base.Mul(base); err != nil {
			z.buf = nil
			return err
		}
	}
	z.buf = result.buf
	return nil
}
