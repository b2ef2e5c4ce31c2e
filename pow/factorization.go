// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package pow verifies factorization proofs of work. A proof lists the prime
// factorization of a target integer derived from the previous block ID and a
// declared bit length; it is valid only if the factors multiply out to the
// target exactly.
package pow

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/blinklabs-io/fpowd/bigint"
)

const (
	MaxBitLength    = 512
	MaxFactorLength = 64
	MaxCountLength  = 4
)

var (
	ErrBitLengthTooLarge = errors.New("bit length exceeds maximum")
	ErrFactorEncoding    = errors.New("malformed factor encoding")
	ErrFactorOrder       = errors.New("factors are not strictly increasing")
	ErrFactorNotPrime    = errors.New("factor is not prime")
	ErrProductMismatch   = errors.New("factor product does not match target")
)

// BlockID is the 32 byte identifier of the previous block
type BlockID [32]byte

// FactorEntry is one (prime, multiplicity) record of a proof
type FactorEntry struct {
	Factor *bigint.Int
	Count  uint32
}

// DeriveTarget computes the integer a proof must factor. The target is
// PBKDF2-HMAC-SHA256 of the previous block ID with the little-endian bit
// length as salt, cut to bitLength bits, with the top and bottom bits set.
func DeriveTarget(prev BlockID, bitLength uint32) (*bigint.Int, error) {
	if bitLength > MaxBitLength {
		return nil, fmt.Errorf("%w: %d", ErrBitLengthTooLarge, bitLength)
	}
	// A zero bit length has no key material and no top bit, leaving just the
	// forced low bit
	if bitLength == 0 {
		return bigint.NewUint64(1), nil
	}
	byteLength := (bitLength + 7) / 8
	remainderBits := bitLength % 8
	var salt [4]byte
	binary.LittleEndian.PutUint32(salt[:], bitLength)
	key := pbkdf2.Key(prev[:], salt[:], 1, int(byteLength), sha256.New)
	target, err := bigint.FromBytesLE(key)
	if err != nil {
		return nil, err
	}
	if remainderBits != 0 {
		target.Rsh(uint(8 - remainderBits))
	}
	// The top bit stops the hash being ground down to a smaller number, the
	// bottom bit keeps the target odd
	if err := target.SetBit(uint(bitLength - 1)); err != nil {
		return nil, err
	}
	if err := target.SetBit(0); err != nil {
		return nil, err
	}
	return target, nil
}

// DecodeFactors parses an encoded factor list. Each record is a factor length
// byte (1-64), the little-endian factor, a count length byte (1-4) and the
// little-endian count. Records must consume the input exactly and factors must
// be strictly increasing.
func DecodeFactors(data []byte) ([]FactorEntry, error) {
	var ret []FactorEntry
	var lastFactor *bigint.Int
	pos := 0
	for pos < len(data) {
		factorLen := int(data[pos])
		if factorLen == 0 || factorLen > MaxFactorLength {
			return nil, fmt.Errorf(
				"%w: factor length %d at offset %d",
				ErrFactorEncoding,
				factorLen,
				pos,
			)
		}
		// The factor bytes and the count length byte that follows must fit
		if pos+1+factorLen >= len(data) {
			return nil, fmt.Errorf(
				"%w: truncated factor at offset %d",
				ErrFactorEncoding,
				pos,
			)
		}
		factor, err := bigint.FromBytesLE(data[pos+1 : pos+1+factorLen])
		if err != nil {
			return nil, err
		}
		if factor.Le(lastFactor) {
			return nil, fmt.Errorf(
				"%w: %s follows %s",
				ErrFactorOrder,
				factor,
				lastFactor,
			)
		}
		pos += 1 + factorLen
		countLen := int(data[pos])
		if countLen == 0 || countLen > MaxCountLength {
			return nil, fmt.Errorf(
				"%w: count length %d at offset %d",
				ErrFactorEncoding,
				countLen,
				pos,
			)
		}
		if pos+1+countLen > len(data) {
			return nil, fmt.Errorf(
				"%w: truncated count at offset %d",
				ErrFactorEncoding,
				pos,
			)
		}
		var countBuf [4]byte
		copy(countBuf[:], data[pos+1:pos+1+countLen])
		ret = append(
			ret,
			FactorEntry{
				Factor: factor,
				Count:  binary.LittleEndian.Uint32(countBuf[:]),
			},
		)
		pos += 1 + countLen
		lastFactor = factor
	}
	return ret, nil
}

// EncodeFactors produces the minimal-length encoding of entries. It does not
// check ordering or primality.
func EncodeFactors(entries []FactorEntry) ([]byte, error) {
	var ret []byte
	for _, entry := range entries {
		factorLen := entry.Factor.NonzeroBytes()
		if factorLen == 0 || factorLen > MaxFactorLength {
			return nil, fmt.Errorf(
				"%w: cannot encode factor %s",
				ErrFactorEncoding,
				entry.Factor,
			)
		}
		ret = append(ret, byte(factorLen))
		ret = append(ret, entry.Factor.Bytes()[:factorLen]...)
		var countBuf [4]byte
		binary.LittleEndian.PutUint32(countBuf[:], entry.Count)
		countLen := MaxCountLength
		for countLen > 1 && countBuf[countLen-1] == 0 {
			countLen--
		}
		ret = append(ret, byte(countLen))
		ret = append(ret, countBuf[:countLen]...)
	}
	return ret, nil
}

// Verifier checks factorization proofs against a primality oracle. It holds
// no mutable state and is safe for concurrent use.
type Verifier struct {
	oracle       *Oracle
	maxBitLength uint32
}

type VerifierOptionFunc func(*Verifier)

// WithOracle sets the primality oracle. The default rejects large primes.
func WithOracle(oracle *Oracle) VerifierOptionFunc {
	return func(v *Verifier) {
		v.oracle = oracle
	}
}

// WithMaxBitLength lowers the accepted bit length below MaxBitLength
func WithMaxBitLength(maxBitLength uint32) VerifierOptionFunc {
	return func(v *Verifier) {
		v.maxBitLength = min(maxBitLength, MaxBitLength)
	}
}

func NewVerifier(opts ...VerifierOptionFunc) *Verifier {
	v := &Verifier{
		oracle:       defaultOracle,
		maxBitLength: MaxBitLength,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultVerifier = NewVerifier()

// CheckPrimeFactorization reports whether encodedFactors is a valid proof for
// the target derived from prev and bitLength, using the network-compatible
// oracle
func CheckPrimeFactorization(
	prev BlockID,
	bitLength uint32,
	encodedFactors []byte,
) bool {
	return defaultVerifier.Check(prev, bitLength, encodedFactors)
}

func (v *Verifier) Oracle() *Oracle {
	return v.oracle
}

func (v *Verifier) MaxBitLength() uint32 {
	return v.maxBitLength
}

// Check is Verify reduced to a verdict
func (v *Verifier) Check(
	prev BlockID,
	bitLength uint32,
	encodedFactors []byte,
) bool {
	return v.Verify(prev, bitLength, encodedFactors) == nil
}

// Verify returns nil for a valid proof and the reason for rejection otherwise
func (v *Verifier) Verify(
	prev BlockID,
	bitLength uint32,
	encodedFactors []byte,
) error {
	if bitLength > v.maxBitLength {
		return fmt.Errorf("%w: %d", ErrBitLengthTooLarge, bitLength)
	}
	target, err := DeriveTarget(prev, bitLength)
	if err != nil {
		return err
	}
	entries, err := DecodeFactors(encodedFactors)
	if err != nil {
		return err
	}
	product := bigint.NewUint64(1)
	for _, entry := range entries {
		if !v.oracle.IsPrime(entry.Factor) {
			return fmt.Errorf("%w: %s", ErrFactorNotPrime, entry.Factor)
		}
		// Every factor is at least 2, so once the product passes the target
		// it can never come back down
		for i := uint32(0); i < entry.Count; i++ {
			if err := product.Mul(entry.Factor); err != nil {
				return err
			}
			if product.Gt(target) {
				return ErrProductMismatch
			}
		}
	}
	if !product.Eq(target) {
		return ErrProductMismatch
	}
	return nil
}
