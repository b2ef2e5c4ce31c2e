// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"strings"

	"github.com/blinklabs-io/fpowd/bigint"
)

// MaxPrimeBytes is the largest candidate, in significant bytes, the oracle
// will consider
const MaxPrimeBytes = 64

// LargePrimePolicy selects how candidates above 16 bits are judged
type LargePrimePolicy int

const (
	// LargePrimeReject rejects every candidate above 65535. This matches the
	// behaviour of the deployed network.
	LargePrimeReject LargePrimePolicy = iota
	// LargePrimeDeterministic runs trial division, deterministic
	// Miller-Rabin and, past the proven Miller-Rabin bound, Baillie-PSW
	LargePrimeDeterministic
)

func (p LargePrimePolicy) String() string {
	switch p {
	case LargePrimeReject:
		return "reject"
	case LargePrimeDeterministic:
		return "deterministic"
	default:
		return fmt.Sprintf("LargePrimePolicy(%d)", int(p))
	}
}

func ParseLargePrimePolicy(s string) (LargePrimePolicy, error) {
	switch strings.ToLower(s) {
	case "", "reject":
		return LargePrimeReject, nil
	case "deterministic":
		return LargePrimeDeterministic, nil
	}
	return LargePrimeReject, fmt.Errorf("unknown large prime policy: %s", s)
}

// Oracle decides primality for candidates of up to 512 bits. It holds no
// mutable state and may be shared between goroutines.
type Oracle struct {
	policy LargePrimePolicy
}

func NewOracle(policy LargePrimePolicy) *Oracle {
	return &Oracle{policy: policy}
}

var defaultOracle = NewOracle(LargePrimeReject)

// IsPrime uses the network-compatible oracle
func IsPrime(candidate *bigint.Int) bool {
	return defaultOracle.IsPrime(candidate)
}

func (o *Oracle) Policy() LargePrimePolicy {
	return o.policy
}

func (o *Oracle) IsPrime(candidate *bigint.Int) bool {
	if candidate.EqUint64(2) {
		return true
	}
	if candidate.Bit(0) == 0 {
		return false
	}
	if candidate.LeUint64(math.MaxUint8) {
		v := uint8(candidate.Low64())
		for _, prime := range primes8Bit {
			if prime == v {
				return true
			}
		}
		return false
	}
	if candidate.LeUint64(math.MaxUint16) {
		_, found := slices.BinarySearch(primes16Bit[:], uint16(candidate.Low64()))
		return found
	}
	if o.policy != LargePrimeDeterministic {
		return false
	}
	if candidate.NonzeroBytes() > MaxPrimeBytes {
		return false
	}
	return isPrimeLarge(candidate)
}

// Sorenson and Webster: the first 13 prime bases make Miller-Rabin
// deterministic below this bound
var millerRabinBound, _ = new(big.Int).SetString("3317044064679887385961981", 10)

var millerRabinBases = []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41}

// isPrimeLarge handles odd candidates above 65535
func isPrimeLarge(candidate *bigint.Int) bool {
	le := candidate.Bytes()
	for _, p := range primes8Bit[1:] {
		if modSmall(le, uint32(p)) == 0 {
			return false
		}
	}
	for _, p := range primes16Bit {
		if modSmall(le, uint32(p)) == 0 {
			return false
		}
	}
	// Trial division covered every prime up to sqrt(2^32)
	if candidate.LeUint64(math.MaxUint32) {
		return true
	}
	n := candidate.ToBig()
	if !millerRabin(n, millerRabinBases) {
		return false
	}
	if n.Cmp(millerRabinBound) < 0 {
		return true
	}
	return n.ProbablyPrime(0)
}

// modSmall reduces a little-endian value modulo m
func modSmall(le []byte, m uint32) uint32 {
	var r uint32
	for i := len(le) - 1; i >= 0; i-- {
		r = (r<<8 | uint32(le[i])) % m
	}
	return r
}

// millerRabin runs strong probable prime tests for each base. n must be odd
// and larger than every base.
func millerRabin(n *big.Int, bases []int64) bool {
	one := big.NewInt(1)
	nm1 := new(big.Int).Sub(n, one)
	d := new(big.Int).Set(nm1)
	s := d.TrailingZeroBits()
	d.Rsh(d, s)
	x := new(big.Int)
	for _, base := range bases {
		x.Exp(big.NewInt(base), d, n)
		if x.Cmp(one) == 0 || x.Cmp(nm1) == 0 {
			continue
		}
		composite := true
		for r := uint(1); r < s; r++ {
			x.Mul(x, x).Mod(x, n)
			if x.Cmp(nm1) == 0 {
				composite = false
				break
			}
		}
		if composite {
			return false
		}
	}
	return true
}
