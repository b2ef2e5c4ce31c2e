// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"math/big"
	"testing"

	"github.com/blinklabs-io/fpowd/bigint"
)

func TestPrimeTables(t *testing.T) {
	if len(primes8Bit) != 54 || primes8Bit[len(primes8Bit)-1] != 251 {
		t.Fatalf("unexpected 8-bit table")
	}
	if len(primes16Bit) != 6488 || primes16Bit[0] != 257 || primes16Bit[len(primes16Bit)-1] != 65521 {
		t.Fatalf("unexpected 16-bit table")
	}
	for i := 1; i < len(primes16Bit); i++ {
		if primes16Bit[i] <= primes16Bit[i-1] {
			t.Fatalf("16-bit table not sorted at index %d", i)
		}
	}
	// Cross-check both tables against math/big
	idx8, idx16 := 0, 0
	for v := 0; v < 65536; v++ {
		isPrime := big.NewInt(int64(v)).ProbablyPrime(0)
		var inTable bool
		switch {
		case v < 256:
			inTable = idx8 < len(primes8Bit) && int(primes8Bit[idx8]) == v
			if inTable {
				idx8++
			}
		default:
			inTable = idx16 < len(primes16Bit) && int(primes16Bit[idx16]) == v
			if inTable {
				idx16++
			}
		}
		if isPrime != inTable {
			t.Fatalf("table disagrees with math/big for %d", v)
		}
	}
}

func TestIsPrime(t *testing.T) {
	testDefs := []struct {
		value    uint64
		expected bool
	}{
		{value: 0, expected: false},
		{value: 1, expected: false},
		{value: 2, expected: true},
		{value: 3, expected: true},
		{value: 4, expected: false},
		{value: 9, expected: false},
		{value: 251, expected: true},
		{value: 255, expected: false},
		{value: 256, expected: false},
		{value: 257, expected: true},
		{value: 65519, expected: true},
		{value: 65521, expected: true},
		{value: 65535, expected: false},
		// Above 16 bits the deployed oracle rejects everything
		{value: 65537, expected: false},
		{value: 680893382387, expected: false},
	}
	for _, td := range testDefs {
		if got := IsPrime(bigint.NewUint64(td.value)); got != td.expected {
			t.Fatalf("IsPrime(%d): got %v, want %v", td.value, got, td.expected)
		}
	}
}

func TestIsPrimeIgnoresLength(t *testing.T) {
	padded, err := bigint.NewUint64Len(251, 64)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !IsPrime(padded) {
		t.Fatalf("padded 251 should be prime")
	}
	if IsPrime(&bigint.Int{}) {
		t.Fatalf("null value should not be prime")
	}
}

func TestDeterministicOracle(t *testing.T) {
	oracle := NewOracle(LargePrimeDeterministic)
	testDefs := []struct {
		value    string
		expected bool
	}{
		{value: "65537", expected: true},
		{value: "4294967291", expected: true},
		// 65537 * 65539
		{value: "4295229443", expected: false},
		{value: "680893382387", expected: true},
		// Strong pseudoprime to bases 2, 3, 5 and 7
		{value: "3215031751", expected: false},
		// 2^61 - 1
		{value: "2305843009213693951", expected: true},
		// 2^64 - 59
		{value: "18446744073709551557", expected: true},
		// 2^89 - 1, beyond the deterministic Miller-Rabin bound
		{value: "618970019642690137449562111", expected: true},
		// (2^61 - 1) * (2^89 - 1)
		{value: "1427247692705959880439315947500961989719490561", expected: false},
		// 2^127 - 1
		{value: "170141183460469231731687303715884105727", expected: true},
	}
	for _, td := range testDefs {
		n, _ := new(big.Int).SetString(td.value, 10)
		candidate, err := bigint.FromBig(n)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got := oracle.IsPrime(candidate); got != td.expected {
			t.Fatalf("IsPrime(%s): got %v, want %v", td.value, got, td.expected)
		}
		if IsPrime(candidate) {
			t.Fatalf("deployed oracle accepted %s", td.value)
		}
	}
	// Candidates wider than 512 bits are never accepted
	wide := new(big.Int).Lsh(big.NewInt(1), 521)
	wide.Sub(wide, big.NewInt(1))
	candidate, err := bigint.FromBig(wide)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if oracle.IsPrime(candidate) {
		t.Fatalf("accepted a candidate wider than 512 bits")
	}
}

func TestParseLargePrimePolicy(t *testing.T) {
	testDefs := []struct {
		value    string
		expected LargePrimePolicy
		wantErr  bool
	}{
		{value: "", expected: LargePrimeReject},
		{value: "reject", expected: LargePrimeReject},
		{value: "Deterministic", expected: LargePrimeDeterministic},
		{value: "aks", wantErr: true},
	}
	for _, td := range testDefs {
		got, err := ParseLargePrimePolicy(td.value)
		if td.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", td.value)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got != td.expected || got.String() == "" {
			t.Fatalf("ParseLargePrimePolicy(%q): got %s", td.value, got)
		}
	}
}
