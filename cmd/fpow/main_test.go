// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var zeroPrev = strings.Repeat("00", 32)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return strings.TrimSpace(stdout.String()), err
}

func TestTarget(t *testing.T) {
	out, err := runCmd(t, "target", "-prev", zeroPrev, "-bits", "24")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "99ed31" {
		t.Fatalf("did not get expected target: got %s, want 99ed31", out)
	}
	if _, err := runCmd(t, "target", "-prev", "00", "-bits", "24"); err == nil {
		t.Fatalf("expected error for short block ID")
	}
	if _, err := runCmd(t, "target", "-prev", zeroPrev, "-bits", "513"); err == nil {
		t.Fatalf("expected error for bit length")
	}
}

func TestProveVerify(t *testing.T) {
	factors, err := runCmd(t, "prove", "-prev", zeroPrev, "-bits", "24")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if factors != "026f010101025f6b0101" {
		t.Fatalf("did not get expected proof: got %s", factors)
	}
	out, err := runCmd(t, "verify", "-prev", zeroPrev, "-bits", "24", "-factors", factors)
	if err != nil || out != "valid" {
		t.Fatalf("did not get expected verdict: got %s (%v)", out, err)
	}
	out, err = runCmd(t, "verify", "-prev", zeroPrev, "-bits", "16", "-factors", factors)
	if !errors.Is(err, errInvalidProof) || !strings.HasPrefix(out, "invalid:") {
		t.Fatalf("did not get expected verdict: got %s (%v)", out, err)
	}
}

func TestProveVerifyEnvelope(t *testing.T) {
	ffPrev := strings.Repeat("ff", 32)
	envelope, err := runCmd(t, "prove", "-prev", ffPrev, "-bits", "16", "-envelope")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	out, err := runCmd(t, "verify", "-envelope", envelope)
	if err != nil || out != "valid" {
		t.Fatalf("did not get expected verdict: got %s (%v)", out, err)
	}
}

func TestProveLargePrimePolicy(t *testing.T) {
	// 0xd9b4497def = 3 * 25349 * 12295457
	onePrev := strings.Repeat("01", 32)
	if _, err := runCmd(t, "prove", "-prev", onePrev, "-bits", "40"); err == nil {
		t.Fatalf("expected error proving with large factors")
	}
	factors, err := runCmd(t, "prove", "-prev", onePrev, "-bits", "40", "-large-prime-test", "deterministic")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	out, err := runCmd(t, "verify", "-prev", onePrev, "-bits", "40", "-factors", factors)
	if !errors.Is(err, errInvalidProof) {
		t.Fatalf("did not get expected verdict: got %s (%v)", out, err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runCmd(t, "mine"); err == nil {
		t.Fatalf("expected error for unknown command")
	}
	if _, err := runCmd(t); err == nil {
		t.Fatalf("expected error with no command")
	}
	out, err := runCmd(t, "version")
	if err != nil || !strings.HasPrefix(out, "fpow ") {
		t.Fatalf("did not get expected version: got %s (%v)", out, err)
	}
}
