// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blinklabs-io/fpowd/internal/proof"
	"github.com/blinklabs-io/fpowd/internal/version"
	"github.com/blinklabs-io/fpowd/pow"
)

var errInvalidProof = errors.New("invalid proof")

const usage = `Usage: fpow <command> [flags]

Commands:
  target   print the target for a previous block and bit length
  prove    factor the target and print the encoded proof
  verify   check an encoded proof
  version  print the version
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errInvalidProof) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return flag.ErrHelp
	}
	switch args[0] {
	case "target":
		return cmdTarget(args[1:], stdout, stderr)
	case "prove":
		return cmdProve(args[1:], stdout, stderr)
	case "verify":
		return cmdVerify(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "fpow %s\n", version.GetVersionString())
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

type blockFlags struct {
	prev   string
	bits   uint
	policy string
}

func (b *blockFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&b.prev, "prev", "", "previous block ID as 64 hex characters")
	fs.UintVar(&b.bits, "bits", 0, "target bit length")
	fs.StringVar(
		&b.policy,
		"large-prime-test",
		"reject",
		"primality test for factors above 16 bits (reject or deterministic)",
	)
}

func (b *blockFlags) parse() (pow.BlockID, uint32, *pow.Verifier, error) {
	prev, err := proof.ParseBlockID(b.prev)
	if err != nil {
		return prev, 0, nil, err
	}
	if b.bits > pow.MaxBitLength {
		return prev, 0, nil, fmt.Errorf("%w: %d", pow.ErrBitLengthTooLarge, b.bits)
	}
	policy, err := pow.ParseLargePrimePolicy(b.policy)
	if err != nil {
		return prev, 0, nil, err
	}
	verifier := pow.NewVerifier(pow.WithOracle(pow.NewOracle(policy)))
	// nolint:gosec // bounded above
	return prev, uint32(b.bits), verifier, nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func cmdTarget(args []string, stdout io.Writer, stderr io.Writer) error {
	var bf blockFlags
	fs := newFlagSet("target", stderr)
	bf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	prev, bits, _, err := bf.parse()
	if err != nil {
		return err
	}
	target, err := pow.DeriveTarget(prev, bits)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, target.HexBE())
	return nil
}

func cmdProve(args []string, stdout io.Writer, stderr io.Writer) error {
	var bf blockFlags
	var envelopeOut bool
	fs := newFlagSet("prove", stderr)
	bf.register(fs)
	fs.BoolVar(&envelopeOut, "envelope", false, "print a full proof envelope")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prev, bits, verifier, err := bf.parse()
	if err != nil {
		return err
	}
	factors, err := verifier.Prove(prev, bits)
	if err != nil {
		return err
	}
	if envelopeOut {
		envelope := proof.Envelope{
			PrevBlock: prev,
			Bits:      bits,
			Factors:   factors,
		}
		fmt.Fprintln(stdout, hex.EncodeToString(envelope.Encode()))
		return nil
	}
	fmt.Fprintln(stdout, hex.EncodeToString(factors))
	return nil
}

func cmdVerify(args []string, stdout io.Writer, stderr io.Writer) error {
	var bf blockFlags
	var factorsHex, envelopeHex string
	fs := newFlagSet("verify", stderr)
	bf.register(fs)
	fs.StringVar(&factorsHex, "factors", "", "encoded factors as hex")
	fs.StringVar(&envelopeHex, "envelope", "", "proof envelope as hex, replaces -prev, -bits and -factors")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var envelope *proof.Envelope
	var verifier *pow.Verifier
	if envelopeHex != "" {
		data, err := hex.DecodeString(strings.TrimSpace(envelopeHex))
		if err != nil {
			return fmt.Errorf("invalid envelope: %w", err)
		}
		envelope, err = proof.DecodeBytes(data)
		if err != nil {
			return fmt.Errorf("invalid envelope: %w", err)
		}
		policy, err := pow.ParseLargePrimePolicy(bf.policy)
		if err != nil {
			return err
		}
		verifier = pow.NewVerifier(pow.WithOracle(pow.NewOracle(policy)))
	} else {
		prev, bits, tmpVerifier, err := bf.parse()
		if err != nil {
			return err
		}
		factors, err := hex.DecodeString(strings.TrimSpace(factorsHex))
		if err != nil {
			return fmt.Errorf("invalid factors: %w", err)
		}
		envelope = &proof.Envelope{
			PrevBlock: prev,
			Bits:      bits,
			Factors:   factors,
		}
		verifier = tmpVerifier
	}
	if err := envelope.Verify(verifier); err != nil {
		fmt.Fprintf(stdout, "invalid: %s\n", err)
		return errInvalidProof
	}
	fmt.Fprintln(stdout, "valid")
	return nil
}
