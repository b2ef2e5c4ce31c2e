// Copyright 2026 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package proof carries a factorization proof together with the block
// parameters it was produced for
package proof

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/blinklabs-io/fpowd/pow"
)

// MaxFactorsLength bounds the encoded factor list. A 512-bit target has at
// most 512 prime factors, each entry needing at most 1+64+1+4 bytes.
const MaxFactorsLength = 512 * (2 + pow.MaxFactorLength + pow.MaxCountLength)

var (
	ErrFactorsTooLong = errors.New("encoded factors too long")
	ErrTrailingData   = errors.New("trailing data after envelope")
)

type Envelope struct {
	PrevBlock pow.BlockID
	Bits      uint32
	Factors   []byte
}

type envelopeHeader struct {
	PrevBlock [32]byte
	Bits      uint32
}

func (e *Envelope) Decode(r io.Reader) error {
	var hdr envelopeHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	factorsLen, err := ReadUvarint(r)
	if err != nil {
		return err
	}
	if factorsLen > MaxFactorsLength {
		return fmt.Errorf("%w: %d", ErrFactorsTooLong, factorsLen)
	}
	factors := make([]byte, factorsLen)
	if _, err := io.ReadFull(r, factors); err != nil {
		return err
	}
	e.PrevBlock = hdr.PrevBlock
	e.Bits = hdr.Bits
	e.Factors = factors
	return nil
}

// DecodeBytes decodes a complete envelope and rejects any trailing bytes
func DecodeBytes(data []byte) (*Envelope, error) {
	r := bytes.NewReader(data)
	var e Envelope
	if err := e.Decode(r); err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Len())
	}
	return &e, nil
}

func (e *Envelope) Encode() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(e.PrevBlock[:])
	_ = binary.Write(buf, binary.LittleEndian, e.Bits)
	buf.Write(WriteUvarint(uint64(len(e.Factors))))
	buf.Write(e.Factors)
	return buf.Bytes()
}

// Digest identifies the envelope in the verdict ledger
func (e *Envelope) Digest() [32]byte {
	return blake2b.Sum256(e.Encode())
}

func (e *Envelope) Verify(v *pow.Verifier) error {
	return v.Verify(e.PrevBlock, e.Bits, e.Factors)
}

type envelopeJson struct {
	PrevBlock string `json:"prevBlock"`
	Bits      uint32 `json:"bits"`
	Factors   string `json:"factors"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		envelopeJson{
			PrevBlock: hex.EncodeToString(e.PrevBlock[:]),
			Bits:      e.Bits,
			Factors:   hex.EncodeToString(e.Factors),
		},
	)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var tmp envelopeJson
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	prev, err := ParseBlockID(tmp.PrevBlock)
	if err != nil {
		return err
	}
	factors, err := hex.DecodeString(tmp.Factors)
	if err != nil {
		return fmt.Errorf("invalid factors: %w", err)
	}
	if len(factors) > MaxFactorsLength {
		return fmt.Errorf("%w: %d", ErrFactorsTooLong, len(factors))
	}
	e.PrevBlock = prev
	e.Bits = tmp.Bits
	e.Factors = factors
	return nil
}

// ParseBlockID parses a 32-byte block ID given as 64 hex characters
func ParseBlockID(s string) (pow.BlockID, error) {
	var ret pow.BlockID
	data, err := hex.DecodeString(s)
	if err != nil {
		return ret, fmt.Errorf("invalid block ID: %w", err)
	}
	if len(data) != len(ret) {
		return ret, fmt.Errorf(
			"invalid block ID length: got %d, want %d",
			len(data),
			len(ret),
		)
	}
	copy(ret[:], data)
	return ret, nil
}
