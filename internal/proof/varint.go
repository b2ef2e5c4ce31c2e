// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package proof

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var ErrNonCanonicalVarint = errors.New("non-canonical compact size")

// ReadUvarint reads a compact size value. Values that could have been encoded
// with a shorter prefix are rejected so that every envelope has exactly one
// binary form.
func ReadUvarint(r io.Reader) (uint64, error) {
	prefix := make([]byte, 1)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return 0, err
	}
	var width int
	var minVal uint64
	switch prefix[0] {
	case 0xff:
		width, minVal = 8, math.MaxUint32+1
	case 0xfe:
		width, minVal = 4, math.MaxUint16+1
	case 0xfd:
		width, minVal = 2, 0xfd
	default:
		return uint64(prefix[0]), nil
	}
	data := make([]byte, width)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("invalid length for uint%d", width*8)
		}
		return 0, err
	}
	var ret uint64
	switch width {
	case 8:
		ret = binary.LittleEndian.Uint64(data)
	case 4:
		ret = uint64(binary.LittleEndian.Uint32(data))
	default:
		ret = uint64(binary.LittleEndian.Uint16(data))
	}
	if ret < minVal {
		return 0, fmt.Errorf("%w: %d", ErrNonCanonicalVarint, ret)
	}
	return ret, nil
}

func WriteUvarint(val uint64) []byte {
	var ret []byte
	switch {
	case val < 0xfd:
		ret = []byte{uint8(val)}
	case val <= math.MaxUint16:
		ret = make([]byte, 3)
		ret[0] = 0xfd // nolint:gosec // false positive for slice index out of bounds
		binary.LittleEndian.PutUint16(ret[1:], uint16(val))
	case val <= math.MaxUint32:
		ret = make([]byte, 5)
		ret[0] = 0xfe // nolint:gosec // false positive for slice index out of bounds
		binary.LittleEndian.PutUint32(ret[1:], uint32(val))
	default:
		ret = make([]byte, 9)
		ret[0] = 0xff // nolint:gosec // false positive for slice index out of bounds
		binary.LittleEndian.PutUint64(ret[1:], val)
	}
	return ret
}
