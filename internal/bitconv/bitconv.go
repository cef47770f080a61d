package bitconv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrMalformedLength = errors.New("bit count is not a multiple of 8")
)

// BytesToBools expands b into bits, least significant bit of each byte first.
func BytesToBools(b []byte) []bool {
	bits := make([]bool, 0, len(b)*8)
	for _, bb := range b {
		for j := range 8 {
			bits = append(bits, (bb>>uint(j))&1 == 1)
		}
	}
	return bits
}

// BoolsToBytes packs bits produced by BytesToBools back into bytes.
// len(bits) must be a multiple of 8.
func BoolsToBytes(bits []bool) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrMalformedLength, len(bits))
	}
	out := make([]byte, len(bits)/8)
	for i := range out {
		var v byte
		for j, bit := range bits[i*8 : (i+1)*8] {
			if bit {
				v |= 1 << uint(j)
			}
		}
		out[i] = v
	}
	return out, nil
}

// Uint32ToBools serializes v as 4 big-endian bytes and expands them.
func Uint32ToBools(v uint32) []bool {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return BytesToBools(b[:])
}

// BoolsToUint32 is the inverse of Uint32ToBools. It needs exactly 32 bits.
func BoolsToUint32(bits []bool) (uint32, error) {
	if len(bits) != 32 {
		return 0, fmt.Errorf("%w: want 32 bits, got %d", ErrMalformedLength, len(bits))
	}
	b, err := BoolsToBytes(bits)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}
