package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/yyyoichi/stego_lsb/internal/bitconv"
)

const (
	// SizeBytes is the length of the big-endian size header.
	SizeBytes = 4
	// SizeBits is SizeBytes expanded to bits.
	SizeBits = SizeBytes * 8
)

var (
	ErrBodyTooLarge = errors.New("frame body does not fit a 32-bit size header")
)

// BitSource yields bits of a single sequential scan. Each call continues where
// the previous one stopped.
type BitSource interface {
	ReadBits(n int) ([]bool, error)
}

// Bits is a frame expanded for embedding. Size and Body are kept apart so that
// bit coders can treat them as independent blocks.
type Bits struct {
	Size []bool
	Body []bool
}

// Len returns the total number of bits.
func (b Bits) Len() int {
	return len(b.Size) + len(b.Body)
}

// Frame is a decoded frame.
type Frame struct {
	Size [SizeBytes]byte
	Body []byte
}

// Header serializes n as the 4-byte big-endian size header.
func Header(n int) ([SizeBytes]byte, error) {
	var h [SizeBytes]byte
	if n < 0 || uint64(n) > math.MaxUint32 {
		return h, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, n)
	}
	binary.BigEndian.PutUint32(h[:], uint32(n))
	return h, nil
}

// Encode prefixes body with its size and expands both to bits.
func Encode(body []byte) (Bits, error) {
	h, err := Header(len(body))
	if err != nil {
		return Bits{}, err
	}
	return Bits{
		Size: bitconv.BytesToBools(h[:]),
		Body: bitconv.BytesToBools(body),
	}, nil
}

// Decode reads the size header from src and then exactly that many body bytes
// from the same scan. Allocation is bounded by what src can still deliver.
func Decode(src BitSource) (Frame, error) {
	var f Frame
	sizeBits, err := src.ReadBits(SizeBits)
	if err != nil {
		return f, fmt.Errorf("read size header: %w", err)
	}
	n, err := bitconv.BoolsToUint32(sizeBits)
	if err != nil {
		return f, err
	}
	binary.BigEndian.PutUint32(f.Size[:], n)

	bodyBits := uint64(n) * 8
	if bodyBits > math.MaxInt {
		return f, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, n)
	}
	bits, err := src.ReadBits(int(bodyBits))
	if err != nil {
		return f, fmt.Errorf("read %d byte body: %w", n, err)
	}
	f.Body, err = bitconv.BoolsToBytes(bits)
	if err != nil {
		return f, err
	}
	return f, nil
}
