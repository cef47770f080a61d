package ecc

import (
	"fmt"
	"math/rand"

	"github.com/yyyoichi/bitstream-go"
	"github.com/yyyoichi/golay"
)

var (
	DefaultShuffleSeed int64 = 1234567890
)

// Coder transforms a block of bits before it reaches the carrier and back.
type Coder interface {
	// Encode returns the coded form of bits.
	Encode(bits []bool) ([]bool, error)
	// Decode recovers size bits from a block produced by Encode.
	Decode(bits []bool, size int) ([]bool, error)
	// EncodedLen returns len(Encode(bits)) for len(bits) == size.
	EncodedLen(size int) int
}

// Source is a sequential bit source such as a carrier scan.
type Source interface {
	ReadBits(n int) ([]bool, error)
}

// Reader decodes blocks read from a Source. It is itself a Source, so framing
// code can read coded carriers the same way it reads plain ones.
type Reader struct {
	src   Source
	coder Coder
}

func NewReader(src Source, coder Coder) *Reader {
	return &Reader{src: src, coder: coder}
}

// ReadBits reads the coded length of n bits and decodes them.
func (r *Reader) ReadBits(n int) ([]bool, error) {
	raw, err := r.src.ReadBits(r.coder.EncodedLen(n))
	if err != nil {
		return nil, err
	}
	return r.coder.Decode(raw, n)
}

var _ Coder = Plain{}

// Plain passes bits through unchanged.
type Plain struct{}

func (Plain) Encode(bits []bool) ([]bool, error) {
	return bits, nil
}

func (Plain) Decode(bits []bool, size int) ([]bool, error) {
	if len(bits) < size {
		return nil, fmt.Errorf("plain block: want %d bits, got %d", size, len(bits))
	}
	return bits[:size], nil
}

func (Plain) EncodedLen(size int) int {
	return size
}

var _ Coder = ShuffledGolay(0)

// ShuffledGolay codes blocks with the binary Golay code and then permutes the
// coded bits with a seeded shuffle, spreading each codeword over the carrier.
type ShuffledGolay int64

func (sg ShuffledGolay) Encode(bits []bool) ([]bool, error) {
	if len(bits) == 0 {
		return nil, nil
	}
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range bits {
		w.WriteBool(v)
	}
	var encoded []uint64
	enc := golay.NewEncoder(&encoded)
	if err := enc.Encode(w.Data(), len(bits)); err != nil {
		return nil, fmt.Errorf("golay encode: %w", err)
	}
	encodedLen := enc.Bits()

	index := sg.permutation(encodedLen)
	r := bitstream.NewBitReader(encoded, 0, 0)
	out := make([]bool, encodedLen)
	for i := range out {
		out[i], _ = r.ReadBitAt(index[i])
	}
	return out, nil
}

func (sg ShuffledGolay) Decode(bits []bool, size int) ([]bool, error) {
	if size == 0 {
		return []bool{}, nil
	}
	if want := sg.EncodedLen(size); len(bits) != want {
		return nil, fmt.Errorf("golay block: want %d bits, got %d", want, len(bits))
	}
	// undo the shuffle
	index := sg.permutation(len(bits))
	w := bitstream.NewBitWriter[uint64](0, 0)
	for i := range bits {
		w.WriteBitAt(index[i], bits[i])
	}

	var decoded []uint64
	dec := golay.NewDecoder(w.Data(), w.Bits())
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("golay decode: %w", err)
	}

	r := bitstream.NewBitReader(decoded, 0, 0)
	out := make([]bool, size)
	for i := range out {
		out[i], _ = r.ReadBitAt(i)
	}
	return out, nil
}

func (sg ShuffledGolay) EncodedLen(size int) int {
	if size == 0 {
		return 0
	}
	return golay.EncodedBits(size)
}

func (sg ShuffledGolay) permutation(length int) []int {
	index := make([]int, length)
	for i := range index {
		index[i] = i
	}
	rd := rand.New(rand.NewSource(int64(sg)))
	rd.Shuffle(length, func(i, j int) {
		index[i], index[j] = index[j], index[i]
	})
	return index
}
