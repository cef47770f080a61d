package ecc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	bits []bool
	pos  int
}

func (s *sliceSource) ReadBits(n int) ([]bool, error) {
	out := s.bits[s.pos : s.pos+n]
	s.pos += n
	return out, nil
}

func randomBits(rd *rand.Rand, n int) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = rd.Intn(2) == 1
	}
	return bits
}

func TestShuffledGolay(t *testing.T) {
	var sg ShuffledGolay = 12345
	rd := rand.New(rand.NewSource(1))

	t.Run("encode length", func(t *testing.T) {
		for size := range 64 * 4 {
			out, err := sg.Encode(randomBits(rd, size))
			require.NoError(t, err, "size %d", size)
			assert.Len(t, out, sg.EncodedLen(size), "size %d", size)
		}
	})

	t.Run("encode/decode", func(t *testing.T) {
		for _, size := range []int{1, 12, 32, 100, 168, 1024} {
			bits := randomBits(rd, size)
			encoded, err := sg.Encode(bits)
			require.NoError(t, err)
			decoded, err := sg.Decode(encoded, size)
			require.NoError(t, err)
			assert.Equal(t, bits, decoded, "size %d", size)
		}
	})

	t.Run("corrects single flips", func(t *testing.T) {
		bits := randomBits(rd, 32)
		encoded, err := sg.Encode(bits)
		require.NoError(t, err)
		for _, at := range []int{0, 5, len(encoded) - 1} {
			damaged := append([]bool{}, encoded...)
			damaged[at] = !damaged[at]
			decoded, err := sg.Decode(damaged, len(bits))
			require.NoError(t, err)
			assert.Equal(t, bits, decoded, "flip at %d", at)
		}
	})

	t.Run("wrong block length", func(t *testing.T) {
		_, err := sg.Decode(make([]bool, 5), 32)
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		encoded, err := sg.Encode(nil)
		require.NoError(t, err)
		assert.Empty(t, encoded)
		assert.Zero(t, sg.EncodedLen(0))
		out, err := sg.Decode(nil, 0)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestPlain(t *testing.T) {
	var p Plain
	bits := []bool{true, false, true}
	encoded, err := p.Encode(bits)
	require.NoError(t, err)
	assert.Equal(t, bits, encoded)
	assert.Equal(t, 3, p.EncodedLen(3))
	out, err := p.Decode(bits, 2)
	require.NoError(t, err)
	assert.Equal(t, bits[:2], out)
	_, err = p.Decode(bits, 4)
	assert.Error(t, err)
}

func TestReader(t *testing.T) {
	rd := rand.New(rand.NewSource(2))
	for _, coder := range []Coder{Plain{}, ShuffledGolay(DefaultShuffleSeed)} {
		head := randomBits(rd, 32)
		body := randomBits(rd, 80)
		codedHead, err := coder.Encode(head)
		require.NoError(t, err)
		codedBody, err := coder.Encode(body)
		require.NoError(t, err)
		src := &sliceSource{bits: append(codedHead, codedBody...)}

		r := NewReader(src, coder)
		gotHead, err := r.ReadBits(32)
		require.NoError(t, err)
		gotBody, err := r.ReadBits(80)
		require.NoError(t, err)
		assert.Equal(t, head, gotHead)
		assert.Equal(t, body, gotBody)
		assert.Equal(t, len(src.bits), src.pos)
	}
}
