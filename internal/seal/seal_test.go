package seal

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/stego_lsb/internal/bitconv"
	"github.com/yyyoichi/stego_lsb/internal/frame"
)

type sliceSource struct {
	bits []bool
	pos  int
}

func (s *sliceSource) ReadBits(n int) ([]bool, error) {
	if n > len(s.bits)-s.pos {
		return nil, errors.New("short")
	}
	out := s.bits[s.pos : s.pos+n]
	s.pos += n
	return out, nil
}

func testKey(n int, fill byte) []byte {
	return bytes.Repeat([]byte{fill}, n)
}

func newTestSealer(t *testing.T, name string, fill byte) *Sealer {
	t.Helper()
	n, err := KeySize(name)
	require.NoError(t, err)
	aead, err := New(name, testKey(n, fill))
	require.NoError(t, err)
	return NewSealer(aead)
}

var cipherNames = []string{AES256GCM, ChaCha20Poly1305, XChaCha20Poly1305, Ascon128}

func TestSealOpen(t *testing.T) {
	payload := []byte("Steganography rules!!")
	for _, name := range cipherNames {
		t.Run(name, func(t *testing.T) {
			s := newTestSealer(t, name, 0x42)
			header, body, err := s.Seal(payload)
			require.NoError(t, err)
			assert.Len(t, body, s.BodyLen(len(payload)))
			assert.Equal(t, uint32(len(body)), binary.BigEndian.Uint32(header[:]))

			plaintext, err := s.Open(frame.Frame{Size: header, Body: body})
			require.NoError(t, err)
			assert.Equal(t, payload, plaintext)
		})
	}
}

func TestHeaderLength(t *testing.T) {
	payload := []byte("Steganography rules!!")
	require.Len(t, payload, 21)
	for _, name := range []string{AES256GCM, ChaCha20Poly1305} {
		s := newTestSealer(t, name, 1)
		header, _, err := s.Seal(payload)
		require.NoError(t, err)
		assert.Equal(t, uint32(12+21+16), binary.BigEndian.Uint32(header[:]), name)
	}
	x := newTestSealer(t, XChaCha20Poly1305, 1)
	assert.Equal(t, 24+21+16, x.BodyLen(21))
	a := newTestSealer(t, Ascon128, 1)
	assert.Equal(t, 16+21+16, a.BodyLen(21))
}

func TestSealOpenEmpty(t *testing.T) {
	for _, name := range cipherNames {
		t.Run(name, func(t *testing.T) {
			s := newTestSealer(t, name, 0x17)
			bits, err := s.Frame([]byte{})
			require.NoError(t, err)
			assert.Len(t, bits.Body, 8*s.BodyLen(0))

			plaintext, err := s.Deframe(&sliceSource{bits: append(bits.Size, bits.Body...)})
			require.NoError(t, err)
			assert.NotNil(t, plaintext)
			assert.Equal(t, []byte{}, plaintext)
		})
	}
}

func TestFreshNonce(t *testing.T) {
	s := newTestSealer(t, AES256GCM, 3)
	_, b1, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	_, b2, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, b1[:s.NonceSize()], b2[:s.NonceSize()])
	assert.NotEqual(t, b1, b2)
}

func TestTamper(t *testing.T) {
	payload := []byte("attack at dawn")
	for _, name := range cipherNames {
		t.Run(name, func(t *testing.T) {
			s := newTestSealer(t, name, 9)
			header, body, err := s.Seal(payload)
			require.NoError(t, err)

			// every single-bit flip in the body
			for i := range body {
				for bit := range 8 {
					damaged := append([]byte{}, body...)
					damaged[i] ^= 1 << bit
					plaintext, err := s.Open(frame.Frame{Size: header, Body: damaged})
					require.ErrorIs(t, err, ErrAuthenticationFailed, "byte %d bit %d", i, bit)
					require.Nil(t, plaintext)
				}
			}
			// every single-bit flip in the size header, body unchanged
			for i := range header {
				for bit := range 8 {
					h := header
					h[i] ^= 1 << bit
					plaintext, err := s.Open(frame.Frame{Size: h, Body: body})
					require.ErrorIs(t, err, ErrAuthenticationFailed, "header byte %d bit %d", i, bit)
					require.Nil(t, plaintext)
				}
			}
		})
	}
}

func TestWrongKey(t *testing.T) {
	for _, name := range cipherNames {
		s := newTestSealer(t, name, 1)
		other := newTestSealer(t, name, 2)
		header, body, err := s.Seal([]byte("secret"))
		require.NoError(t, err)
		_, err = other.Open(frame.Frame{Size: header, Body: body})
		assert.ErrorIs(t, err, ErrAuthenticationFailed, name)
	}
}

func TestShortBody(t *testing.T) {
	s := newTestSealer(t, AES256GCM, 1)
	for _, n := range []int{0, 1, 12, 27} {
		h, err := frame.Header(n)
		require.NoError(t, err)
		_, err = s.Open(frame.Frame{Size: h, Body: make([]byte, n)})
		assert.ErrorIs(t, err, ErrAuthenticationFailed, "n=%d", n)
	}
}

func TestFrameDeframe(t *testing.T) {
	payload := []byte("framed and sealed")
	s := newTestSealer(t, ChaCha20Poly1305, 5)
	b, err := s.Frame(payload)
	require.NoError(t, err)
	n, err := bitconv.BoolsToUint32(b.Size)
	require.NoError(t, err)
	assert.Equal(t, uint32(s.BodyLen(len(payload))), n)

	bits := append(append([]bool{}, b.Size...), b.Body...)
	plaintext, err := s.Deframe(&sliceSource{bits: bits})
	require.NoError(t, err)
	assert.Equal(t, payload, plaintext)

	t.Run("truncated", func(t *testing.T) {
		_, err := s.Deframe(&sliceSource{bits: bits[:len(bits)-8]})
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})
	t.Run("size shrunk", func(t *testing.T) {
		forged := append(bitconv.Uint32ToBools(n-1), b.Body...)
		_, err := s.Deframe(&sliceSource{bits: forged})
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})
	t.Run("size grown", func(t *testing.T) {
		forged := append(bitconv.Uint32ToBools(n+1), b.Body...)
		forged = append(forged, make([]bool, 8)...)
		_, err := s.Deframe(&sliceSource{bits: forged})
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestNew(t *testing.T) {
	_, err := New("rot13", nil)
	assert.ErrorIs(t, err, ErrUnknownCipher)
	_, err = KeySize("rot13")
	assert.ErrorIs(t, err, ErrUnknownCipher)

	ctors := map[string]func([]byte) (cipher.AEAD, error){
		AES256GCM:         NewAESGCM,
		ChaCha20Poly1305:  NewChaCha20Poly1305,
		XChaCha20Poly1305: NewXChaCha20Poly1305,
		Ascon128:          NewAscon128,
	}
	for name, ctor := range ctors {
		_, err := ctor(make([]byte, 7))
		assert.ErrorIs(t, err, ErrInvalidKeySize, name)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("no entropy")
}

func TestNonceSourceFailure(t *testing.T) {
	s := newTestSealer(t, AES256GCM, 1)
	s.rand = failingReader{}
	_, _, err := s.Seal([]byte("x"))
	assert.Error(t, err)
	_, err = s.Frame([]byte("x"))
	assert.Error(t, err)
}
