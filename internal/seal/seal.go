package seal

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/yyyoichi/stego_lsb/internal/frame"
)

var (
	// ErrAuthenticationFailed is returned for every frame that does not verify:
	// wrong key, tampered nonce, ciphertext, tag or size header, or a size
	// header pointing outside the carrier. No plaintext is returned with it.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidKeySize       = errors.New("invalid key size")
	ErrUnknownCipher        = errors.New("unknown cipher")
	ErrHeaderMismatch       = errors.New("sealed header differs from frame header")
)

// Sealer encrypts payloads into authenticated frames.
//
// Body layout: nonce || ciphertext || tag. The 4-byte size header of the frame
// and the nonce are bound to the ciphertext as associated data, so truncating
// or extending the frame, or swapping the nonce, fails verification.
type Sealer struct {
	aead cipher.AEAD
	rand io.Reader
}

// NewSealer wraps an AEAD whose key was supplied by the caller.
func NewSealer(aead cipher.AEAD) *Sealer {
	return &Sealer{aead: aead, rand: rand.Reader}
}

// NonceSize returns the nonce length of the underlying AEAD.
func (s *Sealer) NonceSize() int {
	return s.aead.NonceSize()
}

// Overhead returns the tag length of the underlying AEAD.
func (s *Sealer) Overhead() int {
	return s.aead.Overhead()
}

// BodyLen returns the frame body length for a plaintext of n bytes.
func (s *Sealer) BodyLen(n int) int {
	return s.aead.NonceSize() + n + s.aead.Overhead()
}

// Seal encrypts plaintext under a fresh nonce and returns the size header it
// authenticated together with the frame body.
func (s *Sealer) Seal(plaintext []byte) (header [frame.SizeBytes]byte, body []byte, err error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err = io.ReadFull(s.rand, nonce); err != nil {
		err = fmt.Errorf("failed to generate nonce: %w", err)
		return
	}
	header, err = frame.Header(s.BodyLen(len(plaintext)))
	if err != nil {
		return
	}
	body = make([]byte, len(nonce), s.BodyLen(len(plaintext)))
	copy(body, nonce)
	body = s.aead.Seal(body, nonce, plaintext, associatedData(header, nonce))
	return
}

// Frame seals plaintext and expands the result into frame bits.
func (s *Sealer) Frame(plaintext []byte) (frame.Bits, error) {
	header, body, err := s.Seal(plaintext)
	if err != nil {
		return frame.Bits{}, err
	}
	h, err := frame.Header(len(body))
	if err != nil {
		return frame.Bits{}, err
	}
	if h != header {
		return frame.Bits{}, fmt.Errorf("%w: %x != %x", ErrHeaderMismatch, h, header)
	}
	return frame.Encode(body)
}

// Open verifies a decoded frame and returns its plaintext.
func (s *Sealer) Open(f frame.Frame) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(f.Body) < ns+s.aead.Overhead() {
		return nil, ErrAuthenticationFailed
	}
	nonce := f.Body[:ns]
	plaintext, err := s.aead.Open(nil, nonce, f.Body[ns:], associatedData(f.Size, nonce))
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	// AEADs open an empty plaintext as nil
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// Deframe reads one frame from src and opens it. Read failures are reported as
// ErrAuthenticationFailed too: a forged size header must look like any other
// forgery.
func (s *Sealer) Deframe(src frame.BitSource) ([]byte, error) {
	f, err := frame.Decode(src)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return s.Open(f)
}

func associatedData(header [frame.SizeBytes]byte, nonce []byte) []byte {
	aad := make([]byte, 0, len(header)+len(nonce))
	aad = append(aad, header[:]...)
	return append(aad, nonce...)
}
