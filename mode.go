package stego

import (
	"crypto/cipher"
	"fmt"

	"github.com/yyyoichi/stego_lsb/internal/frame"
	"github.com/yyyoichi/stego_lsb/internal/seal"
)

// Cipher names accepted by NewCipher.
const (
	AES256GCM         = seal.AES256GCM
	ChaCha20Poly1305  = seal.ChaCha20Poly1305
	XChaCha20Poly1305 = seal.XChaCha20Poly1305
	Ascon128          = seal.Ascon128
)

// Mode selects how the payload is framed.
// Use Plain or Authenticated; the zero value of the interface means Plain.
type Mode interface {
	frame(payload []byte) (frame.Bits, error)
	deframe(src frame.BitSource) ([]byte, error)
	// bodyLen is the frame body length for a payload of n bytes.
	bodyLen(n int) int
	// validate reports a mode that cannot frame anything.
	validate() error
}

var (
	_ Mode = plainMode{}
	_ Mode = (*authenticatedMode)(nil)
)

// Plain stores the payload as is behind its size header.
func Plain() Mode {
	return plainMode{}
}

// Authenticated seals the payload with aead under a fresh random nonce. The
// size header and the nonce are authenticated along with the ciphertext.
// A nil aead yields a mode that fails with ErrInvalidKeySize.
func Authenticated(aead cipher.AEAD) Mode {
	if aead == nil {
		return &authenticatedMode{}
	}
	return &authenticatedMode{sealer: seal.NewSealer(aead)}
}

// NewCipher builds an AEAD by name with a caller supplied key.
func NewCipher(name string, key []byte) (cipher.AEAD, error) {
	return seal.New(name, key)
}

// CipherKeySize returns the key length the named cipher expects.
func CipherKeySize(name string) (int, error) {
	return seal.KeySize(name)
}

type plainMode struct{}

func (plainMode) frame(payload []byte) (frame.Bits, error) {
	return frame.Encode(payload)
}

func (plainMode) deframe(src frame.BitSource) ([]byte, error) {
	f, err := frame.Decode(src)
	if err != nil {
		return nil, err
	}
	return f.Body, nil
}

func (plainMode) bodyLen(n int) int {
	return n
}

func (plainMode) validate() error {
	return nil
}

type authenticatedMode struct {
	sealer *seal.Sealer
}

func (m *authenticatedMode) frame(payload []byte) (frame.Bits, error) {
	return m.sealer.Frame(payload)
}

func (m *authenticatedMode) deframe(src frame.BitSource) ([]byte, error) {
	return m.sealer.Deframe(src)
}

func (m *authenticatedMode) bodyLen(n int) int {
	return m.sealer.BodyLen(n)
}

func (m *authenticatedMode) validate() error {
	if m.sealer == nil {
		return fmt.Errorf("%w: nil cipher", ErrInvalidKeySize)
	}
	return nil
}
