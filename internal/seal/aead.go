package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/cloudflare/circl/cipher/ascon"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// GCMNonceSize is the size of an AES-GCM nonce in bytes.
	GCMNonceSize = 12
	// GCMTagSize is the size of an AES-GCM authentication tag in bytes.
	GCMTagSize = 16
	// AsconKeySize is the size of an Ascon-128 key in bytes.
	AsconKeySize = 16
)

// Cipher names accepted by New.
const (
	AES256GCM         = "aes-256-gcm"
	ChaCha20Poly1305  = "chacha20-poly1305"
	XChaCha20Poly1305 = "xchacha20-poly1305"
	Ascon128          = "ascon-128"
)

// KeySize returns the key length the named cipher expects.
func KeySize(name string) (int, error) {
	switch name {
	case AES256GCM:
		return AESKeySize, nil
	case ChaCha20Poly1305, XChaCha20Poly1305:
		return chacha20poly1305.KeySize, nil
	case Ascon128:
		return AsconKeySize, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
}

// New returns the AEAD registered under name.
func New(name string, key []byte) (cipher.AEAD, error) {
	switch name {
	case AES256GCM:
		return NewAESGCM(key)
	case ChaCha20Poly1305:
		return NewChaCha20Poly1305(key)
	case XChaCha20Poly1305:
		return NewXChaCha20Poly1305(key)
	case Ascon128:
		return NewAscon128(key)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
}

// NewAESGCM returns AES-256-GCM with a 12-byte nonce and a 16-byte tag.
func NewAESGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// NewChaCha20Poly1305 returns ChaCha20-Poly1305 (RFC 8439), 12-byte nonce.
func NewChaCha20Poly1305(key []byte) (cipher.AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), chacha20poly1305.KeySize)
	}
	return chacha20poly1305.New(key)
}

// NewXChaCha20Poly1305 returns XChaCha20-Poly1305, 24-byte nonce.
func NewXChaCha20Poly1305(key []byte) (cipher.AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), chacha20poly1305.KeySize)
	}
	return chacha20poly1305.NewX(key)
}

// NewAscon128 returns Ascon-128, 16-byte nonce and tag.
func NewAscon128(key []byte) (cipher.AEAD, error) {
	if len(key) != AsconKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AsconKeySize)
	}
	c, err := ascon.New(key, ascon.Ascon128)
	if err != nil {
		return nil, fmt.Errorf("failed to create ascon: %w", err)
	}
	return c, nil
}
