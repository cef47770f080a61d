package keys

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// MasterKeyLen is the length of a master key derived from a passphrase.
	MasterKeyLen = 32
	// MinMasterKeyLen is the shortest master key accepted from hex input.
	MinMasterKeyLen = 16
	// PassphraseRounds is the PBKDF2-SHA256 iteration count.
	PassphraseRounds = 200_000

	infoPrefix = "stego_lsb-cipher-key-v1"
)

// DefaultSalt is used when the caller has no salt of its own. Both sides of a
// channel must use the same salt.
var DefaultSalt = []byte("stego_lsb/default-salt/v1")

var (
	ErrInvalidKey = errors.New("invalid key")
)

// ParseHex decodes a hex master key of at least MinMasterKeyLen bytes.
func ParseHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if len(key) < MinMasterKeyLen {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrInvalidKey, len(key), MinMasterKeyLen)
	}
	return key, nil
}

// FromPassphrase stretches a passphrase into a master key.
func FromPassphrase(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: empty passphrase", ErrInvalidKey)
	}
	if len(salt) == 0 {
		salt = DefaultSalt
	}
	return pbkdf2.Key([]byte(passphrase), salt, PassphraseRounds, MasterKeyLen, sha256.New), nil
}

// Deriver expands one master key into independent per-cipher keys.
type Deriver struct {
	ikm  []byte
	salt []byte
}

func NewDeriver(master, salt []byte) *Deriver {
	return &Deriver{ikm: master, salt: salt}
}

// Derive returns a key of length bytes bound to the cipher name.
func (d *Deriver) Derive(name string, length int) ([]byte, error) {
	salt := d.salt
	if len(salt) == 0 {
		salt = make([]byte, sha512.Size)
	}
	info := fmt.Sprintf("%s-%s", infoPrefix, name)
	reader := hkdf.New(sha512.New, d.ikm, salt, []byte(info))
	key := make([]byte, length)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
