package stego

import (
	"errors"
	"fmt"

	"github.com/yyyoichi/stego_lsb/internal/ecc"
	"github.com/yyyoichi/stego_lsb/internal/pixel"
)

var (
	ErrInvalidOption = errors.New("invalid option")
)

// ChannelSet selects the color channels that carry bits.
type ChannelSet = pixel.ChannelSet

const (
	Red     = pixel.Red
	Green   = pixel.Green
	Blue    = pixel.Blue
	RedOnly = pixel.RedOnly
	RGB     = pixel.RGB
)

// ParseChannelSet parses names like "r", "rgb" or "gb".
func ParseChannelSet(v string) (ChannelSet, bool) {
	return pixel.ParseChannelSet(v)
}

// DefaultGolaySeed is the shuffle seed used by WithGolay when callers have no
// seed of their own.
var DefaultGolaySeed = ecc.DefaultShuffleSeed

type Option func(*Stego) error

// WithChannels stores bits in the LSB of every channel in set, visited in
// R, G, B order inside each pixel. The default is RedOnly.
func WithChannels(set ChannelSet) Option {
	return func(s *Stego) error {
		if set.IsZero() || set&^pixel.RGB != 0 {
			return fmt.Errorf("%w: channel set %08b", ErrInvalidOption, uint8(set))
		}
		s.channels = set
		return nil
	}
}

// WithOffset skips the first n channel slots of the scan.
func WithOffset(n int) Option {
	return func(s *Stego) error {
		if n < 0 {
			return fmt.Errorf("%w: offset %d", ErrInvalidOption, n)
		}
		s.offset = n
		return nil
	}
}

// WithStride places consecutive bits n channel slots apart.
// A stride of 1 uses every slot.
func WithStride(n int) Option {
	return func(s *Stego) error {
		if n < 1 {
			return fmt.Errorf("%w: stride %d", ErrInvalidOption, n)
		}
		s.stride = n
		return nil
	}
}

// WithCompression compresses payloads with zstd at the given level (1-22)
// before framing. In authenticated mode compression happens before sealing.
func WithCompression(level int) Option {
	return func(s *Stego) error {
		if level < 1 || level > 22 {
			return fmt.Errorf("%w: zstd level %d", ErrInvalidOption, level)
		}
		c, err := newCompression(level)
		if err != nil {
			return err
		}
		s.zstd = c
		return nil
	}
}

// WithGolay protects the size header and the body with a Golay code whose
// codewords are spread over the carrier by a shuffle seeded with seed.
// Up to three flipped bits per codeword are corrected.
// The stored frame grows to roughly twice its size.
func WithGolay(seed int64) Option {
	return func(s *Stego) error {
		s.coder = ecc.ShuffledGolay(seed)
		return nil
	}
}
