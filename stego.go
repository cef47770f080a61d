package stego

import (
	"fmt"
	"image"

	"github.com/yyyoichi/stego_lsb/internal/bitconv"
	"github.com/yyyoichi/stego_lsb/internal/ecc"
	"github.com/yyyoichi/stego_lsb/internal/frame"
	"github.com/yyyoichi/stego_lsb/internal/pixel"
	"github.com/yyyoichi/stego_lsb/internal/seal"
)

var (
	ErrCapacityExceeded     = pixel.ErrCapacityExceeded
	ErrMalformedLength      = bitconv.ErrMalformedLength
	ErrAuthenticationFailed = seal.ErrAuthenticationFailed
	ErrInvalidKeySize       = seal.ErrInvalidKeySize
	ErrUnknownCipher        = seal.ErrUnknownCipher
)

// Encode hides payload in carrier with the specified options.
// This is a convenience function that creates a Stego instance and calls its Encode method.
func Encode(carrier *image.NRGBA, payload []byte, mode Mode, opts ...Option) (*image.NRGBA, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.Encode(carrier, payload, mode)
}

// Decode recovers a payload from carrier with the specified options.
// This is a convenience function that creates a Stego instance and calls its Decode method.
func Decode(carrier image.Image, mode Mode, opts ...Option) ([]byte, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.Decode(carrier, mode)
}

// NewCarrier copies src into an 8-bit NRGBA grid that Encode can write to.
// The source image is never modified.
func NewCarrier(src image.Image) *image.NRGBA {
	return pixel.NewGrid(src)
}

// Stego holds the embedding policy. It has no mutable state after New and
// may be shared between goroutines.
type Stego struct {
	channels pixel.ChannelSet
	offset   int
	stride   int
	coder    ecc.Coder
	zstd     *compression
}

// New initializes an embedding policy.
// Without options one bit is stored per pixel in the red channel, starting at
// the first pixel, without compression or error correction.
func New(opts ...Option) (*Stego, error) {
	s := &Stego{
		channels: pixel.RedOnly,
		offset:   0,
		stride:   1,
		coder:    ecc.Plain{},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Encode writes payload into carrier and returns carrier.
//
// Process:
//  1. Optionally compresses the payload.
//  2. Frames it as a 32-bit size header plus body, sealing the body in
//     authenticated mode.
//  3. Optionally codes header and body bits for error correction.
//  4. Checks that every bit fits, then overwrites the selected LSBs.
//
// On error the carrier is left untouched.
func (s *Stego) Encode(carrier *image.NRGBA, payload []byte, mode Mode) (*image.NRGBA, error) {
	if carrier == nil {
		return nil, fmt.Errorf("%w: nil carrier", ErrCapacityExceeded)
	}
	if mode == nil {
		mode = Plain()
	}
	if err := mode.validate(); err != nil {
		return nil, err
	}
	body, err := s.zstd.compress(payload)
	if err != nil {
		return nil, err
	}
	bits, err := mode.frame(body)
	if err != nil {
		return nil, err
	}
	if bits.Size, err = s.coder.Encode(bits.Size); err != nil {
		return nil, err
	}
	if bits.Body, err = s.coder.Encode(bits.Body); err != nil {
		return nil, err
	}

	l := s.layout(carrier.Bounds())
	if err := l.Fits(0, bits.Len()); err != nil {
		return nil, err
	}
	w, err := pixel.NewWriter(carrier, l)
	if err != nil {
		return nil, err
	}
	if err := w.WriteBits(bits.Size); err != nil {
		return nil, err
	}
	if err := w.WriteBits(bits.Body); err != nil {
		return nil, err
	}
	return carrier, nil
}

// Decode reads the frame at the start of carrier and returns its payload.
// A carrier that holds no frame yields garbage or ErrCapacityExceeded in plain
// mode and ErrAuthenticationFailed in authenticated mode.
func (s *Stego) Decode(carrier image.Image, mode Mode) ([]byte, error) {
	if carrier == nil {
		return nil, fmt.Errorf("%w: nil carrier", ErrCapacityExceeded)
	}
	if mode == nil {
		mode = Plain()
	}
	if err := mode.validate(); err != nil {
		return nil, err
	}
	grid := pixel.AsGrid(carrier)
	r, err := pixel.NewReader(grid, s.layout(grid.Bounds()))
	if err != nil {
		return nil, err
	}
	body, err := mode.deframe(ecc.NewReader(r, s.coder))
	if err != nil {
		return nil, err
	}
	return s.zstd.decompress(body)
}

// Capacity returns the largest payload in bytes that Encode accepts for a
// carrier of the given bounds. With compression enabled the limit applies to
// the compressed payload. An unusable mode has capacity 0.
func (s *Stego) Capacity(bounds image.Rectangle, mode Mode) int {
	if mode == nil {
		mode = Plain()
	}
	if mode.validate() != nil {
		return 0
	}
	avail := s.layout(bounds).Capacity() - s.coder.EncodedLen(frame.SizeBits)
	fits := func(n int) bool {
		return s.coder.EncodedLen(8*mode.bodyLen(n)) <= avail
	}
	if !fits(0) {
		return 0
	}
	// largest n with fits(n); coded length grows with n
	lo, hi := 0, avail/8+1
	for lo+1 < hi {
		mid := lo + (hi-lo)/2
		if fits(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

func (s *Stego) layout(bounds image.Rectangle) pixel.Layout {
	return pixel.NewLayout(bounds, s.channels, s.offset, s.stride)
}
