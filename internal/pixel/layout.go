package pixel

import (
	"errors"
	"fmt"
	"image"
)

var (
	ErrCapacityExceeded = errors.New("carrier capacity exceeded")
	ErrBoundsMismatch   = errors.New("carrier bounds do not match layout")
)

// Slot is the physical location of one logical bit.
type Slot struct {
	X, Y    int
	Channel Channel
}

// Layout maps logical bit indexes onto channel LSBs of a carrier.
//
// Raw slots are numbered column by column: x is the outer loop and y the inner
// loop, both starting at the bounds minimum, and inside a pixel the selected
// channels are visited in R, G, B order. Logical bit i occupies raw slot
// offset + i*stride.
type Layout struct {
	bounds   image.Rectangle
	channels []Channel
	offset   int
	stride   int
}

// NewLayout creates a layout for a carrier of the given bounds.
// An empty channel set falls back to RedOnly, a negative offset to 0 and a
// stride below 1 to 1.
func NewLayout(bounds image.Rectangle, set ChannelSet, offset, stride int) Layout {
	if set.IsZero() {
		set = RedOnly
	}
	if offset < 0 {
		offset = 0
	}
	if stride < 1 {
		stride = 1
	}
	return Layout{
		bounds:   bounds,
		channels: set.Channels(),
		offset:   offset,
		stride:   stride,
	}
}

func (l Layout) Bounds() image.Rectangle {
	return l.bounds
}

// ChannelsPerPixel returns how many slots each pixel offers.
func (l Layout) ChannelsPerPixel() int {
	return len(l.channels)
}

// RawSlots returns width*height*channelsPerPixel.
func (l Layout) RawSlots() int {
	return l.bounds.Dx() * l.bounds.Dy() * len(l.channels)
}

// Capacity returns the number of logical bits the layout can address.
func (l Layout) Capacity() int {
	raw := l.RawSlots()
	if l.offset >= raw {
		return 0
	}
	return (raw-l.offset-1)/l.stride + 1
}

// Fits returns ErrCapacityExceeded when bits logical bits starting at from do
// not fit.
func (l Layout) Fits(from, bits int) error {
	if c := l.Capacity(); bits < 0 || from < 0 || from > c || bits > c-from {
		return fmt.Errorf("%w: need %d bits from slot %d, have %d", ErrCapacityExceeded, bits, from, c)
	}
	return nil
}

// Locate maps a logical bit index to its slot. It never wraps around.
func (l Layout) Locate(index int) (Slot, error) {
	if index < 0 || index >= l.Capacity() {
		return Slot{}, fmt.Errorf("%w: bit %d, capacity %d", ErrCapacityExceeded, index, l.Capacity())
	}
	raw := l.offset + index*l.stride
	n := len(l.channels)
	px, ch := raw/n, raw%n
	h := l.bounds.Dy()
	return Slot{
		X:       l.bounds.Min.X + px/h,
		Y:       l.bounds.Min.Y + px%h,
		Channel: l.channels[ch],
	}, nil
}

func (l Layout) check(img *image.NRGBA) error {
	if img.Bounds() != l.bounds {
		return fmt.Errorf("%w: image %v, layout %v", ErrBoundsMismatch, img.Bounds(), l.bounds)
	}
	return nil
}
