package pixel

import (
	"image"
)

// WriteBit sets the LSB of the channel that holds logical bit index.
// The other seven bits and the other channels are left untouched.
func WriteBit(img *image.NRGBA, l Layout, index int, bit bool) error {
	i, err := pixOffset(img, l, index)
	if err != nil {
		return err
	}
	if bit {
		img.Pix[i] |= 0x01
	} else {
		img.Pix[i] &= 0xfe
	}
	return nil
}

// ReadBit returns the LSB of the channel that holds logical bit index.
func ReadBit(img *image.NRGBA, l Layout, index int) (bool, error) {
	i, err := pixOffset(img, l, index)
	if err != nil {
		return false, err
	}
	return img.Pix[i]&0x01 == 1, nil
}

func pixOffset(img *image.NRGBA, l Layout, index int) (int, error) {
	if err := l.check(img); err != nil {
		return 0, err
	}
	s, err := l.Locate(index)
	if err != nil {
		return 0, err
	}
	return img.PixOffset(s.X, s.Y) + int(s.Channel), nil
}

// Cursor is the position of the next logical bit of a sequential scan.
type Cursor struct {
	index int
}

func (c Cursor) Index() int {
	return c.index
}

func (c Cursor) advance(n int) Cursor {
	return Cursor{index: c.index + n}
}

// Writer writes bits sequentially into a carrier.
type Writer struct {
	img    *image.NRGBA
	layout Layout
	cursor Cursor
}

func NewWriter(img *image.NRGBA, l Layout) (*Writer, error) {
	if err := l.check(img); err != nil {
		return nil, err
	}
	return &Writer{img: img, layout: l}, nil
}

// WriteBits writes bits at the cursor. When they do not all fit it returns
// ErrCapacityExceeded and writes nothing.
func (w *Writer) WriteBits(bits []bool) error {
	if err := w.layout.Fits(w.cursor.index, len(bits)); err != nil {
		return err
	}
	for i, bit := range bits {
		if err := WriteBit(w.img, w.layout, w.cursor.index+i, bit); err != nil {
			return err
		}
	}
	w.cursor = w.cursor.advance(len(bits))
	return nil
}

func (w *Writer) Cursor() Cursor {
	return w.cursor
}

// Reader reads bits sequentially from a carrier. Successive reads continue the
// same scan.
type Reader struct {
	img    *image.NRGBA
	layout Layout
	cursor Cursor
}

func NewReader(img *image.NRGBA, l Layout) (*Reader, error) {
	if err := l.check(img); err != nil {
		return nil, err
	}
	return &Reader{img: img, layout: l}, nil
}

// ReadBits returns the next n bits. n is checked against the remaining
// capacity before anything is allocated.
func (r *Reader) ReadBits(n int) ([]bool, error) {
	if err := r.layout.Fits(r.cursor.index, n); err != nil {
		return nil, err
	}
	bits := make([]bool, n)
	for i := range bits {
		bit, err := ReadBit(r.img, r.layout, r.cursor.index+i)
		if err != nil {
			return nil, err
		}
		bits[i] = bit
	}
	r.cursor = r.cursor.advance(n)
	return bits, nil
}

// Remaining returns the number of logical bits left after the cursor.
func (r *Reader) Remaining() int {
	return r.layout.Capacity() - r.cursor.index
}

func (r *Reader) Cursor() Cursor {
	return r.cursor
}
