package pixel

import (
	"image"

	"golang.org/x/image/draw"
)

// NewGrid copies src into an 8-bit non-premultiplied grid with the same bounds.
// Channel LSBs are only meaningful at 8 bits per channel, and NRGBA is what the
// PNG encoder writes without conversion.
func NewGrid(src image.Image) *image.NRGBA {
	if g, ok := src.(*image.NRGBA); ok {
		return Clone(g)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// AsGrid returns src itself when it already is an NRGBA grid, a copy otherwise.
func AsGrid(src image.Image) *image.NRGBA {
	if g, ok := src.(*image.NRGBA); ok {
		return g
	}
	return NewGrid(src)
}

// Clone returns an independent copy of g.
func Clone(g *image.NRGBA) *image.NRGBA {
	c := *g
	c.Pix = make([]uint8, len(g.Pix))
	copy(c.Pix, g.Pix)
	return &c
}
