// Package quality measures how far a steganogram drifted from its cover.
package quality

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/yyyoichi/stego_lsb/internal/pixel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const maxValue = 255.0

var (
	ErrSizeMismatch = errors.New("images differ in bounds")
)

// Report compares the R, G and B values of two images of equal bounds.
// Alpha is ignored because it never carries bits.
type Report struct {
	// Samples is the number of compared channel values.
	Samples int
	// Changed is the number of channel values that differ.
	Changed int
	// MaxDelta is the largest absolute difference of a single value.
	MaxDelta float64
	// Bias is the mean signed difference (stego - cover).
	Bias float64
	MSE  float64
	// PSNR in dB; +Inf when the images are identical.
	PSNR float64
}

func (r Report) String() string {
	return fmt.Sprintf("samples=%d changed=%d maxDelta=%.0f mse=%.6f psnr=%.2fdB",
		r.Samples, r.Changed, r.MaxDelta, r.MSE, r.PSNR)
}

// Compare builds a Report for cover and stego.
func Compare(cover, stego image.Image) (Report, error) {
	var r Report
	if cover.Bounds() != stego.Bounds() {
		return r, fmt.Errorf("%w: %v vs %v", ErrSizeMismatch, cover.Bounds(), stego.Bounds())
	}
	a, b := rgbValues(pixel.AsGrid(cover)), rgbValues(pixel.AsGrid(stego))
	r.Samples = len(a)
	if r.Samples == 0 {
		r.PSNR = math.Inf(1)
		return r, nil
	}

	diff := make([]float64, len(a))
	floats.SubTo(diff, b, a)
	for _, d := range diff {
		if d != 0 {
			r.Changed++
		}
	}
	r.MaxDelta = floats.Norm(diff, math.Inf(1))
	r.Bias = stat.Mean(diff, nil)

	dist := floats.Distance(a, b, 2)
	r.MSE = dist * dist / float64(r.Samples)
	if r.MSE == 0 {
		r.PSNR = math.Inf(1)
	} else {
		r.PSNR = 10 * math.Log10(maxValue*maxValue/r.MSE)
	}
	return r, nil
}

func rgbValues(g *image.NRGBA) []float64 {
	b := g.Bounds()
	out := make([]float64, 0, b.Dx()*b.Dy()*3)
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := g.PixOffset(x, y)
			out = append(out, float64(g.Pix[i]), float64(g.Pix[i+1]), float64(g.Pix[i+2]))
		}
	}
	return out
}
