package imageio

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noisy(w, h int, seed int64) *image.NRGBA {
	rd := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{uint8(rd.Intn(256)), uint8(rd.Intn(256)), uint8(rd.Intn(256)), 255})
		}
	}
	return img
}

func assertSamePixels(t *testing.T, want *image.NRGBA, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := got.At(x, y).RGBA()
			w := want.NRGBAAt(x, y)
			require.Equal(t, [3]uint8{w.R, w.G, w.B}, [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(bb >> 8)}, "pixel %d,%d", x, y)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	img := noisy(13, 7, 1)
	for _, name := range []string{"out.png", "out.bmp", "out.tif", "OUT.TIFF"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, img))
			loaded, err := Load(path)
			require.NoError(t, err)
			assertSamePixels(t, img, loaded)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	img := noisy(5, 5, 2)
	for _, f := range []Format{PNG, BMP, TIFF} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, f, img))
		got, format, err := Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, string(f), format)
		assertSamePixels(t, img, got)
	}
	err := Encode(&bytes.Buffer{}, Format("webp"), img)
	assert.ErrorIs(t, err, ErrImageSave)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRejectLossy(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "a.JPEG", "a.gif"} {
		path := filepath.Join(dir, name)
		err := Save(path, noisy(2, 2, 3))
		assert.ErrorIs(t, err, ErrImageSave)
		assert.ErrorIs(t, err, ErrLossyFormat)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "nothing written for %s", name)
	}
	_, err := FormatFromPath("a.xyz")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrImageLoad)

	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrImageLoad)
}
