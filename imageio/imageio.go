// Package imageio loads covers and persists steganograms.
//
// Only lossless formats can be written: any re-quantization of channel values
// destroys the embedded bits, so JPEG and palette GIF output is refused before
// a file is created.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is a lossless output format.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

var (
	ErrImageLoad         = errors.New("failed to load image")
	ErrImageSave         = errors.New("failed to save image")
	ErrLossyFormat       = errors.New("format does not preserve channel LSBs")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// FormatFromPath picks the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".jpg", ".jpeg", ".gif":
		return "", fmt.Errorf("%w: %s", ErrLossyFormat, ext)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Decode reads any registered format (PNG, BMP, TIFF, GIF, JPEG).
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrImageLoad, err)
	}
	return img, format, nil
}

// Load opens and decodes the image at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}
	defer f.Close()
	img, _, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Encode writes img to w in the given lossless format.
func Encode(w io.Writer, format Format, img image.Image) error {
	var err error
	switch format {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageSave, err)
	}
	return nil
}

// Save writes img to path, choosing the format from the extension.
func Save(path string, img image.Image) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageSave, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageSave, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrImageSave, cerr)
		}
	}()
	w := bufio.NewWriter(f)
	if err = Encode(w, format, img); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrImageSave, err)
	}
	return nil
}
