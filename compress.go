package stego

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// MaxDecompressedSize caps the output of payload decompression.
const MaxDecompressedSize = 64 << 20

var (
	ErrDecompress = errors.New("failed to decompress payload")
)

// compression holds a zstd encoder and decoder. Both are only used through
// EncodeAll and DecodeAll, which are safe for concurrent use.
// A nil *compression passes payloads through unchanged.
type compression struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCompression(level int) (*compression, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(MaxDecompressedSize),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &compression{enc: enc, dec: dec}, nil
}

func (c *compression) compress(payload []byte) ([]byte, error) {
	if c == nil {
		return payload, nil
	}
	return c.enc.EncodeAll(payload, nil), nil
}

func (c *compression) decompress(body []byte) ([]byte, error) {
	if c == nil {
		return body, nil
	}
	out, err := c.dec.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}
