//go:build cgo && gozstd

package compress

import (
	"fmt"

	"github.com/arloliu/imd/errs"
	"github.com/valyala/gozstd"
)

// Compress compresses the input data using Zstandard compression.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, zstdLevel), nil
}

// Decompress decompresses a Zstd frame of exactly size bytes. The frame header
// is checked against size before the output buffer is allocated.
func (c ZstdCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize("zstd", nil, size)
	}
	if err := checkZstdFrame(data, size); err != nil {
		return nil, err
	}

	out, err := gozstd.Decompress(make([]byte, 0, size), data)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", errs.ErrInvalidPayload, err)
	}

	return checkSize("zstd", out, size)
}
