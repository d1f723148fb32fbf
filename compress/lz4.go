package compress

import (
	"fmt"
	"sync"

	"github.com/arloliu/imd/errs"
	"github.com/pierrec/lz4/v4"
)

// lz4.Compressor keeps a hash table between calls, so instances are pooled.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4MaxRatio bounds block expansion: past the first bytes of a sequence,
// every further 255 bytes of match length cost one input byte.
const lz4MaxRatio = 255

// LZ4Compressor stores the payload as a single LZ4 block. LZ4 blocks carry no
// length, so decompression relies on the size recorded in the cache header.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data as one LZ4 block.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: Compressed data (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses one LZ4 block into exactly size bytes.
//
// Parameters:
//   - data: Compressed block
//   - size: Uncompressed length from the cache header
//
// Returns:
//   - []byte: Decompressed data
//   - error: errs.ErrInvalidPayload for a corrupt block, a length mismatch,
//     or a size the block cannot expand to
func (c LZ4Compressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize("lz4", nil, size)
	}
	if err := checkRatio("lz4", data, size, lz4MaxRatio); err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %w", errs.ErrInvalidPayload, err)
	}

	return checkSize("lz4", buf[:n], size)
}
