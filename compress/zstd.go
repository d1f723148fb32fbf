package compress

import (
	"fmt"

	"github.com/arloliu/imd/errs"
	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor provides Zstandard compression, the default codec for
// dataset caches. CSR arrays are dominated by small integers and repeated
// column runs, which Zstandard compresses well.
//
// The implementation is github.com/klauspost/compress/zstd unless the module
// is built with cgo and the "gozstd" build tag, which switches to
// github.com/valyala/gozstd. Both produce standard Zstandard frames, so caches
// written by one build are readable by the other.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// zstdLevel is the compression level shared by both implementations.
const zstdLevel = 3

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// zstdMaxRatio bounds frame expansion: a block yields at most 128 KiB and
// takes at least 4 bytes (3-byte block header plus one RLE byte).
const zstdMaxRatio = (128 << 10) / 4

// checkZstdFrame validates a frame against size before any output is
// allocated. Frames written by Compress always carry their content size.
func checkZstdFrame(data []byte, size int) error {
	if err := checkRatio("zstd", data, size, zstdMaxRatio); err != nil {
		return err
	}

	var h zstd.Header
	if err := h.Decode(data); err != nil {
		return fmt.Errorf("%w: zstd: %w", errs.ErrInvalidPayload, err)
	}
	if h.HasFCS && h.FrameContentSize != uint64(size) {
		return fmt.Errorf("%w: zstd frame holds %d bytes, want %d",
			errs.ErrInvalidPayload, h.FrameContentSize, size)
	}

	return nil
}
