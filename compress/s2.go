package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/imd/errs"
	"github.com/klauspost/compress/s2"
)

// s2BlockSize is the stream block size. It also caps the output buffer
// allocated before any block has been decoded; the buffer grows with the data
// actually produced.
const s2BlockSize = 1 << 20

// S2Compressor trades compression ratio for speed. Useful for caches that are
// rewritten often.
//
// Payloads are written in the framed S2 stream format: every chunk is
// length-prefixed and CRC-checked, so a corrupt or forged payload fails on
// its first chunk instead of after a full-size allocation.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data as an S2 stream.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w := s2.NewWriter(&buf, s2.WriterConcurrency(1), s2.WriterBlockSize(s2BlockSize))
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress decodes an S2 stream, reading at most size+1 bytes so an
// oversized stream is reported without being fully expanded.
func (c S2Compressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize("s2", nil, size)
	}
	if size < 0 || size > MaxPayloadSize {
		return nil, fmt.Errorf("%w: s2 payload size %d out of range", errs.ErrInvalidPayload, size)
	}

	out := bytes.NewBuffer(make([]byte, 0, min(size, s2BlockSize)))
	r := s2.NewReader(bytes.NewReader(data), s2.ReaderMaxBlockSize(s2BlockSize))
	if _, err := out.ReadFrom(io.LimitReader(r, int64(size)+1)); err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrInvalidPayload, err)
	}

	return checkSize("s2", out.Bytes(), size)
}
