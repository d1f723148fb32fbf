package compress

import (
	"fmt"
	"math"

	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/format"
)

// Compressor compresses a complete dataset cache payload.
//
// Memory management:
//   - The returned slice is owned by the caller
//   - The input slice is not modified
//   - Internal encoder state may be pooled and reused
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload produced by the matching Compressor.
//
// size is the uncompressed length recorded in the cache header. A size the
// compressed input cannot expand to is rejected before any output buffer is
// allocated, and a result of any other length is rejected with
// errs.ErrInvalidPayload, so a corrupt or mismatched payload never reaches
// the dataset decoder.
type Decompressor interface {
	Decompress(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
// Built-in codecs are stateless values and safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//
// Returns:
//   - Codec: shared codec instance
//   - error: errs.ErrInvalidHeaderFlags for an unknown compression type
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported compression type %s (0x%x)",
		errs.ErrInvalidHeaderFlags, compressionType, uint8(compressionType))
}

// MaxPayloadSize is the largest uncompressed payload any codec will produce.
const MaxPayloadSize = math.MaxInt32

// checkRatio rejects a size that data could not expand to when every input
// byte yields at most maxRatio output bytes.
func checkRatio(name string, data []byte, size int, maxRatio uint64) error {
	if size < 0 || size > MaxPayloadSize || uint64(size) > uint64(len(data))*maxRatio {
		return fmt.Errorf("%w: %d-byte %s payload cannot expand to %d bytes",
			errs.ErrInvalidPayload, len(data), name, size)
	}

	return nil
}

func checkSize(name string, out []byte, size int) ([]byte, error) {
	if len(out) != size {
		return nil, fmt.Errorf("%w: %s payload decompressed to %d bytes, want %d",
			errs.ErrInvalidPayload, name, len(out), size)
	}

	return out, nil
}
