// Package compress provides the payload codecs of the dataset cache format.
//
// A cache payload is compressed as a whole after it is serialized. The codec is
// recorded in the cache header (format.CompressionType) together with the
// uncompressed length, which every Decompressor receives and enforces.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): the payload is stored as-is
//   - Zstd (format.CompressionZstd): best ratio, the default
//   - S2 (format.CompressionS2): faster, larger
//   - LZ4 (format.CompressionLZ4): one raw LZ4 block, fastest decompression
//
// # Zstandard Implementations
//
// The default build uses github.com/klauspost/compress/zstd with pooled
// encoders and decoders. Building with cgo and the "gozstd" tag swaps in the
// libzstd binding github.com/valyala/gozstd:
//
//	go build -tags gozstd ./...
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	compressed, err := codec.Compress(payload)
//	...
//	payload, err = codec.Decompress(compressed, int(header.PayloadSize))
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use.
package compress
