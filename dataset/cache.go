package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/imd/calibration"
	"github.com/arloliu/imd/compress"
	"github.com/arloliu/imd/csr"
	"github.com/arloliu/imd/endian"
	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/format"
	"github.com/arloliu/imd/internal/encoding"
	"github.com/arloliu/imd/internal/hash"
	"github.com/arloliu/imd/internal/options"
	"github.com/arloliu/imd/internal/pool"
	"github.com/arloliu/imd/section"
)

type cacheConfig struct {
	compression format.CompressionType
	engine      endian.EndianEngine
	sourceKey   uint64
}

// CacheOption configures Encode and WriteTo.
type CacheOption = options.Option[*cacheConfig]

// WithCompression sets the payload codec. The default is zstd.
func WithCompression(c format.CompressionType) CacheOption {
	return options.New(func(cfg *cacheConfig) error {
		if !c.IsValid() {
			return fmt.Errorf("%w: unknown compression type %d", errs.ErrInvalidHeaderFlags, uint8(c))
		}
		cfg.compression = c

		return nil
	})
}

// WithCacheByteOrder sets the byte order of the header counts and the payload.
// The default is little-endian.
func WithCacheByteOrder(engine endian.EndianEngine) CacheOption {
	return options.New(func(cfg *cacheConfig) error {
		if engine == nil {
			return errors.New("byte order engine must not be nil")
		}
		cfg.engine = engine

		return nil
	})
}

// WithSourceKey records an identifier of the source the dataset was decoded
// from in the cache header, so stale caches can be detected without decoding
// the payload. The default is zero (unknown source).
func WithSourceKey(key uint64) CacheOption {
	return options.NoError(func(cfg *cacheConfig) {
		cfg.sourceKey = key
	})
}

func payloadSize(d *Dataset) int {
	channels := d.NumChannels()
	entries := d.NumEntries()

	return encoding.ChannelNamesSize(d.names) +
		3*8*channels +
		8*(d.NumRows()+1) +
		4*entries +
		2*2*entries
}

// Encode serializes d into the cache format: a section.CacheHeader followed by
// the compressed payload.
//
// Parameters:
//   - d: dataset to serialize
//   - opts: WithCompression, WithCacheByteOrder
//
// Returns:
//   - []byte: the complete cache image
//   - error: option, channel name or compression errors
func Encode(d *Dataset, opts ...CacheOption) ([]byte, error) {
	cfg := &cacheConfig{
		compression: format.CompressionZstd,
		engine:      endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	buf := pool.GetCacheBuffer()
	defer pool.PutCacheBuffer(buf)
	buf.Grow(payloadSize(d))

	store := d.store
	engine := cfg.engine
	buf.B, err = encoding.AppendChannelNames(buf.B, d.names, engine)
	if err != nil {
		return nil, err
	}
	buf.B = encoding.AppendFloat64s(buf.B, calibration.Masses(d.channels), engine)
	buf.B = encoding.AppendFloat64s(buf.B, d.slopes, engine)
	buf.B = encoding.AppendFloat64s(buf.B, d.intercepts, engine)
	buf.B = encoding.AppendOffsets(buf.B, store.RowOffsets(), engine)
	buf.B = encoding.AppendUint32s(buf.B, store.ColumnIndices(), engine)
	buf.B = encoding.AppendUint16s(buf.B, store.Intensities(), engine)
	buf.B = encoding.AppendUint16s(buf.B, store.Pulses(), engine)

	payload := buf.Bytes()

	header := section.NewCacheHeader()
	header.Flag.WithEngine(engine)
	header.Flag.SetCompression(cfg.compression)
	header.ChannelCount = uint32(d.NumChannels())
	header.RowCount = uint64(d.NumRows())
	header.EntryCount = uint64(d.NumEntries())
	header.PayloadSize = uint64(len(payload))
	header.Checksum = hash.Checksum(payload)
	header.ChannelFingerprint = hash.Fingerprint(d.names)
	header.SourceKey = cfg.sourceKey

	compressed, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compressing cache payload with %s: %w", cfg.compression, err)
	}

	// compressed may alias the pooled buffer.
	out := make([]byte, 0, section.PayloadOffset+len(compressed))
	out = append(out, header.Bytes()...)
	out = append(out, compressed...)

	return out, nil
}

// Decode reconstructs a dataset from a cache image produced by Encode.
//
// The payload checksum and channel fingerprint are verified before the CSR
// arrays are re-wrapped through csr.NewStore, which re-derives the channel
// name index and re-checks every store invariant.
//
// Returns:
//   - *Dataset: the reconstructed dataset
//   - error: errs.ErrInvalidHeaderSize, errs.ErrInvalidMagicNumber,
//     errs.ErrInvalidHeaderFlags, errs.ErrChecksumMismatch,
//     errs.ErrInvalidChannelNames or errs.ErrInvalidPayload
func Decode(data []byte) (*Dataset, error) {
	header, err := section.ParseCacheHeader(data)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(header.Flag.Compression())
	if err != nil {
		return nil, err
	}

	if header.PayloadSize > compress.MaxPayloadSize || header.RowCount >= compress.MaxPayloadSize ||
		header.EntryCount > compress.MaxPayloadSize {
		return nil, fmt.Errorf("%w: header sizes out of range (payload %d, rows %d, entries %d)",
			errs.ErrInvalidPayload, header.PayloadSize, header.RowCount, header.EntryCount)
	}
	if lo, hi := payloadBounds(header); header.PayloadSize < lo || header.PayloadSize > hi {
		return nil, fmt.Errorf("%w: payload size %d outside [%d, %d] implied by %d channels, %d rows, %d entries",
			errs.ErrInvalidPayload, header.PayloadSize, lo, hi, header.ChannelCount, header.RowCount, header.EntryCount)
	}

	payload, err := codec.Decompress(data[section.PayloadOffset:], int(header.PayloadSize))
	if err != nil {
		return nil, err
	}

	if sum := hash.Checksum(payload); sum != header.Checksum {
		return nil, fmt.Errorf("%w: payload hash 0x%016x, header has 0x%016x", errs.ErrChecksumMismatch, sum, header.Checksum)
	}

	return decodePayload(header, payload)
}

// payloadBounds returns the smallest and largest uncompressed payload the
// header counts allow. Only the channel name lengths are unknown.
func payloadBounds(h section.CacheHeader) (lo, hi uint64) {
	channels := uint64(h.ChannelCount)
	names := 4 + 2*channels
	cal := 3 * 8 * channels
	offsets := 8 * (h.RowCount + 1)
	entries := (4 + 2 + 2) * h.EntryCount
	lo = names + cal + offsets + entries

	return lo, lo + channels*section.MaxChannelNameLength
}

func decodePayload(header section.CacheHeader, payload []byte) (*Dataset, error) {
	r := encoding.NewReader(payload, header.Flag.GetEndianEngine())

	names, err := r.ChannelNames()
	if err != nil {
		return nil, err
	}
	if uint64(len(names)) != uint64(header.ChannelCount) {
		return nil, fmt.Errorf("%w: payload has %d channels, header has %d",
			errs.ErrInvalidPayload, len(names), header.ChannelCount)
	}
	if err := encoding.VerifyChannelFingerprint(names, header.ChannelFingerprint, hash.Fingerprint); err != nil {
		return nil, err
	}

	channels := len(names)
	rows := int(header.RowCount)
	entries := int(header.EntryCount)

	masses, err := r.Float64s(channels, "masses")
	if err != nil {
		return nil, err
	}
	slopes, err := r.Float64s(channels, "slopes")
	if err != nil {
		return nil, err
	}
	intercepts, err := r.Float64s(channels, "intercepts")
	if err != nil {
		return nil, err
	}
	offsets, err := r.Offsets(rows+1, "row offsets")
	if err != nil {
		return nil, err
	}
	columns, err := r.Uint32s(entries, "column indices")
	if err != nil {
		return nil, err
	}
	intensities, err := r.Uint16s(entries, "intensities")
	if err != nil {
		return nil, err
	}
	pulses, err := r.Uint16s(entries, "pulses")
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidPayload, r.Remaining())
	}

	store, err := csr.NewStore(names, offsets, columns, intensities, pulses)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err)
	}

	cal := make([]calibration.Channel, channels)
	for i := range cal {
		cal[i] = calibration.Channel{Name: names[i], Mass: masses[i], Slope: slopes[i], Intercept: intercepts[i]}
	}

	return New(cal, store)
}

// WriteTo encodes d and writes the cache image to w.
func WriteTo(w io.Writer, d *Dataset, opts ...CacheOption) (int64, error) {
	data, err := Encode(d, opts...)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("%w: writing cache: %w", errs.ErrIO, err)
	}

	return int64(n), nil
}

// ReadFrom reads a complete cache image from r and decodes it.
func ReadFrom(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading cache: %w", errs.ErrIO, err)
	}

	return Decode(data)
}
