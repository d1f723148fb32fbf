package section

import (
	"encoding/binary"

	"github.com/arloliu/imd/errs"
)

// CacheHeader represents the fixed-size header at the start of a dataset cache.
type CacheHeader struct {
	// ChannelCount is the number of channels (matrix columns).
	ChannelCount uint32 // byte offset 4-7
	// RowCount is the number of rows (pushes).
	RowCount uint64 // byte offset 8-15
	// EntryCount is the number of stored non-zero readings.
	EntryCount uint64 // byte offset 16-23
	// Checksum is the xxHash64 of the uncompressed payload.
	Checksum uint64 // byte offset 24-31
	// PayloadSize is the length of the uncompressed payload.
	PayloadSize uint64 // byte offset 32-39
	// ChannelFingerprint is the xxHash64 of the ordered channel names.
	ChannelFingerprint uint64 // byte offset 40-47
	// SourceKey identifies the source file and decode settings the cache was
	// built from. Zero means unknown.
	SourceKey uint64 // byte offset 48-55

	// Flag is a packed field for byte order, version, compression and magic number.
	Flag CacheFlag // byte offset 0-3
}

// NewCacheHeader creates a header with a default flag. Counts, checksum and
// sizes are set by the cache encoder.
func NewCacheHeader() *CacheHeader {
	return &CacheHeader{Flag: NewCacheFlag()}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly HeaderSize bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not HeaderSize bytes, or flag validation errors
func (h *CacheHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	// Options is always little-endian; it carries the byte order of the rest.
	h.Flag.Options = binary.LittleEndian.Uint16(data[0:2])
	h.Flag.Version = data[2]
	h.Flag.CompressionType = data[3]

	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()
	h.ChannelCount = engine.Uint32(data[4:8])
	h.RowCount = engine.Uint64(data[8:16])
	h.EntryCount = engine.Uint64(data[16:24])
	h.Checksum = engine.Uint64(data[24:32])
	h.PayloadSize = engine.Uint64(data[32:40])
	h.ChannelFingerprint = engine.Uint64(data[40:48])
	h.SourceKey = engine.Uint64(data[48:56])

	return nil
}

// Bytes serializes the CacheHeader into a byte slice.
func (h *CacheHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := h.Flag.GetEndianEngine()

	binary.LittleEndian.PutUint16(b[0:2], h.Flag.Options)
	b[2] = h.Flag.Version
	b[3] = h.Flag.CompressionType
	engine.PutUint32(b[4:8], h.ChannelCount)
	engine.PutUint64(b[8:16], h.RowCount)
	engine.PutUint64(b[16:24], h.EntryCount)
	engine.PutUint64(b[24:32], h.Checksum)
	engine.PutUint64(b[32:40], h.PayloadSize)
	engine.PutUint64(b[40:48], h.ChannelFingerprint)
	engine.PutUint64(b[48:56], h.SourceKey)

	return b
}

// ParseCacheHeader parses a CacheHeader from the start of data.
//
// Parameters:
//   - data: Byte slice containing header (must be at least HeaderSize bytes)
//
// Returns:
//   - CacheHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize or flag validation errors
func ParseCacheHeader(data []byte) (CacheHeader, error) {
	if len(data) < HeaderSize {
		return CacheHeader{}, errs.ErrInvalidHeaderSize
	}

	h := CacheHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return CacheHeader{}, err
	}

	return h, nil
}

// IsCache reports whether data starts with a cache flag word.
func IsCache(data []byte) bool {
	if len(data) < 2 {
		return false
	}

	return binary.LittleEndian.Uint16(data[0:2])&MagicNumberMask == MagicCacheV1Opt
}
