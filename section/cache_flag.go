package section

import (
	"fmt"

	"github.com/arloliu/imd/endian"
	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/format"
)

// CacheFlag represents the packed flag word at the start of a cache header.
type CacheFlag struct {
	// Options is a packed field for various options.
	// Bit 0 is endianness flag, 0 means little-endian, 1 means big-endian.
	// Bit 1-3 are reserved for future use, must be set to 0.
	// Bit 4-15 are magic number to identify the cache format:
	//   - 0xEC10 (0b1110_1100_0001_0000): dataset cache format v1
	Options uint16

	// Version is the payload layout version.
	Version uint8
	// CompressionType is the codec applied to the payload.
	CompressionType uint8
}

// NewCacheFlag creates a little-endian, zstd-compressed v1 flag.
func NewCacheFlag() CacheFlag {
	flag := CacheFlag{
		Options:         MagicCacheV1Opt,
		Version:         CacheVersionV1,
		CompressionType: uint8(format.CompressionZstd),
	}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the payload is little-endian.
func (f CacheFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the payload is big-endian.
func (f CacheFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *CacheFlag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *CacheFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// WithEngine sets the byte order matching engine.
func (f *CacheFlag) WithEngine(engine endian.EndianEngine) {
	if endian.IsLittleEndian(engine) {
		f.WithLittleEndian()
	} else {
		f.WithBigEndian()
	}
}

// GetEndianEngine returns the engine for the flag's byte order.
func (f CacheFlag) GetEndianEngine() endian.EndianEngine {
	if f.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// GetMagicNumber returns the magic number from the Options field.
func (f CacheFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// Compression returns the payload compression type.
func (f CacheFlag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// SetCompression sets the payload compression type.
func (f *CacheFlag) SetCompression(compression format.CompressionType) {
	f.CompressionType = uint8(compression)
}

// IsValidMagicNumber checks if the magic number is valid.
func (f CacheFlag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicCacheV1Opt
}

// Validate checks if the flag contains valid values.
func (f CacheFlag) Validate() error {
	if !f.IsValidMagicNumber() {
		return fmt.Errorf("%w: 0x%04X", errs.ErrInvalidMagicNumber, f.GetMagicNumber())
	}

	if f.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved bits set", errs.ErrInvalidHeaderFlags)
	}

	if f.Version != CacheVersionV1 {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidHeaderFlags, f.Version)
	}

	if !f.Compression().IsValid() {
		return fmt.Errorf("%w: unknown compression type %d", errs.ErrInvalidHeaderFlags, f.CompressionType)
	}

	return nil
}
