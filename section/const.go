package section

const (
	// Bit masks of the Options field
	EndiannessMask   = 0x0001 // Mask for endianness bit (bit 0)
	ReservedBitsMask = 0x000E // Mask for reserved bits (bits 1-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicCacheV1Opt = 0xEC10 // MagicCacheV1Opt is the magic number of the dataset cache format.

	// Format versions
	CacheVersionV1 = 0x01 // CacheVersionV1 is the first cache payload layout.
)

// offset and section sizes in the cache file
const (
	HeaderSize           = 56         // fixed header size in bytes
	PayloadOffset        = HeaderSize // byte offset where the (compressed) payload starts
	MaxChannelNameLength = 0xFFFF     // channel names are uint16 length-prefixed
)
