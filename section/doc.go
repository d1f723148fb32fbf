// Package section defines the fixed binary structures of the dataset cache
// format: the header and its packed flag word.
//
// # Cache Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (56 bytes, fixed)                                │
//	│  - Flag (4 bytes): magic, byte order, version, codec    │
//	│  - Counts (20 bytes): channels, rows, entries           │
//	│  - Checksum, payload size, channel fingerprint          │
//	│  - Source key                                           │
//	├─────────────────────────────────────────────────────────┤
//	│ Payload (variable, compressed with the flag's codec)    │
//	│  - Channel names (count + length-prefixed strings)      │
//	│  - Masses, slopes, intercepts (float64 per channel)     │
//	│  - Row offsets (uint64 per row + 1)                     │
//	│  - Column indices (uint32 per entry)                    │
//	│  - Intensities, pulses (uint16 per entry)               │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
//	Bytes  | Field              | Type   | Description
//	-------|--------------------|--------|----------------------------------
//	0-3    | Flag               | uint32 | Options, version, compression
//	4-7    | ChannelCount       | uint32 | Number of channels
//	8-15   | RowCount           | uint64 | Number of rows
//	16-23  | EntryCount         | uint64 | Number of stored readings
//	24-31  | Checksum           | uint64 | xxHash64 of uncompressed payload
//	32-39  | PayloadSize        | uint64 | Uncompressed payload length
//	40-47  | ChannelFingerprint | uint64 | xxHash64 of channel names
//	48-55  | SourceKey          | uint64 | Source file identity, 0 if unknown
//
// # Flag Format
//
//	Byte 0-1 (Options, 16 bits, always little-endian):
//	  Bit 0: Endianness (0=little-endian, 1=big-endian)
//	  Bits 1-3: Reserved (must be 0)
//	  Bits 4-15: Magic number (0xEC10)
//
//	Byte 2 (Version): 0x1
//
//	Byte 3 (CompressionType): 0x1=None, 0x2=Zstd, 0x3=S2, 0x4=LZ4
//
// All other multi-byte fields, header and payload alike, use the byte order
// named by the flag.
package section
