package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/imd/endian"
	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/section"
)

// ChannelNamesSize returns the encoded size of names in bytes.
func ChannelNamesSize(names []string) int {
	size := 4
	for _, name := range names {
		size += 2 + len(name)
	}

	return size
}

// AppendChannelNames appends a length-prefixed channel name list to buf.
// Format: [Count: uint32] [Len1: uint16][Name1: UTF-8] [Len2: uint16][Name2: UTF-8] ...
//
// Parameters:
//   - buf: destination, may be nil
//   - names: ordered channel names
//   - engine: byte order of the length fields
//
// Returns:
//   - []byte: the extended slice
//   - error: errs.ErrInvalidChannelNames if a name exceeds 65535 bytes
func AppendChannelNames(buf []byte, names []string, engine endian.EndianEngine) ([]byte, error) {
	if uint64(len(names)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: channel count %d exceeds maximum", errs.ErrInvalidChannelNames, len(names))
	}
	for i, name := range names {
		if len(name) > section.MaxChannelNameLength {
			return nil, fmt.Errorf("%w: channel %d name exceeds maximum length %d bytes",
				errs.ErrInvalidChannelNames, i, section.MaxChannelNameLength)
		}
	}

	buf = engine.AppendUint32(buf, uint32(len(names))) //nolint:gosec
	for _, name := range names {
		buf = engine.AppendUint16(buf, uint16(len(name))) //nolint:gosec
		buf = append(buf, name...)
	}

	return buf, nil
}

// DecodeChannelNames decodes a channel name list written by AppendChannelNames.
//
// Parameters:
//   - data: payload starting at the count field
//   - engine: byte order of the length fields
//
// Returns:
//   - []string: the decoded names, in order
//   - int: the number of bytes consumed
//   - error: errs.ErrInvalidChannelNames on truncated data
func DecodeChannelNames(data []byte, engine endian.EndianEngine) ([]string, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("%w: cannot read channel count (need 4 bytes, have %d)", errs.ErrInvalidChannelNames, len(data))
	}

	count := int(engine.Uint32(data))
	offset := 4

	// every name needs at least its length prefix
	if count > (len(data)-offset)/2 {
		return nil, 0, fmt.Errorf("%w: %d channels cannot fit in %d bytes", errs.ErrInvalidChannelNames, count, len(data)-offset)
	}

	names := make([]string, count)
	for i := range names {
		if len(data) < offset+2 {
			return nil, 0, fmt.Errorf("%w: cannot read length of channel %d at offset %d",
				errs.ErrInvalidChannelNames, i, offset)
		}
		nameLen := int(engine.Uint16(data[offset:]))
		offset += 2

		if len(data) < offset+nameLen {
			return nil, 0, fmt.Errorf("%w: cannot read channel %d (need %d bytes at offset %d, have %d total)",
				errs.ErrInvalidChannelNames, i, nameLen, offset, len(data))
		}
		names[i] = string(data[offset : offset+nameLen])
		offset += nameLen
	}

	return names, offset, nil
}

// VerifyChannelFingerprint checks names against the fingerprint stored in a
// cache header.
func VerifyChannelFingerprint(names []string, want uint64, fingerprint func([]string) uint64) error {
	if got := fingerprint(names); got != want {
		return fmt.Errorf("%w: fingerprint 0x%016x, header has 0x%016x", errs.ErrInvalidChannelNames, got, want)
	}

	return nil
}
