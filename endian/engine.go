// Package endian provides the byte order used to read IMD record regions and to
// write dataset caches.
//
// IMD files produced by the acquisition software are little-endian; big-endian
// support exists for files that were byte-swapped by external tooling. The
// returned engines are the binary.LittleEndian and binary.BigEndian values
// from the standard library and are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so a single
// value can both read fixed-width fields and append them to a buffer.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Native returns the host byte order.
func Native() EndianEngine {
	// 0x0100: the first byte in memory is 0x01 only on big-endian hosts.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsLittleEndian reports whether engine reads little-endian data.
func IsLittleEndian(engine EndianEngine) bool {
	return engine == EndianEngine(binary.LittleEndian)
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Parse returns the engine named by s ("little", "le", "big", "be", "native").
func Parse(s string) (EndianEngine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little", "le", "":
		return GetLittleEndianEngine(), nil
	case "big", "be":
		return GetBigEndianEngine(), nil
	case "native":
		return Native(), nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", s)
	}
}
