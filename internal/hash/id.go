// Package hash wraps xxHash64 for cache checksums and channel identifiers.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a channel name.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Checksum computes the xxHash64 of a cache payload.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Fingerprint hashes an ordered list of names. Reordering the list changes the result.
func Fingerprint(names []string) uint64 {
	d := xxhash.New()
	for _, name := range names {
		_, _ = d.WriteString(name)
		_, _ = d.Write([]byte{0})
	}

	return d.Sum64()
}
