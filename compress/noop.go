package compress

// NoOpCompressor stores the payload uncompressed. Useful when caches are
// memory-mapped or inspected by hand.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data as-is. The result shares memory with the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data as-is after checking its length against size.
func (c NoOpCompressor) Decompress(data []byte, size int) ([]byte, error) {
	return checkSize("uncompressed", data, size)
}
