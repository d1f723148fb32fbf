package pool

import "sync"

const (
	WindowBufferDefaultSize  = 1024 * 8         // 8KiB, one search window
	WindowBufferMaxThreshold = 1024 * 1024      // 1MiB
	CacheBufferDefaultSize   = 1024 * 1024      // 1MiB
	CacheBufferMaxThreshold  = 1024 * 1024 * 64 // 64MiB
)

// ByteBuffer is a growable byte slice that can be recycled through a ByteBufferPool.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the given initial capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Grow ensures the buffer can take requiredBytes more bytes without reallocating.
//
// Small buffers grow in 64KiB steps; larger ones by 25% of their capacity,
// and never by less than requiredBytes.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if cap(bb.B)-len(bb.B) >= requiredBytes {
		return
	}

	growBy := WindowBufferDefaultSize * 8
	if cap(bb.B) > 4*growBy {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Resize sets the buffer length to n, growing capacity if needed.
// Bytes beyond the previous length are not cleared.
func (bb *ByteBuffer) Resize(n int) {
	if n < 0 {
		panic("Resize: negative length")
	}
	if n > cap(bb.B) {
		bb.Grow(n - len(bb.B))
	}
	bb.B = bb.B[:n]
}

// ByteBufferPool recycles ByteBuffers. Buffers whose capacity exceeds
// maxThreshold are dropped on Put instead of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with the given default capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a buffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a buffer to the pool.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	windowPool = NewByteBufferPool(WindowBufferDefaultSize, WindowBufferMaxThreshold)
	cachePool  = NewByteBufferPool(CacheBufferDefaultSize, CacheBufferMaxThreshold)
)

// GetWindowBuffer retrieves a buffer sized for backward-search windows.
func GetWindowBuffer() *ByteBuffer {
	return windowPool.Get()
}

// PutWindowBuffer returns a search window buffer to its pool.
func PutWindowBuffer(bb *ByteBuffer) {
	windowPool.Put(bb)
}

// GetCacheBuffer retrieves a buffer for assembling dataset cache payloads.
func GetCacheBuffer() *ByteBuffer {
	return cachePool.Get()
}

// PutCacheBuffer returns a cache payload buffer to its pool.
func PutCacheBuffer(bb *ByteBuffer) {
	cachePool.Put(bb)
}
