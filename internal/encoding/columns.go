package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/imd/endian"
	"github.com/arloliu/imd/errs"
)

// AppendFloat64s appends values as IEEE 754 bit patterns.
func AppendFloat64s(buf []byte, values []float64, engine endian.EndianEngine) []byte {
	for _, v := range values {
		buf = engine.AppendUint64(buf, math.Float64bits(v))
	}

	return buf
}

// AppendOffsets appends row offsets as uint64.
func AppendOffsets(buf []byte, offsets []int, engine endian.EndianEngine) []byte {
	for _, v := range offsets {
		buf = engine.AppendUint64(buf, uint64(v)) //nolint:gosec
	}

	return buf
}

// AppendUint32s appends values as uint32.
func AppendUint32s(buf []byte, values []uint32, engine endian.EndianEngine) []byte {
	for _, v := range values {
		buf = engine.AppendUint32(buf, v)
	}

	return buf
}

// AppendUint16s appends values as uint16.
func AppendUint16s(buf []byte, values []uint16, engine endian.EndianEngine) []byte {
	for _, v := range values {
		buf = engine.AppendUint16(buf, v)
	}

	return buf
}

// Reader consumes payload sections in order.
type Reader struct {
	data   []byte
	offset int
	engine endian.EndianEngine
}

// NewReader creates a Reader over data.
func NewReader(data []byte, engine endian.EndianEngine) *Reader {
	return &Reader{data: data, engine: engine}
}

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of bytes not yet consumed.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// ChannelNames reads a channel name list.
func (r *Reader) ChannelNames() ([]string, error) {
	names, n, err := DecodeChannelNames(r.data[r.offset:], r.engine)
	if err != nil {
		return nil, err
	}
	r.offset += n

	return names, nil
}

// Float64s reads n float64 values.
func (r *Reader) Float64s(n int, section string) ([]float64, error) {
	raw, err := r.take(n, 8, section)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(r.engine.Uint64(raw[i*8:]))
	}

	return out, nil
}

// Offsets reads n row offsets.
func (r *Reader) Offsets(n int, section string) ([]int, error) {
	raw, err := r.take(n, 8, section)
	if err != nil {
		return nil, err
	}

	out := make([]int, n)
	for i := range out {
		v := r.engine.Uint64(raw[i*8:])
		if v > math.MaxInt {
			return nil, fmt.Errorf("%w: %s value %d overflows int", errs.ErrInvalidPayload, section, v)
		}
		out[i] = int(v)
	}

	return out, nil
}

// Uint32s reads n uint32 values.
func (r *Reader) Uint32s(n int, section string) ([]uint32, error) {
	raw, err := r.take(n, 4, section)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, n)
	for i := range out {
		out[i] = r.engine.Uint32(raw[i*4:])
	}

	return out, nil
}

// Uint16s reads n uint16 values.
func (r *Reader) Uint16s(n int, section string) ([]uint16, error) {
	raw, err := r.take(n, 2, section)
	if err != nil {
		return nil, err
	}

	out := make([]uint16, n)
	for i := range out {
		out[i] = r.engine.Uint16(raw[i*2:])
	}

	return out, nil
}

func (r *Reader) take(n, width int, section string) ([]byte, error) {
	if n < 0 || n > r.Remaining()/width {
		return nil, fmt.Errorf("%w: %s needs %d x %d bytes at offset %d, %d remaining",
			errs.ErrInvalidPayload, section, n, width, r.offset, r.Remaining())
	}

	size := n * width
	raw := r.data[r.offset : r.offset+size]
	r.offset += size

	return raw, nil
}
