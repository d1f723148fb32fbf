package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/arloliu/imd/csr"
	"github.com/arloliu/imd/endian"
	"github.com/arloliu/imd/errs"
	"github.com/stretchr/testify/require"
)

func encodeRows(t *testing.T, engine endian.EndianEngine, intensities, pulses [][]uint16) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, engine, intensities, pulses))

	return buf.Bytes()
}

func TestDecode_Example(t *testing.T) {
	data := encodeRows(t, endian.GetLittleEndianEngine(),
		[][]uint16{{5, 0}, {0, 7}, {3, 9}},
		[][]uint16{{1, 8}, {2, 4}, {2, 6}},
	)
	require.Len(t, data, 24)

	store, stats, err := Decode(bytes.NewReader(data), int64(len(data)), []string{"A", "B"})
	require.NoError(t, err)
	require.Equal(t, Stats{Rows: 3, Entries: 4, RowWidth: 8}, stats)

	require.Equal(t, []int{0, 1, 2, 4}, store.RowOffsets())
	require.Equal(t, []uint32{0, 1, 0, 1}, store.ColumnIndices())
	require.Equal(t, []uint16{5, 7, 3, 9}, store.Intensities())
	require.Equal(t, []uint16{1, 4, 2, 6}, store.Pulses(), "pulses of zero-intensity readings are dropped")

	raw := csr.NewAccessor(store, csr.IntensityRule(store))
	require.Equal(t, []uint16{5, 0, 0, 7, 3, 9}, raw.Dense())
}

func TestDecode_ByteLayout(t *testing.T) {
	// one row, two channels: (0x0102, 0x0304), (0, 0xffff)
	data := []byte{0x02, 0x01, 0x04, 0x03, 0x00, 0x00, 0xff, 0xff}

	store, _, err := Decode(bytes.NewReader(data), 8, []string{"A", "B"})
	require.NoError(t, err)
	require.Equal(t, []uint16{0x0102}, store.Intensities())
	require.Equal(t, []uint16{0x0304}, store.Pulses())

	store, _, err = Decode(bytes.NewReader(data), 8, []string{"A", "B"}, WithByteOrder(endian.GetBigEndianEngine()))
	require.NoError(t, err)
	require.Equal(t, []uint16{0x0201}, store.Intensities())
	require.Equal(t, []uint16{0x0403}, store.Pulses())
}

func TestDecode_BigEndianRoundTrip(t *testing.T) {
	big := endian.GetBigEndianEngine()
	data := encodeRows(t, big, [][]uint16{{0, 300, 2}}, [][]uint16{{9, 1, 0}})

	store, stats, err := Decode(bytes.NewReader(data), int64(len(data)), []string{"x", "y", "z"}, WithByteOrder(big))
	require.NoError(t, err)
	require.Equal(t, 2, stats.Entries)
	require.Equal(t, []uint32{1, 2}, store.ColumnIndices())
	require.Equal(t, []uint16{300, 2}, store.Intensities())
}

func TestDecode_TrailingPartialRow(t *testing.T) {
	data := encodeRows(t, endian.GetLittleEndianEngine(), [][]uint16{{1, 2}, {3, 4}}, [][]uint16{{0, 0}, {0, 0}})
	data = append(data, 0xaa, 0xbb, 0xcc)

	store, stats, err := Decode(bytes.NewReader(data), int64(len(data)), []string{"A", "B"})
	require.NoError(t, err)
	require.Equal(t, 2, store.NumRows())
	require.Equal(t, int64(3), stats.TrailingBytes)
}

func TestDecode_EmptyRegion(t *testing.T) {
	store, stats, err := Decode(bytes.NewReader(nil), 0, []string{"A"})
	require.NoError(t, err)
	require.Equal(t, 0, store.NumRows())
	require.Equal(t, 0, stats.Entries)
	require.Equal(t, []int{0}, store.RowOffsets())
}

func TestDecode_AllZeroRows(t *testing.T) {
	data := make([]byte, 3*RowWidth(4))

	store, stats, err := Decode(bytes.NewReader(data), int64(len(data)), []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	require.Equal(t, 3, stats.Rows)
	require.Equal(t, []int{0, 0, 0, 0}, store.RowOffsets())
	require.Zero(t, store.Density())
}

func TestDecode_MaxRows(t *testing.T) {
	data := encodeRows(t, endian.GetLittleEndianEngine(), [][]uint16{{1}, {2}, {3}}, [][]uint16{{0}, {0}, {0}})

	store, stats, err := Decode(bytes.NewReader(data), int64(len(data)), []string{"A"}, WithMaxRows(2))
	require.NoError(t, err)
	require.Equal(t, 2, stats.Rows)
	require.Equal(t, []uint16{1, 2}, store.Intensities())
}

func TestDecode_Errors(t *testing.T) {
	data := encodeRows(t, endian.GetLittleEndianEngine(), [][]uint16{{1, 2}, {3, 4}}, [][]uint16{{0, 0}, {0, 0}})

	t.Run("no channels", func(t *testing.T) {
		_, _, err := Decode(bytes.NewReader(data), int64(len(data)), nil)
		require.ErrorIs(t, err, errs.ErrMalformedInput)
	})

	t.Run("negative region", func(t *testing.T) {
		_, _, err := Decode(bytes.NewReader(data), -1, []string{"A"})
		require.ErrorIs(t, err, errs.ErrMalformedInput)
	})

	t.Run("truncated mid row", func(t *testing.T) {
		_, _, err := Decode(bytes.NewReader(data[:12]), int64(len(data)), []string{"A", "B"})
		require.ErrorIs(t, err, errs.ErrIO)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("truncated at row boundary", func(t *testing.T) {
		_, _, err := Decode(bytes.NewReader(data[:8]), int64(len(data)), []string{"A", "B"})
		require.ErrorIs(t, err, errs.ErrIO)
	})

	t.Run("read failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, err := Decode(io.MultiReader(bytes.NewReader(data[:4]), failingReader{boom}), int64(len(data)), []string{"A", "B"})
		require.ErrorIs(t, err, errs.ErrIO)
		require.ErrorIs(t, err, boom)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, _, err := Decode(bytes.NewReader(data), int64(len(data)), []string{"A"}, WithReadBufferSize(0))
		require.Error(t, err)
		_, _, err = Decode(bytes.NewReader(data), int64(len(data)), []string{"A"}, WithMaxRows(-1))
		require.Error(t, err)
		_, _, err = Decode(bytes.NewReader(data), int64(len(data)), []string{"A"}, WithByteOrder(nil))
		require.Error(t, err)
	})

	t.Run("duplicate channel", func(t *testing.T) {
		_, _, err := Decode(bytes.NewReader(data), int64(len(data)), []string{"A", "A"})
		require.ErrorIs(t, err, errs.ErrDuplicateChannel)
	})
}

func TestEncode_RowMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, Encode(&buf, endian.GetLittleEndianEngine(), [][]uint16{{1}}, nil), errs.ErrColumnCountMismatch)
	require.ErrorIs(t, Encode(&buf, endian.GetLittleEndianEngine(), [][]uint16{{1}}, [][]uint16{{1, 2}}), errs.ErrColumnCountMismatch)
}

type failingReader struct {
	err error
}

func (f failingReader) Read([]byte) (int, error) {
	return 0, f.err
}
