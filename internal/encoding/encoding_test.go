package encoding

import (
	"math"
	"strings"
	"testing"

	"github.com/arloliu/imd/endian"
	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/internal/hash"
	"github.com/arloliu/imd/section"
	"github.com/stretchr/testify/require"
)

func TestChannelNames_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		names []string
	}{
		{"empty list", []string{}},
		{"markers", []string{"CD45", "CD19", "DNA1", "DNA2"}},
		{"unicode", []string{"IFNγ", "TNFα", "通道"}},
		{"empty strings", []string{"", "a", ""}},
	}

	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				buf, err := AppendChannelNames([]byte{0xAA}, tt.names, engine)
				require.NoError(t, err)
				require.Equal(t, byte(0xAA), buf[0], "existing bytes are kept")
				require.Len(t, buf, 1+ChannelNamesSize(tt.names))

				names, n, err := DecodeChannelNames(buf[1:], engine)
				require.NoError(t, err)
				require.Equal(t, len(buf)-1, n)
				require.Equal(t, tt.names, names)
			})
		}
	}
}

func TestChannelNames_ByteLayout(t *testing.T) {
	buf, err := AppendChannelNames(nil, []string{"Ab"}, endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0, 0, 0, 2, 0, 'A', 'b'}, buf)
}

func TestAppendChannelNames_TooLong(t *testing.T) {
	_, err := AppendChannelNames(nil, []string{strings.Repeat("x", section.MaxChannelNameLength+1)}, endian.GetLittleEndianEngine())
	require.ErrorIs(t, err, errs.ErrInvalidChannelNames)

	_, err = AppendChannelNames(nil, []string{strings.Repeat("x", section.MaxChannelNameLength)}, endian.GetLittleEndianEngine())
	require.NoError(t, err)
}

func TestDecodeChannelNames_Truncated(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf, err := AppendChannelNames(nil, []string{"CD45", "CD19"}, engine)
	require.NoError(t, err)

	for _, n := range []int{0, 3, 4, 5, 7, 9, len(buf) - 1} {
		_, _, err := DecodeChannelNames(buf[:n], engine)
		require.ErrorIs(t, err, errs.ErrInvalidChannelNames, "length %d", n)
	}

	// a huge count must not allocate before failing
	_, _, err = DecodeChannelNames([]byte{0xFF, 0xFF, 0xFF, 0x7F, 0, 0}, engine)
	require.ErrorIs(t, err, errs.ErrInvalidChannelNames)
}

func TestVerifyChannelFingerprint(t *testing.T) {
	names := []string{"CD45", "CD19"}
	fp := hash.Fingerprint(names)

	require.NoError(t, VerifyChannelFingerprint(names, fp, hash.Fingerprint))
	require.ErrorIs(t, VerifyChannelFingerprint([]string{"CD19", "CD45"}, fp, hash.Fingerprint), errs.ErrInvalidChannelNames)
}

func TestReader_Sections(t *testing.T) {
	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		names := []string{"A", "B"}
		slopes := []float64{1.5, -0.25}
		offsets := []int{0, 1, 3}
		cols := []uint32{1, 0, 1}
		ints := []uint16{7, 65535, 1}

		buf, err := AppendChannelNames(nil, names, engine)
		require.NoError(t, err)
		buf = AppendFloat64s(buf, slopes, engine)
		buf = AppendOffsets(buf, offsets, engine)
		buf = AppendUint32s(buf, cols, engine)
		buf = AppendUint16s(buf, ints, engine)

		r := NewReader(buf, engine)
		gotNames, err := r.ChannelNames()
		require.NoError(t, err)
		require.Equal(t, names, gotNames)

		gotSlopes, err := r.Float64s(2, "slopes")
		require.NoError(t, err)
		require.Equal(t, slopes, gotSlopes)

		gotOffsets, err := r.Offsets(3, "offsets")
		require.NoError(t, err)
		require.Equal(t, offsets, gotOffsets)

		gotCols, err := r.Uint32s(3, "columns")
		require.NoError(t, err)
		require.Equal(t, cols, gotCols)

		gotInts, err := r.Uint16s(3, "intensities")
		require.NoError(t, err)
		require.Equal(t, ints, gotInts)

		require.Zero(t, r.Remaining())
		require.Equal(t, len(buf), r.Offset())
	}
}

func TestReader_Truncated(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := AppendUint16s(nil, []uint16{1, 2, 3}, engine)

	r := NewReader(buf, engine)
	_, err := r.Uint16s(4, "pulses")
	require.ErrorIs(t, err, errs.ErrInvalidPayload)
	require.Zero(t, r.Offset(), "failed reads consume nothing")

	_, err = r.Uint32s(2, "columns")
	require.ErrorIs(t, err, errs.ErrInvalidPayload)

	_, err = r.Float64s(-1, "slopes")
	require.ErrorIs(t, err, errs.ErrInvalidPayload)

	_, err = r.Offsets(1, "offsets")
	require.ErrorIs(t, err, errs.ErrInvalidPayload)

	got, err := r.Uint16s(3, "pulses")
	require.NoError(t, err)
	require.Equal(t, []uint16{1, 2, 3}, got)
}

func TestReader_OffsetOverflow(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := engine.AppendUint64(nil, math.MaxUint64)

	_, err := NewReader(buf, engine).Offsets(1, "offsets")
	require.ErrorIs(t, err, errs.ErrInvalidPayload)
}
