package csr

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/arloliu/imd/errs"
	"github.com/stretchr/testify/require"
)

type reading struct {
	intensity, pulse uint16
}

// buildStore compacts dense rows of readings the same way the stream decoder does.
func buildStore(t *testing.T, names []string, rows [][]reading) *Store {
	t.Helper()

	b := NewBuilder(names, len(rows))
	for _, row := range rows {
		b.StartRow()
		for col, r := range row {
			if r.intensity > 0 {
				require.NoError(t, b.Append(col, r.intensity, r.pulse))
			}
		}
	}
	store, err := b.Finish()
	require.NoError(t, err)

	return store
}

func exampleStore(t *testing.T) *Store {
	return buildStore(t, []string{"A", "B"}, [][]reading{
		{{5, 1}, {0, 0}},
		{{0, 0}, {7, 4}},
		{{3, 2}, {9, 6}},
	})
}

func TestBuilder_Arrays(t *testing.T) {
	s := exampleStore(t)

	require.Equal(t, []int{0, 1, 2, 4}, s.RowOffsets())
	require.Equal(t, []uint32{0, 1, 0, 1}, s.ColumnIndices())
	require.Equal(t, []uint16{5, 7, 3, 9}, s.Intensities())
	require.Equal(t, []uint16{1, 4, 2, 6}, s.Pulses())
	require.Equal(t, 3, s.NumRows())
	require.Equal(t, 2, s.NumColumns())
	require.Equal(t, 4, s.NumEntries())
	require.InDelta(t, 4.0/6.0, s.Density(), 1e-12)
}

func TestBuilder_Errors(t *testing.T) {
	b := NewBuilder([]string{"A", "B"}, 0)
	require.ErrorIs(t, b.Append(0, 1, 1), errs.ErrInvalidRowOffsets)

	b.StartRow()
	require.NoError(t, b.Append(1, 1, 1))
	require.ErrorIs(t, b.Append(1, 1, 1), errs.ErrInvalidColumnOrder)
	require.ErrorIs(t, b.Append(0, 1, 1), errs.ErrInvalidColumnOrder)
	require.ErrorIs(t, b.Append(2, 1, 1), errs.ErrOutOfRange)

	b.StartRow()
	require.NoError(t, b.Append(0, 1, 1), "column order resets per row")
	require.Equal(t, 2, b.NumRows())

	_, err := NewBuilder([]string{"A", "A"}, 0).Finish()
	require.ErrorIs(t, err, errs.ErrDuplicateChannel)
}

func TestBuilder_NoRows(t *testing.T) {
	s, err := NewBuilder([]string{"A"}, 0).Finish()
	require.NoError(t, err)
	require.Equal(t, 0, s.NumRows())
	require.Equal(t, []int{0}, s.RowOffsets())
	require.Zero(t, s.Density())

	acc := NewAccessor(s, IntensityRule(s))
	require.Empty(t, acc.Dense())
	_, err = acc.At(0, 0)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestNewStore_Validation(t *testing.T) {
	names := []string{"A", "B", "C"}

	tests := []struct {
		name    string
		names   []string
		offsets []int
		cols    []uint32
		ints    []uint16
		pulses  []uint16
		want    error
	}{
		{"valid", names, []int{0, 2, 2, 3}, []uint32{0, 2, 1}, []uint16{1, 1, 1}, []uint16{0, 0, 0}, nil},
		{"empty offsets", names, nil, nil, nil, nil, errs.ErrInvalidRowOffsets},
		{"nonzero first offset", names, []int{1, 1}, nil, nil, nil, errs.ErrInvalidRowOffsets},
		{"last offset mismatch", names, []int{0, 1}, []uint32{0, 1}, []uint16{1, 1}, []uint16{1, 1}, errs.ErrInvalidRowOffsets},
		{"decreasing offsets", names, []int{0, 2, 1, 2}, []uint32{0, 1}, []uint16{1, 1}, []uint16{1, 1}, errs.ErrInvalidRowOffsets},
		{"unsorted row", names, []int{0, 2}, []uint32{1, 0}, []uint16{1, 1}, []uint16{1, 1}, errs.ErrInvalidColumnOrder},
		{"duplicate column", names, []int{0, 2}, []uint32{1, 1}, []uint16{1, 1}, []uint16{1, 1}, errs.ErrInvalidColumnOrder},
		{"column too large", names, []int{0, 1}, []uint32{3}, []uint16{1}, []uint16{1}, errs.ErrOutOfRange},
		{"length mismatch", names, []int{0, 1}, []uint32{0}, []uint16{1}, nil, errs.ErrColumnCountMismatch},
		{"duplicate names", []string{"A", "A"}, []int{0}, nil, nil, nil, errs.ErrDuplicateChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.names, tt.offsets, tt.cols, tt.ints, tt.pulses)
			if tt.want == nil {
				require.NoError(t, err)
				require.NotNil(t, s)

				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAccessor_At(t *testing.T) {
	s := exampleStore(t)
	acc := NewAccessor(s, IntensityRule(s))

	v, err := acc.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, uint16(5), v)

	v, err = acc.At(0, 1)
	require.NoError(t, err)
	require.Zero(t, v, "absent entry is a sparse zero")

	v, err = acc.AtByName(2, "B")
	require.NoError(t, err)
	require.Equal(t, uint16(9), v)

	pulses := NewAccessor(s, PulseRule(s))
	v, err = pulses.AtByName(1, "B")
	require.NoError(t, err)
	require.Equal(t, uint16(4), v)
}

func TestAccessor_Bounds(t *testing.T) {
	s := exampleStore(t)
	acc := NewAccessor(s, IntensityRule(s))

	_, err := acc.At(3, 0)
	require.ErrorIs(t, err, errs.ErrOutOfRange, "row == rowCount")
	_, err = acc.At(0, 2)
	require.ErrorIs(t, err, errs.ErrOutOfRange, "column == channelCount")
	_, err = acc.At(-1, 0)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = acc.At(0, -1)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = acc.At(0, 0)
	require.NoError(t, err)

	_, err = acc.Row(3)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = acc.Column(2)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = acc.AtByName(0, "Z")
	require.ErrorIs(t, err, errs.ErrUnknownChannel)
	require.NotErrorIs(t, err, errs.ErrOutOfRange)
	_, err = acc.ColumnByName("Z")
	require.ErrorIs(t, err, errs.ErrUnknownChannel)

	// the store remains usable after query errors
	v, err := acc.At(2, 1)
	require.NoError(t, err)
	require.Equal(t, uint16(9), v)
}

func TestAccessor_RowColumnDense(t *testing.T) {
	s := exampleStore(t)
	acc := NewAccessor(s, IntensityRule(s))

	row, err := acc.Row(1)
	require.NoError(t, err)
	require.Equal(t, []uint16{0, 7}, row)

	col, err := acc.Column(0)
	require.NoError(t, err)
	require.Equal(t, []uint16{5, 0, 3}, col)

	col, err = acc.ColumnByName("B")
	require.NoError(t, err)
	require.Equal(t, []uint16{0, 7, 9}, col)

	require.Equal(t, []uint16{5, 0, 0, 7, 3, 9}, acc.Dense())
}

func TestAccessor_Entries(t *testing.T) {
	s := exampleStore(t)
	acc := NewAccessor(s, PulseRule(s))

	var got []Entry[uint16]
	for e := range acc.Entries() {
		got = append(got, e)
	}
	require.Equal(t, []Entry[uint16]{
		{Row: 0, Column: 0, Value: 1},
		{Row: 1, Column: 1, Value: 4},
		{Row: 2, Column: 0, Value: 2},
		{Row: 2, Column: 1, Value: 6},
	}, got)

	count := 0
	for range acc.Entries() {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)
}

func TestDualCount(t *testing.T) {
	tests := []struct {
		name      string
		intensity uint16
		pulse     uint16
		slope     float64
		intercept float64
		threshold float64
		want      float64
	}{
		{"pulse wins in low-count regime", 1, 2, 1, 0, 3, 2},
		{"corrected above pulse", 5, 5, 2, 0, 3, 10},
		{"pulse at threshold", 1, 3, 1, 0, 3, 1},
		{"corrected equals pulse", 2, 2, 1, 0, 3, 2},
		{"zero pulse", 4, 0, 0.5, -1, 3, 1},
		{"negative correction", 1, 1, 1, -5, 3, 1},
		{"end-to-end entry", 9, 6, 2, 1, 3, 19},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, DualCount(tt.intensity, tt.pulse, tt.slope, tt.intercept, tt.threshold), 1e-12)
		})
	}
}

func TestDualCountRule(t *testing.T) {
	s := exampleStore(t)
	slopes := []float64{1, 2}
	intercepts := []float64{0, 1}

	rule, err := DualCountRule(s, DefaultPulseThreshold, slopes, intercepts)
	require.NoError(t, err)
	acc := NewAccessor(s, rule)

	// row 2, channel 1: 1 + 9*2 = 19 and 19 < 6 is false
	v, err := acc.At(2, 1)
	require.NoError(t, err)
	require.InDelta(t, 19.0, v, 0)

	// row 0, channel 0: corrected 5, pulse 1
	v, err = acc.At(0, 0)
	require.NoError(t, err)
	require.InDelta(t, 5.0, v, 0)

	slopes[1] = 100
	v, err = acc.At(2, 1)
	require.NoError(t, err)
	require.InDelta(t, 19.0, v, 0, "rule snapshots the calibration")

	_, err = DualCountRule(s, 3, []float64{1}, intercepts)
	require.ErrorIs(t, err, errs.ErrCalibrationMismatch)
}

func TestAccessor_CustomRule(t *testing.T) {
	s := exampleStore(t)
	ratio := NewAccessor(s, func(i int) float64 {
		return float64(s.Pulse(i)) / float64(s.Intensity(i))
	})

	v, err := ratio.At(1, 1)
	require.NoError(t, err)
	require.InDelta(t, 4.0/7.0, v, 1e-12)
}

func randomStore(t *testing.T, rng *rand.Rand, rows, cols int) (*Store, [][]reading) {
	names := make([]string, cols)
	for i := range names {
		names[i] = string(rune('a'+i%26)) + string(rune('A'+i/26))
	}

	dense := make([][]reading, rows)
	for r := range dense {
		dense[r] = make([]reading, cols)
		for c := range dense[r] {
			if rng.Intn(3) == 0 {
				dense[r][c] = reading{uint16(rng.Intn(50) + 1), uint16(rng.Intn(8))}
			}
		}
	}

	return buildStore(t, names, dense), dense
}

func TestAccessor_DenseMatchesAt(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s, dense := randomStore(t, rng, 40, 13)

	slopes := make([]float64, 13)
	intercepts := make([]float64, 13)
	for i := range slopes {
		slopes[i] = rng.Float64() * 2
		intercepts[i] = rng.Float64() - 0.5
	}
	rule, err := DualCountRule(s, DefaultPulseThreshold, slopes, intercepts)
	require.NoError(t, err)

	raw := NewAccessor(s, IntensityRule(s))
	dual := NewAccessor(s, rule)
	rawDense := raw.Dense()
	dualDense := dual.Dense()

	for r := 0; r < s.NumRows(); r++ {
		row, err := raw.Row(r)
		require.NoError(t, err)

		for c := 0; c < s.NumColumns(); c++ {
			v, err := raw.At(r, c)
			require.NoError(t, err)
			require.Equal(t, rawDense[r*13+c], v)
			require.Equal(t, dense[r][c].intensity, v)
			require.Equal(t, v, row[c])

			d, err := dual.At(r, c)
			require.NoError(t, err)
			require.Equal(t, dualDense[r*13+c], d)
		}
	}

	for c := 0; c < s.NumColumns(); c++ {
		col, err := raw.Column(c)
		require.NoError(t, err)
		for r := range col {
			require.Equal(t, rawDense[r*13+c], col[r])
		}
	}
}

func TestAccessor_ConcurrentReads(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	s, _ := randomStore(t, rng, 100, 8)
	acc := NewAccessor(s, IntensityRule(s))
	want := acc.Dense()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < s.NumRows(); r++ {
				for c := 0; c < s.NumColumns(); c++ {
					v, err := acc.At(r, c)
					if err != nil || v != want[r*s.NumColumns()+c] {
						t.Errorf("mismatch at (%d, %d)", r, c)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
