package csr

import (
	"fmt"

	"github.com/arloliu/imd/errs"
)

// Store is an immutable compressed-sparse-row matrix of (intensity, pulse)
// readings.
//
// Entries of row r occupy [rowOffsets[r], rowOffsets[r+1]) of the three entry
// arrays. Column indices are strictly ascending within each row, which is what
// makes binary-search lookups valid; they are not globally sorted.
//
// A Store is safe for concurrent reads. Slices returned by its methods must not
// be modified.
type Store struct {
	columnNames []string
	columnIndex map[string]int

	rowOffsets    []int
	columnIndices []uint32
	intensities   []uint16
	pulses        []uint16
}

// NewStore wraps existing CSR arrays after validating every invariant.
//
// Parameters:
//   - columnNames: unique column (channel) names, in column order
//   - rowOffsets: len = rows+1, starts at 0, non-decreasing, ends at the entry count
//   - columnIndices: column of each entry, strictly ascending within a row, < len(columnNames)
//   - intensities, pulses: raw readings, same length as columnIndices
//
// Returns:
//   - *Store: the store; it takes ownership of the slices
//   - error: errs.ErrInvalidRowOffsets, errs.ErrInvalidColumnOrder,
//     errs.ErrColumnCountMismatch, errs.ErrOutOfRange or errs.ErrDuplicateChannel
func NewStore(columnNames []string, rowOffsets []int, columnIndices []uint32, intensities, pulses []uint16) (*Store, error) {
	index, err := buildColumnIndex(columnNames)
	if err != nil {
		return nil, err
	}

	n := len(columnIndices)
	if len(intensities) != n || len(pulses) != n {
		return nil, fmt.Errorf("%w: %d columns, %d intensities, %d pulses",
			errs.ErrColumnCountMismatch, n, len(intensities), len(pulses))
	}

	if len(rowOffsets) == 0 || rowOffsets[0] != 0 || rowOffsets[len(rowOffsets)-1] != n {
		return nil, fmt.Errorf("%w: offsets must start at 0 and end at %d", errs.ErrInvalidRowOffsets, n)
	}

	for r := 0; r+1 < len(rowOffsets); r++ {
		lo, hi := rowOffsets[r], rowOffsets[r+1]
		if hi < lo {
			return nil, fmt.Errorf("%w: row %d ends at %d before it starts at %d", errs.ErrInvalidRowOffsets, r, hi, lo)
		}
		for i := lo; i < hi; i++ {
			if int(columnIndices[i]) >= len(columnNames) {
				return nil, fmt.Errorf("%w: row %d column %d >= %d", errs.ErrOutOfRange, r, columnIndices[i], len(columnNames))
			}
			if i > lo && columnIndices[i] <= columnIndices[i-1] {
				return nil, fmt.Errorf("%w: row %d column %d after %d", errs.ErrInvalidColumnOrder, r, columnIndices[i], columnIndices[i-1])
			}
		}
	}

	return &Store{
		columnNames:   columnNames,
		columnIndex:   index,
		rowOffsets:    rowOffsets,
		columnIndices: columnIndices,
		intensities:   intensities,
		pulses:        pulses,
	}, nil
}

func buildColumnIndex(names []string) (map[string]int, error) {
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateChannel, name)
		}
		index[name] = i
	}

	return index, nil
}

// NumRows returns the number of rows (pushes).
func (s *Store) NumRows() int {
	return len(s.rowOffsets) - 1
}

// NumColumns returns the number of columns (channels).
func (s *Store) NumColumns() int {
	return len(s.columnNames)
}

// NumEntries returns the number of stored (non-zero intensity) entries.
func (s *Store) NumEntries() int {
	return len(s.columnIndices)
}

// Density returns the fraction of matrix cells that hold an entry.
func (s *Store) Density() float64 {
	cells := s.NumRows() * s.NumColumns()
	if cells == 0 {
		return 0
	}

	return float64(s.NumEntries()) / float64(cells)
}

// ColumnNames returns the column names. The slice must not be modified.
func (s *Store) ColumnNames() []string {
	return s.columnNames
}

// ColumnIndex resolves a column name.
func (s *Store) ColumnIndex(name string) (int, error) {
	idx, ok := s.columnIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownChannel, name)
	}

	return idx, nil
}

// RowRange returns the half-open entry range [lo, hi) of row.
func (s *Store) RowRange(row int) (lo, hi int, err error) {
	if err := s.checkRow(row); err != nil {
		return 0, 0, err
	}

	return s.rowOffsets[row], s.rowOffsets[row+1], nil
}

// Column returns the column of entry i.
func (s *Store) Column(i int) int {
	return int(s.columnIndices[i])
}

// Intensity returns the raw intensity of entry i.
func (s *Store) Intensity(i int) uint16 {
	return s.intensities[i]
}

// Pulse returns the raw pulse count of entry i.
func (s *Store) Pulse(i int) uint16 {
	return s.pulses[i]
}

// RowOffsets returns the row offset array. The slice must not be modified.
func (s *Store) RowOffsets() []int {
	return s.rowOffsets
}

// ColumnIndices returns the entry column array. The slice must not be modified.
func (s *Store) ColumnIndices() []uint32 {
	return s.columnIndices
}

// Intensities returns the entry intensity array. The slice must not be modified.
func (s *Store) Intensities() []uint16 {
	return s.intensities
}

// Pulses returns the entry pulse array. The slice must not be modified.
func (s *Store) Pulses() []uint16 {
	return s.pulses
}

// find returns the entry index of (row, col), or -1 when the cell is empty.
// Both indices must already be validated.
func (s *Store) find(row, col int) int {
	lo, hi := s.rowOffsets[row], s.rowOffsets[row+1]
	target := uint32(col) //nolint:gosec
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if s.columnIndices[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < s.rowOffsets[row+1] && s.columnIndices[lo] == target {
		return lo
	}

	return -1
}

func (s *Store) checkRow(row int) error {
	if row < 0 || row >= s.NumRows() {
		return fmt.Errorf("%w: row index %d, %d rows", errs.ErrOutOfRange, row, s.NumRows())
	}

	return nil
}

func (s *Store) checkColumn(col int) error {
	if col < 0 || col >= s.NumColumns() {
		return fmt.Errorf("%w: column index %d, %d columns", errs.ErrOutOfRange, col, s.NumColumns())
	}

	return nil
}
