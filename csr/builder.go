package csr

import (
	"fmt"

	"github.com/arloliu/imd/errs"
)

// Builder appends rows to a Store in row order. It is not safe for concurrent use
// and must not be reused after Finish.
type Builder struct {
	columnNames []string

	rowOffsets    []int
	columnIndices []uint32
	intensities   []uint16
	pulses        []uint16

	inRow   bool
	lastCol int
}

// NewBuilder creates a builder for the given columns. rowsHint pre-sizes the
// row offset array and may be zero.
func NewBuilder(columnNames []string, rowsHint int) *Builder {
	return &Builder{
		columnNames: columnNames,
		rowOffsets:  make([]int, 0, rowsHint+1),
	}
}

// StartRow begins a new row. Rows without entries are valid.
func (b *Builder) StartRow() {
	b.rowOffsets = append(b.rowOffsets, len(b.columnIndices))
	b.inRow = true
	b.lastCol = -1
}

// Append adds an entry to the current row. Columns must be strictly ascending
// within a row.
func (b *Builder) Append(col int, intensity, pulse uint16) error {
	if !b.inRow {
		return fmt.Errorf("%w: append before StartRow", errs.ErrInvalidRowOffsets)
	}
	if col < 0 || col >= len(b.columnNames) {
		return fmt.Errorf("%w: column index %d, %d columns", errs.ErrOutOfRange, col, len(b.columnNames))
	}
	if col <= b.lastCol {
		return fmt.Errorf("%w: column %d after %d", errs.ErrInvalidColumnOrder, col, b.lastCol)
	}

	b.columnIndices = append(b.columnIndices, uint32(col)) //nolint:gosec
	b.intensities = append(b.intensities, intensity)
	b.pulses = append(b.pulses, pulse)
	b.lastCol = col

	return nil
}

// NumRows returns the number of rows started so far.
func (b *Builder) NumRows() int {
	return len(b.rowOffsets)
}

// Finish closes the last row and returns the frozen Store.
func (b *Builder) Finish() (*Store, error) {
	index, err := buildColumnIndex(b.columnNames)
	if err != nil {
		return nil, err
	}

	b.rowOffsets = append(b.rowOffsets, len(b.columnIndices))
	b.inRow = false

	return &Store{
		columnNames:   b.columnNames,
		columnIndex:   index,
		rowOffsets:    b.rowOffsets,
		columnIndices: b.columnIndices,
		intensities:   b.intensities,
		pulses:        b.pulses,
	}, nil
}
