package csr

import "iter"

// Value is the set of element types an Accessor can produce.
type Value interface {
	~uint16 | ~float64
}

// ValueFunc derives the value of entry i of a store.
type ValueFunc[T Value] func(i int) T

// Entry is one stored cell of the matrix.
type Entry[T Value] struct {
	Row    int
	Column int
	Value  T
}

// Accessor is a read-only view of a Store through a value rule. It borrows the
// store and holds no other state, so it is cheap to copy and safe for
// concurrent use.
type Accessor[T Value] struct {
	store *Store
	value ValueFunc[T]
}

// NewAccessor creates a view of store that derives cell values with value.
func NewAccessor[T Value](store *Store, value ValueFunc[T]) Accessor[T] {
	return Accessor[T]{store: store, value: value}
}

// Store returns the underlying store.
func (a Accessor[T]) Store() *Store {
	return a.store
}

// NumRows returns the number of rows.
func (a Accessor[T]) NumRows() int {
	return a.store.NumRows()
}

// NumColumns returns the number of columns.
func (a Accessor[T]) NumColumns() int {
	return a.store.NumColumns()
}

// At returns the value at (row, col). An empty cell yields zero; an index
// outside the matrix yields errs.ErrOutOfRange.
func (a Accessor[T]) At(row, col int) (T, error) {
	if err := a.store.checkRow(row); err != nil {
		return 0, err
	}
	if err := a.store.checkColumn(col); err != nil {
		return 0, err
	}

	if i := a.store.find(row, col); i >= 0 {
		return a.value(i), nil
	}

	return 0, nil
}

// AtByName returns the value at row in the named column. An unknown name
// yields errs.ErrUnknownChannel.
func (a Accessor[T]) AtByName(row int, name string) (T, error) {
	col, err := a.store.ColumnIndex(name)
	if err != nil {
		return 0, err
	}

	return a.At(row, col)
}

// Row returns all columns of row as a dense vector.
func (a Accessor[T]) Row(row int) ([]T, error) {
	lo, hi, err := a.store.RowRange(row)
	if err != nil {
		return nil, err
	}

	out := make([]T, a.store.NumColumns())
	for i := lo; i < hi; i++ {
		out[a.store.columnIndices[i]] = a.value(i)
	}

	return out, nil
}

// Column returns one value per row for column col.
func (a Accessor[T]) Column(col int) ([]T, error) {
	if err := a.store.checkColumn(col); err != nil {
		return nil, err
	}

	out := make([]T, a.store.NumRows())
	for row := range out {
		if i := a.store.find(row, col); i >= 0 {
			out[row] = a.value(i)
		}
	}

	return out, nil
}

// ColumnByName returns one value per row for the named column.
func (a Accessor[T]) ColumnByName(name string) ([]T, error) {
	col, err := a.store.ColumnIndex(name)
	if err != nil {
		return nil, err
	}

	return a.Column(col)
}

// Dense returns the full matrix in row-major order, NumRows*NumColumns values.
// It makes one pass over the stored entries.
func (a Accessor[T]) Dense() []T {
	cols := a.store.NumColumns()
	out := make([]T, a.store.NumRows()*cols)
	for row := 0; row < a.store.NumRows(); row++ {
		base := row * cols
		for i := a.store.rowOffsets[row]; i < a.store.rowOffsets[row+1]; i++ {
			out[base+int(a.store.columnIndices[i])] = a.value(i)
		}
	}

	return out
}

// Entries iterates over the stored cells in row-major order.
func (a Accessor[T]) Entries() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		for row := 0; row < a.store.NumRows(); row++ {
			for i := a.store.rowOffsets[row]; i < a.store.rowOffsets[row+1]; i++ {
				e := Entry[T]{Row: row, Column: int(a.store.columnIndices[i]), Value: a.value(i)}
				if !yield(e) {
					return
				}
			}
		}
	}
}
