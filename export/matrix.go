package export

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/imd/csr"
	"github.com/arloliu/imd/errs"
)

// Matrix returns acc as a rows x channels gonum matrix. gonum has no empty
// matrices, so a dataset without rows or channels is errs.ErrOutOfRange.
func Matrix[T csr.Value](acc csr.Accessor[T]) (*mat.Dense, error) {
	rows, cols := acc.NumRows(), acc.NumColumns()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: cannot build a %dx%d matrix", errs.ErrOutOfRange, rows, cols)
	}

	return mat.NewDense(rows, cols, toFloat64(acc.Dense())), nil
}

// ChannelSummary holds distribution statistics of one channel over all pushes,
// sparse zeros included.
type ChannelSummary struct {
	Name     string
	NonZero  int
	Mean     float64
	StdDev   float64
	Median   float64
	Quantile float64 // value at SummaryQuantile
	Max      float64
}

// SummaryQuantile is the upper quantile reported in ChannelSummary.Quantile.
const SummaryQuantile = 0.99

// Summarize computes a ChannelSummary per channel of acc.
func Summarize[T csr.Value](acc csr.Accessor[T]) ([]ChannelSummary, error) {
	names := acc.Store().ColumnNames()
	out := make([]ChannelSummary, len(names))

	for c, name := range names {
		col, err := acc.Column(c)
		if err != nil {
			return nil, err
		}

		values := toFloat64(col)
		s := ChannelSummary{Name: name}
		for _, v := range values {
			if v != 0 {
				s.NonZero++
			}
		}
		if len(values) > 0 {
			s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
			slices.Sort(values)
			s.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
			s.Quantile = stat.Quantile(SummaryQuantile, stat.Empirical, values, nil)
			s.Max = values[len(values)-1]
		}
		out[c] = s
	}

	return out, nil
}

func toFloat64[T csr.Value](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}

	return out
}
