package csr

import (
	"fmt"
	"slices"

	"github.com/arloliu/imd/errs"
)

// DefaultPulseThreshold is the pulse count below which a raw pulse reading may
// replace the calibrated dual count.
const DefaultPulseThreshold = 3.0

// IntensityRule returns the stored intensity unchanged.
func IntensityRule(s *Store) ValueFunc[uint16] {
	return func(i int) uint16 {
		return s.intensities[i]
	}
}

// PulseRule returns the stored pulse count unchanged.
func PulseRule(s *Store) ValueFunc[uint16] {
	return func(i int) uint16 {
		return s.pulses[i]
	}
}

// DualCount applies the dual-count rule to one reading.
//
// The corrected value is intercept + intensity*slope. In the low-count regime,
// where the correction undershoots a pulse count that is itself below
// threshold, the raw pulse count is returned instead.
func DualCount(intensity, pulse uint16, slope, intercept, threshold float64) float64 {
	corrected := intercept + float64(intensity)*slope
	p := float64(pulse)
	if corrected < p && p < threshold {
		return p
	}

	return corrected
}

// DualCountRule returns a rule computing dual counts with a per-column
// calibration. slopes and intercepts are copied, so later changes by the
// caller do not affect the rule.
func DualCountRule(s *Store, threshold float64, slopes, intercepts []float64) (ValueFunc[float64], error) {
	if len(slopes) != s.NumColumns() || len(intercepts) != s.NumColumns() {
		return nil, fmt.Errorf("%w: %d columns, %d slopes, %d intercepts",
			errs.ErrCalibrationMismatch, s.NumColumns(), len(slopes), len(intercepts))
	}

	slopes = slices.Clone(slopes)
	intercepts = slices.Clone(intercepts)

	return func(i int) float64 {
		col := s.columnIndices[i]
		return DualCount(s.intensities[i], s.pulses[i], slopes[col], intercepts[col], threshold)
	}, nil
}
