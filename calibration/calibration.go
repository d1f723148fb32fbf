// Package calibration derives per-channel dual-count calibration from the
// control points recorded in an experiment schema.
//
// Each control point gives a (slope, intercept) pair at a physical mass.
// Channels between two control points are linearly interpolated over mass;
// channels outside the control-point range take the nearest end point.
package calibration

import (
	"fmt"
	"slices"

	"github.com/arloliu/imd/errs"
)

// Channel is one measurement column and its derived calibration.
type Channel struct {
	Name      string
	Mass      float64
	Slope     float64
	Intercept float64
}

// ControlPoint is a calibration sample at a given mass.
type ControlPoint struct {
	Mass      float64
	Slope     float64
	Intercept float64
}

// SortControlPoints returns a copy of points sorted ascending by mass.
// Points sharing a mass keep their original relative order.
func SortControlPoints(points []ControlPoint) []ControlPoint {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b ControlPoint) int {
		switch {
		case a.Mass < b.Mass:
			return -1
		case a.Mass > b.Mass:
			return 1
		default:
			return 0
		}
	})

	return sorted
}

// Interpolate returns the slope and intercept at mass for control points
// already sorted by SortControlPoints. sorted must not be empty.
//
// Masses at or below the first point clamp to it, masses at or above the last
// clamp to it. Otherwise the first pair [m_i, m_i+1] containing mass with
// m_i < m_i+1 is used:
//
//	slope = s_i + (mass - m_i) * (s_i+1 - s_i) / (m_i+1 - m_i)
//
// and likewise for the intercept. A mass equal to an interior point yields
// that point's values exactly.
func Interpolate(sorted []ControlPoint, mass float64) (slope, intercept float64) {
	first, last := sorted[0], sorted[len(sorted)-1]
	if mass <= first.Mass {
		return first.Slope, first.Intercept
	}
	if mass >= last.Mass {
		return last.Slope, last.Intercept
	}

	for i := 0; i+1 < len(sorted); i++ {
		lo, hi := sorted[i], sorted[i+1]
		if mass < lo.Mass || mass > hi.Mass || lo.Mass == hi.Mass {
			continue
		}
		if mass == lo.Mass {
			return lo.Slope, lo.Intercept
		}
		if mass == hi.Mass {
			return hi.Slope, hi.Intercept
		}

		dm := hi.Mass - lo.Mass
		slope = lo.Slope + (mass-lo.Mass)*(hi.Slope-lo.Slope)/dm
		intercept = lo.Intercept + (mass-lo.Mass)*(hi.Intercept-lo.Intercept)/dm

		return slope, intercept
	}

	// Unreachable for sorted input: first.Mass < mass < last.Mass always has a
	// bracketing pair with distinct masses.
	return last.Slope, last.Intercept
}

// Build assigns a slope and intercept to every channel.
//
// Parameters:
//   - channels: channels in record order; only Name and Mass are read
//   - points: calibration control points in any order
//
// Returns:
//   - []Channel: new slice with Slope and Intercept filled in, same order as channels
//   - error: errs.ErrEmptyCalibration if points is empty
//
// Neither input slice is modified.
func Build(channels []Channel, points []ControlPoint) ([]Channel, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: cannot calibrate %d channels", errs.ErrEmptyCalibration, len(channels))
	}

	sorted := SortControlPoints(points)
	out := make([]Channel, len(channels))
	for i, ch := range channels {
		ch.Slope, ch.Intercept = Interpolate(sorted, ch.Mass)
		out[i] = ch
	}

	return out, nil
}

// Names returns the channel names in order.
func Names(channels []Channel) []string {
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name
	}

	return names
}

// Slopes returns the channel slopes in order.
func Slopes(channels []Channel) []float64 {
	out := make([]float64, len(channels))
	for i, ch := range channels {
		out[i] = ch.Slope
	}

	return out
}

// Intercepts returns the channel intercepts in order.
func Intercepts(channels []Channel) []float64 {
	out := make([]float64, len(channels))
	for i, ch := range channels {
		out[i] = ch.Intercept
	}

	return out
}

// Masses returns the channel masses in order.
func Masses(channels []Channel) []float64 {
	out := make([]float64, len(channels))
	for i, ch := range channels {
		out[i] = ch.Mass
	}

	return out
}
