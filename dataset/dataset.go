// Package dataset ties a decoded CSR store to its channels and calibration and
// hands out the accessors callers query.
package dataset

import (
	"fmt"
	"slices"

	"github.com/arloliu/imd/calibration"
	"github.com/arloliu/imd/csr"
	"github.com/arloliu/imd/errs"
)

// Dataset is a fully decoded IMD acquisition. It is immutable and safe for
// concurrent reads.
type Dataset struct {
	channels   []calibration.Channel
	names      []string
	slopes     []float64
	intercepts []float64
	store      *csr.Store
}

// New creates a dataset from calibrated channels and the store decoded with
// their names.
//
// Returns errs.ErrColumnCountMismatch when the store has a different number
// of columns, or errs.ErrUnknownChannel when a column name differs from the
// channel at the same position.
func New(channels []calibration.Channel, store *csr.Store) (*Dataset, error) {
	if len(channels) != store.NumColumns() {
		return nil, fmt.Errorf("%w: %d channels, store has %d columns",
			errs.ErrColumnCountMismatch, len(channels), store.NumColumns())
	}

	names := calibration.Names(channels)
	for i, name := range store.ColumnNames() {
		if names[i] != name {
			return nil, fmt.Errorf("%w: column %d is %q, channel is %q", errs.ErrUnknownChannel, i, name, names[i])
		}
	}

	return &Dataset{
		channels:   slices.Clone(channels),
		names:      names,
		slopes:     calibration.Slopes(channels),
		intercepts: calibration.Intercepts(channels),
		store:      store,
	}, nil
}

// Channels returns a copy of the channel definitions.
func (d *Dataset) Channels() []calibration.Channel {
	return slices.Clone(d.channels)
}

// ChannelNames returns the channel names in marker order.
func (d *Dataset) ChannelNames() []string {
	return slices.Clone(d.names)
}

// ChannelIndex returns the column of the named channel.
func (d *Dataset) ChannelIndex(name string) (int, error) {
	return d.store.ColumnIndex(name)
}

// NumChannels returns the number of channels.
func (d *Dataset) NumChannels() int {
	return len(d.channels)
}

// NumRows returns the number of pushes.
func (d *Dataset) NumRows() int {
	return d.store.NumRows()
}

// NumEntries returns the number of stored non-zero readings.
func (d *Dataset) NumEntries() int {
	return d.store.NumEntries()
}

// Slopes returns a copy of the default per-channel slopes.
func (d *Dataset) Slopes() []float64 {
	return slices.Clone(d.slopes)
}

// Intercepts returns a copy of the default per-channel intercepts.
func (d *Dataset) Intercepts() []float64 {
	return slices.Clone(d.intercepts)
}

// Store returns the underlying CSR store.
func (d *Dataset) Store() *csr.Store {
	return d.store
}

// Intensities returns an accessor over raw intensities.
func (d *Dataset) Intensities() csr.Accessor[uint16] {
	return csr.NewAccessor(d.store, csr.IntensityRule(d.store))
}

// Pulses returns an accessor over raw pulse counts.
func (d *Dataset) Pulses() csr.Accessor[uint16] {
	return csr.NewAccessor(d.store, csr.PulseRule(d.store))
}

// DualCounts returns an accessor over dual counts using the default
// calibration and csr.DefaultPulseThreshold.
func (d *Dataset) DualCounts() csr.Accessor[float64] {
	return d.DualCountsWithThreshold(csr.DefaultPulseThreshold)
}

// DualCountsWithThreshold returns an accessor over dual counts using the
// default calibration and the given pulse threshold.
func (d *Dataset) DualCountsWithThreshold(threshold float64) csr.Accessor[float64] {
	// lengths match by construction
	acc, _ := d.DualCountsWithCalibration(threshold, d.slopes, d.intercepts)
	return acc
}

// DualCountsWithCalibration returns an accessor over dual counts with a
// caller-supplied calibration. slopes and intercepts are copied and must hold
// one value per channel; otherwise errs.ErrCalibrationMismatch is returned.
func (d *Dataset) DualCountsWithCalibration(threshold float64, slopes, intercepts []float64) (csr.Accessor[float64], error) {
	rule, err := csr.DualCountRule(d.store, threshold, slopes, intercepts)
	if err != nil {
		return csr.Accessor[float64]{}, err
	}

	return csr.NewAccessor(d.store, rule), nil
}
