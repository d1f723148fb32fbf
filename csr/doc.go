// Package csr implements the sparse matrix model for decoded IMD records.
//
// A Store holds the compacted readings in compressed-sparse-row form: one row
// per push, one column per channel, and only cells with a non-zero intensity
// stored. Stores are built once, by a Builder or by NewStore, and never
// modified afterwards.
//
// Values are read through an Accessor, which pairs a Store with a ValueFunc
// rule deriving the value of a stored entry. Three rules are provided:
//
//   - IntensityRule: the raw intensity
//   - PulseRule: the raw pulse count
//   - DualCountRule: the calibrated dual count with the low-count pulse override
//
// Callers may pass their own ValueFunc to NewAccessor.
//
// Example:
//
//	acc := csr.NewAccessor(store, csr.IntensityRule(store))
//	v, err := acc.AtByName(0, "CD45")
//	if errors.Is(err, errs.ErrUnknownChannel) {
//	    // no such channel
//	}
//	dense := acc.Dense() // row-major, NumRows*NumColumns
package csr
