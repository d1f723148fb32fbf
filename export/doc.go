// Package export converts dataset accessors into formats consumed by analysis
// tooling: Arrow records and IPC streams (one float64 column per channel, one
// row per push), gonum dense matrices, and per-channel summary statistics.
//
// Every export takes a csr.Accessor, so raw intensities, raw pulses and dual
// counts (with any threshold or calibration override) export the same way:
//
//	rec, err := export.Record(ds.DualCounts())
//	if err != nil {
//	    return err
//	}
//	defer rec.Release()
package export
