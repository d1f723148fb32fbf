// Package encoding serializes the sections of a dataset cache payload.
//
// The payload is a concatenation of fixed-width arrays written with one
// endian.EndianEngine:
//
//	[ChannelCount: uint32] ([NameLen: uint16][Name: UTF-8])*
//	[Masses: float64 * channels] [Slopes: float64 * channels]
//	[Intercepts: float64 * channels]
//	[RowOffsets: uint64 * (rows+1)] [Columns: uint32 * entries]
//	[Intensities: uint16 * entries] [Pulses: uint16 * entries]
//
// Append functions add a section to a byte slice; Reader consumes them in the
// same order and reports truncation as errs.ErrInvalidPayload.
package encoding
