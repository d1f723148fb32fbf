// Package errs defines the sentinel errors returned by the imd packages.
//
// Errors fall into two families. Load errors (ErrIO, ErrMalformedInput,
// ErrEmptyCalibration and the cache errors) abort the load that produced
// them; no partial dataset is ever returned. Query errors (ErrOutOfRange,
// ErrUnknownChannel, ErrCalibrationMismatch) are local to a single call and
// leave the dataset valid.
//
// All errors are wrapped with context using fmt.Errorf and "%w", so callers
// classify them with errors.Is.
package errs

import "errors"

// Load errors.
var (
	// ErrIO indicates the file could not be opened or a read failed or was truncated.
	ErrIO = errors.New("i/o failure")
	// ErrMalformedInput indicates a required tag is missing or the metadata is not well-formed.
	ErrMalformedInput = errors.New("malformed input")
	// ErrEmptyCalibration indicates the metadata carries no calibration control points.
	ErrEmptyCalibration = errors.New("no calibration control points")
	// ErrInvalidPattern indicates an empty search pattern.
	ErrInvalidPattern = errors.New("invalid search pattern")
)

// Query errors.
var (
	// ErrOutOfRange indicates a row or column index outside the matrix bounds.
	ErrOutOfRange = errors.New("index out of range")
	// ErrUnknownChannel indicates a channel name that is not part of the dataset.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrCalibrationMismatch indicates a calibration override whose length differs from the channel count.
	ErrCalibrationMismatch = errors.New("calibration length mismatch")
)

// Store construction errors.
var (
	ErrInvalidRowOffsets   = errors.New("invalid row offsets")
	ErrInvalidColumnOrder  = errors.New("column indices not strictly ascending within row")
	ErrColumnCountMismatch = errors.New("entry array length mismatch")
	ErrDuplicateChannel    = errors.New("duplicate channel name")
)

// Cache format errors.
var (
	ErrInvalidHeaderSize   = errors.New("invalid header size")
	ErrInvalidMagicNumber  = errors.New("invalid magic number")
	ErrInvalidHeaderFlags  = errors.New("invalid header flags")
	ErrInvalidPayload      = errors.New("invalid cache payload")
	ErrChecksumMismatch    = errors.New("cache payload checksum mismatch")
	ErrInvalidChannelNames = errors.New("invalid channel names payload")
)
