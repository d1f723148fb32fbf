// Package stream decodes the fixed-width record region of an IMD file into a
// compressed-sparse-row store.
//
// The region is a sequence of rows ("pushes"). Each row holds one
// (intensity, pulse) pair of unsigned 16-bit values per channel, in channel
// order, so a row is 4*channels bytes wide. Only readings with a non-zero
// intensity are kept.
package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/imd/csr"
	"github.com/arloliu/imd/endian"
	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/internal/options"
)

// DefaultReadBufferSize is the size of the buffered reader wrapped around the
// record region.
const DefaultReadBufferSize = 1 << 20

// bytesPerReading is the width of one (intensity, pulse) pair.
const bytesPerReading = 4

// Stats describes a decoded record region.
type Stats struct {
	Rows          int   // rows decoded
	Entries       int   // non-zero readings kept
	RowWidth      int   // bytes per row
	TrailingBytes int64 // bytes after the last complete row, ignored
}

type config struct {
	engine     endian.EndianEngine
	bufferSize int
	maxRows    int
}

// Option configures Decode.
type Option = options.Option[*config]

// WithByteOrder sets the byte order of the record region. The default is
// little-endian.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New(func(c *config) error {
		if engine == nil {
			return errors.New("byte order engine must not be nil")
		}
		c.engine = engine

		return nil
	})
}

// WithReadBufferSize sets the size of the read buffer in bytes.
func WithReadBufferSize(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("read buffer size must be positive, got %d", n)
		}
		c.bufferSize = n

		return nil
	})
}

// WithMaxRows stops decoding after n rows. Zero means no limit.
func WithMaxRows(n int) Option {
	return options.New(func(c *config) error {
		if n < 0 {
			return fmt.Errorf("max rows must not be negative, got %d", n)
		}
		c.maxRows = n

		return nil
	})
}

// RowWidth returns the byte width of one row for the given channel count.
func RowWidth(channels int) int {
	return bytesPerReading * channels
}

// Decode reads the record region [0, regionEnd) from r and compacts it into a
// csr.Store whose columns are names.
//
// The number of rows is regionEnd / RowWidth(len(names)); a trailing partial
// row is ignored and reported in Stats.TrailingBytes. r must be positioned at
// the start of the region.
//
// Parameters:
//   - r: reader positioned at offset 0 of the record region
//   - regionEnd: region length in bytes, normally the metadata start offset
//   - names: channel names in marker order
//   - opts: decoder options
//
// Returns:
//   - *csr.Store: the compacted readings
//   - Stats: row, entry and trailing byte counts
//   - error: errs.ErrMalformedInput for an empty channel list or negative
//     region, errs.ErrIO when r ends before the last row
func Decode(r io.Reader, regionEnd int64, names []string, opts ...Option) (*csr.Store, Stats, error) {
	cfg := &config{
		engine:     endian.GetLittleEndianEngine(),
		bufferSize: DefaultReadBufferSize,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, Stats{}, err
	}

	if len(names) == 0 {
		return nil, Stats{}, fmt.Errorf("%w: no channels defined", errs.ErrMalformedInput)
	}
	if regionEnd < 0 {
		return nil, Stats{}, fmt.Errorf("%w: negative record region length %d", errs.ErrMalformedInput, regionEnd)
	}

	width := RowWidth(len(names))
	rows := int(regionEnd / int64(width))
	stats := Stats{
		RowWidth:      width,
		TrailingBytes: regionEnd % int64(width),
	}
	if cfg.maxRows > 0 && rows > cfg.maxRows {
		rows = cfg.maxRows
	}

	bufSize := cfg.bufferSize
	if regionEnd < int64(bufSize) {
		bufSize = int(regionEnd)
	}
	br := bufio.NewReaderSize(r, bufSize)
	builder := csr.NewBuilder(names, rows)
	row := make([]byte, width)

	for n := 0; n < rows; n++ {
		if _, err := io.ReadFull(br, row); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}

			return nil, Stats{}, fmt.Errorf("%w: reading row %d at offset %d: %w",
				errs.ErrIO, n, int64(n)*int64(width), err)
		}

		builder.StartRow()
		for col := range names {
			off := col * bytesPerReading
			intensity := cfg.engine.Uint16(row[off:])
			if intensity == 0 {
				continue
			}
			pulse := cfg.engine.Uint16(row[off+2:])
			if err := builder.Append(col, intensity, pulse); err != nil {
				return nil, Stats{}, err
			}
			stats.Entries++
		}
	}

	store, err := builder.Finish()
	if err != nil {
		return nil, Stats{}, err
	}
	stats.Rows = store.NumRows()

	return store, stats, nil
}

// Encode writes rows of dense (intensity, pulse) readings in record region
// layout. It is the inverse of Decode for rows without a trailing partial
// row and is used to build record regions for tests and fixtures.
func Encode(w io.Writer, engine endian.EndianEngine, intensities, pulses [][]uint16) error {
	if len(intensities) != len(pulses) {
		return fmt.Errorf("%w: %d intensity rows, %d pulse rows", errs.ErrColumnCountMismatch, len(intensities), len(pulses))
	}

	var buf []byte
	for r := range intensities {
		if len(intensities[r]) != len(pulses[r]) {
			return fmt.Errorf("%w: row %d has %d intensities, %d pulses",
				errs.ErrColumnCountMismatch, r, len(intensities[r]), len(pulses[r]))
		}

		buf = buf[:0]
		for c := range intensities[r] {
			buf = engine.AppendUint16(buf, intensities[r][c])
			buf = engine.AppendUint16(buf, pulses[r][c])
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w: writing row %d: %w", errs.ErrIO, r, err)
		}
	}

	return nil
}
