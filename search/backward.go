// Package search finds byte patterns in large files by scanning backward from
// an upper bound in fixed-size windows, so the file never has to be loaded
// into memory.
package search

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/internal/options"
	"github.com/arloliu/imd/internal/pool"
)

// DefaultWindowSize is the number of bytes read per backward step.
const DefaultWindowSize = 8192

// NotFound is returned by LastIndex when the pattern does not occur.
const NotFound int64 = -1

type config struct {
	windowSize int
}

// Option configures LastIndex.
type Option = options.Option[*config]

// WithWindowSize sets the window size in bytes. It is raised to the pattern
// length when smaller.
func WithWindowSize(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("window size must be positive, got %d", n)
		}
		c.windowSize = n

		return nil
	})
}

// LastIndex returns the highest offset at which pattern occurs entirely within
// [0, bound) of r, or NotFound.
//
// size is the total length of r. A bound <= 0 or beyond size means "search
// from the end of the file". The file is read in windows moving toward offset
// 0; the first len(pattern) bytes of each window are kept and appended after
// the next (earlier) window, so a match straddling a window boundary is seen
// as one contiguous sequence.
//
// Read failures are wrapped with errs.ErrIO. An empty pattern returns
// errs.ErrInvalidPattern.
func LastIndex(r io.ReaderAt, size int64, pattern []byte, bound int64, opts ...Option) (int64, error) {
	if len(pattern) == 0 {
		return NotFound, errs.ErrInvalidPattern
	}

	cfg := &config{windowSize: DefaultWindowSize}
	if err := options.Apply(cfg, opts...); err != nil {
		return NotFound, err
	}

	end := bound
	if end <= 0 || end > size {
		end = size
	}
	if int64(len(pattern)) > end {
		return NotFound, nil
	}

	window := max(cfg.windowSize, len(pattern))
	patLen := len(pattern)

	bb := pool.GetWindowBuffer()
	defer pool.PutWindowBuffer(bb)
	bb.Resize(window + patLen)
	buf := bb.Bytes()

	// overlap is the number of valid bytes at buf[window:], carried over from
	// the start of the previously scanned (later) window.
	overlap := 0

	for end >= int64(window) {
		start := end - int64(window)
		if err := readFull(r, buf[:window], start); err != nil {
			return NotFound, err
		}

		if pos := bytes.LastIndex(buf[:window+overlap], pattern); pos >= 0 {
			return start + int64(pos), nil
		}

		copy(buf[window:], buf[:patLen])
		overlap = patLen
		end = start
	}

	if end > 0 {
		rem := int(end)
		// Move the carried bytes so they directly follow the remainder.
		copy(buf[rem:rem+overlap], buf[window:window+overlap])
		if err := readFull(r, buf[:rem], 0); err != nil {
			return NotFound, err
		}

		if pos := bytes.LastIndex(buf[:rem+overlap], pattern); pos >= 0 {
			return int64(pos), nil
		}
	}

	return NotFound, nil
}

func readFull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}

	return fmt.Errorf("%w: reading %d bytes at offset %d: %w", errs.ErrIO, len(p), off, err)
}
