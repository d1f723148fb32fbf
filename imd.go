// Package imd reads IMD instrument files: a block of fixed-width sensor
// records ("pushes") followed by an embedded wide-text XML experiment schema.
//
// Loading a file runs once, in order: the schema is bracketed by a backward
// search from the end of the file, its markers and dual-analyte control points
// are turned into per-channel calibration, and the record region in front of
// it is compacted into a sparse CSR matrix.
//
// # Basic Usage
//
//	ds, err := imd.ReadData("sample.imd")
//	if err != nil {
//	    return err
//	}
//
//	counts := ds.DualCounts()
//	v, err := counts.AtByName(0, "CD45")
//
// Decoded datasets can be cached to skip the scan on the next run:
//
//	err = imd.SaveCache("sample.imdc", ds, dataset.WithCompression(format.CompressionZstd))
//	ds, err = imd.LoadCache("sample.imdc")
//
// # Errors
//
// All errors wrap sentinels from the errs package. Load errors (errs.ErrIO,
// errs.ErrMalformedInput, errs.ErrEmptyCalibration) abort the load and never
// yield a partial dataset. Query errors (errs.ErrOutOfRange,
// errs.ErrUnknownChannel) leave the dataset usable.
package imd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/imd/calibration"
	"github.com/arloliu/imd/dataset"
	"github.com/arloliu/imd/endian"
	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/internal/hash"
	"github.com/arloliu/imd/internal/options"
	"github.com/arloliu/imd/metadata"
	"github.com/arloliu/imd/search"
	"github.com/arloliu/imd/section"
	"github.com/arloliu/imd/stream"
)

type config struct {
	searchOpts []search.Option
	streamOpts []stream.Option
	maxRows    int
	bigEndian  bool
}

// Option configures Open and ReadData.
type Option = options.Option[*config]

// WithSearchWindow sets the window size of the backward tag search.
func WithSearchWindow(n int) Option {
	return options.NoError(func(c *config) {
		c.searchOpts = append(c.searchOpts, search.WithWindowSize(n))
	})
}

// WithByteOrder sets the byte order of the record region. The default is
// little-endian.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.NoError(func(c *config) {
		c.streamOpts = append(c.streamOpts, stream.WithByteOrder(engine))
		c.bigEndian = engine != nil && !endian.IsLittleEndian(engine)
	})
}

// WithMaxRows limits decoding to the first n pushes. Zero means no limit.
func WithMaxRows(n int) Option {
	return options.NoError(func(c *config) {
		c.streamOpts = append(c.streamOpts, stream.WithMaxRows(n))
		c.maxRows = n
	})
}

// File is an open IMD file whose metadata region has been located.
// A File is not safe for concurrent use.
type File struct {
	f      *os.File
	size   int64
	region metadata.Region
	cfg    *config
}

// Open opens the IMD file at path and locates its embedded metadata.
//
// Parameters:
//   - path: file to open
//   - opts: WithSearchWindow, WithByteOrder, WithMaxRows
//
// Returns:
//   - *File: the open file; the caller must Close it
//   - error: errs.ErrIO if the file cannot be opened or read,
//     errs.ErrMalformedInput if either schema tag is missing
func Open(path string, opts ...Option) (*File, error) {
	cfg := &config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	region, err := metadata.Locate(f, info.Size(), cfg.searchOpts...)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locating metadata in %s: %w", path, err)
	}

	return &File{f: f, size: info.Size(), region: region, cfg: cfg}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Name returns the path the file was opened with.
func (f *File) Name() string {
	return f.f.Name()
}

// Size returns the file length in bytes.
func (f *File) Size() int64 {
	return f.size
}

// Region returns the byte range of the embedded metadata document. Its Start
// is the end of the record region.
func (f *File) Region() metadata.Region {
	return f.region
}

// ReadMetadata returns the embedded metadata document decoded from wide text.
// Escaped markup is left as stored.
func (f *File) ReadMetadata() (string, error) {
	return metadata.ReadText(f.f, f.region)
}

// ReadSchema parses the markers and dual-analyte control points of the
// embedded metadata.
func (f *File) ReadSchema() (metadata.Schema, error) {
	text, err := f.ReadMetadata()
	if err != nil {
		return metadata.Schema{}, err
	}

	return metadata.ParseSchema(text)
}

// ReadData decodes the whole file into a dataset.
func (f *File) ReadData() (*dataset.Dataset, error) {
	ds, _, err := f.ReadDataStats()
	return ds, err
}

// ReadDataStats is ReadData that also reports decoder statistics, such as
// the number of trailing bytes ignored after the last complete push.
func (f *File) ReadDataStats() (*dataset.Dataset, stream.Stats, error) {
	schema, err := f.ReadSchema()
	if err != nil {
		return nil, stream.Stats{}, err
	}

	channels, err := calibration.BuildFromSchema(schema)
	if err != nil {
		return nil, stream.Stats{}, err
	}

	records := io.NewSectionReader(f.f, 0, f.region.Start)
	store, stats, err := stream.Decode(records, f.region.Start, calibration.Names(channels), f.cfg.streamOpts...)
	if err != nil {
		return nil, stream.Stats{}, fmt.Errorf("decoding records of %s: %w", f.Name(), err)
	}

	ds, err := dataset.New(channels, store)
	if err != nil {
		return nil, stream.Stats{}, err
	}

	return ds, stats, nil
}

// ReadData opens path, decodes it and closes it.
func ReadData(path string, opts ...Option) (*dataset.Dataset, error) {
	f, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.ReadData()
}

// SaveCache writes ds to path in the dataset cache format. The file is written
// next to path and renamed into place.
func SaveCache(path string, ds *dataset.Dataset, opts ...dataset.CacheOption) error {
	data, err := dataset.Encode(ds, opts...)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return nil
}

// LoadCache reads a dataset cache written by SaveCache.
func LoadCache(path string) (*dataset.Dataset, error) {
	data, err := readCache(path)
	if err != nil {
		return nil, err
	}

	return dataset.Decode(data)
}

func readCache(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if !section.IsCache(data) {
		return nil, fmt.Errorf("%w: %s is not a dataset cache", errs.ErrInvalidMagicNumber, path)
	}

	return data, nil
}

// sourceKey identifies the contents of the file described by info together
// with the settings that change what is decoded from it.
func sourceKey(info os.FileInfo, cfg *config) uint64 {
	engine := endian.GetLittleEndianEngine()

	buf := make([]byte, 0, 25)
	buf = engine.AppendUint64(buf, uint64(info.Size()))
	buf = engine.AppendUint64(buf, uint64(info.ModTime().UnixNano()))
	buf = engine.AppendUint64(buf, uint64(cfg.maxRows))
	if cfg.bigEndian {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	return hash.Checksum(buf)
}

// ReadDataCached loads the dataset of path from cachePath when that cache was
// built from the same file (size and modification time) with the same
// WithMaxRows and WithByteOrder settings. Otherwise it decodes path and
// rewrites the cache. The returned bool reports a cache hit.
//
// A cache file that exists but is not a cache, or whose payload cannot be
// decoded, is an error; it is not silently rebuilt.
func ReadDataCached(path, cachePath string, opts ...Option) (*dataset.Dataset, bool, error) {
	cfg := &config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	key := sourceKey(info, cfg)

	data, err := readCache(cachePath)
	switch {
	case err == nil:
		header, err := section.ParseCacheHeader(data)
		if err != nil {
			return nil, false, fmt.Errorf("loading cache %s: %w", cachePath, err)
		}
		if header.SourceKey == key {
			ds, err := dataset.Decode(data)
			if err != nil {
				return nil, false, fmt.Errorf("loading cache %s: %w", cachePath, err)
			}

			return ds, true, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, false, fmt.Errorf("loading cache %s: %w", cachePath, err)
	}

	ds, err := ReadData(path, opts...)
	if err != nil {
		return nil, false, err
	}
	if err := SaveCache(cachePath, ds, dataset.WithSourceKey(key)); err != nil {
		return nil, false, fmt.Errorf("saving cache %s: %w", cachePath, err)
	}

	return ds, false, nil
}
