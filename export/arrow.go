package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arloliu/imd/csr"
	"github.com/arloliu/imd/errs"
	"github.com/arloliu/imd/internal/collision"
	"github.com/arloliu/imd/internal/hash"
	"github.com/arloliu/imd/internal/options"
)

// PushColumn is the name of the optional leading row-index column.
const PushColumn = "push"

// ChannelIDKey is the field metadata key holding the xxHash64 of the channel name.
const ChannelIDKey = "imd.channel_id"

type config struct {
	allocator  memory.Allocator
	pushColumn bool
}

// Option configures Record and IPC.
type Option = options.Option[*config]

// WithAllocator sets the Arrow memory allocator. The default is memory.DefaultAllocator.
func WithAllocator(mem memory.Allocator) Option {
	return options.NoError(func(c *config) {
		if mem != nil {
			c.allocator = mem
		}
	})
}

// WithPushColumn prepends an int64 column holding the push (row) index.
func WithPushColumn() Option {
	return options.NoError(func(c *config) {
		c.pushColumn = true
	})
}

// Schema returns the Arrow schema of a record exported from the given channels.
// Each channel field carries its xxHash64 identifier under ChannelIDKey unless
// two channel identifiers collide, in which case no field carries one.
func Schema(channels []string, pushColumn bool) (*arrow.Schema, error) {
	tracker := collision.NewTracker(len(channels))
	ids := make([]uint64, len(channels))
	for i, name := range channels {
		ids[i] = hash.ID(name)
		if err := tracker.Track(name, ids[i]); err != nil {
			return nil, err
		}
	}

	fields := make([]arrow.Field, 0, len(channels)+1)
	if pushColumn {
		fields = append(fields, arrow.Field{Name: PushColumn, Type: arrow.PrimitiveTypes.Int64})
	}
	for i, name := range channels {
		field := arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64}
		if !tracker.HasCollision() {
			field.Metadata = arrow.NewMetadata([]string{ChannelIDKey}, []string{strconv.FormatUint(ids[i], 16)})
		}
		fields = append(fields, field)
	}

	return arrow.NewSchema(fields, nil), nil
}

// Record builds an Arrow record from acc. The caller must Release it.
//
// Parameters:
//   - acc: accessor whose values are exported; integer values are widened to float64
//   - opts: WithAllocator, WithPushColumn
//
// Returns:
//   - arrow.Record: NumRows rows, one float64 column per channel
//   - error: option errors, or a Schema error
func Record[T csr.Value](acc csr.Accessor[T], opts ...Option) (arrow.Record, error) {
	cfg := &config{allocator: memory.DefaultAllocator}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	store := acc.Store()
	rows, cols := acc.NumRows(), acc.NumColumns()
	schema, err := Schema(store.ColumnNames(), cfg.pushColumn)
	if err != nil {
		return nil, err
	}

	builder := array.NewRecordBuilder(cfg.allocator, schema)
	defer builder.Release()

	first := 0
	if cfg.pushColumn {
		pb := builder.Field(0).(*array.Int64Builder)
		pb.Reserve(rows)
		for r := 0; r < rows; r++ {
			pb.UnsafeAppend(int64(r))
		}
		first = 1
	}

	dense := acc.Dense()
	for c := 0; c < cols; c++ {
		fb := builder.Field(first + c).(*array.Float64Builder)
		fb.Reserve(rows)
		for r := 0; r < rows; r++ {
			fb.UnsafeAppend(float64(dense[r*cols+c]))
		}
	}

	return builder.NewRecord(), nil
}

// WriteIPC writes rec to w as an Arrow IPC stream.
func WriteIPC(w io.Writer, rec arrow.Record) error {
	writer := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()))
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return fmt.Errorf("%w: writing arrow record: %w", errs.ErrIO, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: closing arrow stream: %w", errs.ErrIO, err)
	}

	return nil
}

// IPC exports acc as Arrow IPC stream bytes.
func IPC[T csr.Value](acc csr.Accessor[T], opts ...Option) ([]byte, error) {
	rec, err := Record(acc, opts...)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	var buf bytes.Buffer
	if err := WriteIPC(&buf, rec); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ReadIPC reads the first record of an Arrow IPC stream. The caller must
// Release it.
func ReadIPC(data []byte) (arrow.Record, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: opening arrow stream: %w", errs.ErrMalformedInput, err)
	}
	defer reader.Release()

	if !reader.Next() {
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("%w: reading arrow stream: %w", errs.ErrMalformedInput, err)
		}

		return nil, fmt.Errorf("%w: no records in arrow stream", errs.ErrMalformedInput)
	}

	rec := reader.Record()
	rec.Retain()

	return rec, nil
}
