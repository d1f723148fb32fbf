// Command imdinfo summarizes an IMD file and optionally writes its metadata,
// a dataset cache, or an Arrow IPC export of the dual counts.
//
//	imdinfo -file run.imd -cache run.imdc -arrow run.arrow
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/arloliu/imd"
	"github.com/arloliu/imd/csr"
	"github.com/arloliu/imd/dataset"
	"github.com/arloliu/imd/endian"
	"github.com/arloliu/imd/export"
	"github.com/arloliu/imd/format"
)

var errUsage = errors.New("usage")

type flags struct {
	file        string
	metadata    bool
	cache       string
	compression string
	arrow       string
	threshold   float64
	maxRows     int
	byteOrder   string
	window      int
	verbose     bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags

	fs := flag.NewFlagSet("imdinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.file, "file", "", "Path to the IMD file (required).")
	fs.BoolVar(&f.metadata, "metadata", false, "Print the metadata document instead of the summary.")
	fs.StringVar(&f.cache, "cache", "", "(Optional) Write a dataset cache to this path.")
	fs.StringVar(&f.compression, "compression", "zstd", "Cache compression: none, zstd, s2 or lz4.")
	fs.StringVar(&f.arrow, "arrow", "", "(Optional) Write the dual counts as an Arrow IPC stream to this path.")
	fs.Float64Var(&f.threshold, "threshold", csr.DefaultPulseThreshold, "Pulse threshold of the dual count rule.")
	fs.IntVar(&f.maxRows, "max-rows", 0, "Decode at most this many pushes; 0 decodes all.")
	fs.StringVar(&f.byteOrder, "byte-order", "little", "Byte order of the record region: little or big.")
	fs.IntVar(&f.window, "window", 0, "Backward search window in bytes; 0 uses the default.")
	fs.BoolVar(&f.verbose, "v", false, "Enable debug logging.")

	if err := fs.Parse(args); err != nil {
		return f, fmt.Errorf("%w: %w", errUsage, err)
	}
	if f.file == "" {
		fs.PrintDefaults()
		return f, fmt.Errorf("%w: -file is required", errUsage)
	}

	return f, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := inspect(f, stdout, logger); err != nil {
		logger.Error("imdinfo failed", "file", f.file, "error", err)
		return err
	}

	return nil
}

func inspect(f flags, stdout io.Writer, logger *slog.Logger) error {
	engine, err := endian.Parse(f.byteOrder)
	if err != nil {
		return err
	}
	compression, err := format.ParseCompressionType(f.compression)
	if err != nil {
		return err
	}

	opts := []imd.Option{imd.WithByteOrder(engine), imd.WithMaxRows(f.maxRows)}
	if f.window > 0 {
		opts = append(opts, imd.WithSearchWindow(f.window))
	}

	file, err := imd.Open(f.file, opts...)
	if err != nil {
		return err
	}
	defer file.Close()

	region := file.Region()
	logger.Debug("located metadata", "start", region.Start, "end", region.End, "size", file.Size())

	if f.metadata {
		text, err := file.ReadMetadata()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, text)

		return err
	}

	ds, stats, err := file.ReadDataStats()
	if err != nil {
		return err
	}
	logger.Info("decoded records",
		"rows", stats.Rows,
		"entries", stats.Entries,
		"row_width", stats.RowWidth,
	)
	if stats.TrailingBytes > 0 {
		logger.Warn("dropped trailing partial row", "bytes", stats.TrailingBytes)
	}

	acc := ds.DualCountsWithThreshold(f.threshold)
	if err := printSummary(stdout, ds, acc); err != nil {
		return err
	}

	if f.cache != "" {
		if err := imd.SaveCache(f.cache, ds, dataset.WithCompression(compression)); err != nil {
			return err
		}
		logger.Info("wrote cache", "path", f.cache, "compression", compression)
	}

	if f.arrow != "" {
		if err := writeArrow(f.arrow, acc); err != nil {
			return err
		}
		logger.Info("wrote arrow stream", "path", f.arrow)
	}

	return nil
}

func printSummary(w io.Writer, ds *dataset.Dataset, acc csr.Accessor[float64]) error {
	summaries, err := export.Summarize(acc)
	if err != nil {
		return err
	}

	slopes, intercepts := ds.Slopes(), ds.Intercepts()
	channels := ds.Channels()

	fmt.Fprintf(w, "pushes: %d  channels: %d  entries: %d  density: %.4f\n",
		ds.NumRows(), ds.NumChannels(), ds.NumEntries(), ds.Store().Density())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "channel\tmass\tslope\tintercept\tnonzero\tmean\tstddev\tmedian\tp99\tmax")
	for i, s := range summaries {
		fmt.Fprintf(tw, "%s\t%.4f\t%.6g\t%.6g\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			s.Name, channels[i].Mass, slopes[i], intercepts[i],
			s.NonZero, s.Mean, s.StdDev, s.Median, s.Quantile, s.Max)
	}

	return tw.Flush()
}

func writeArrow(path string, acc csr.Accessor[float64]) error {
	rec, err := export.Record(acc, export.WithPushColumn())
	if err != nil {
		return err
	}
	defer rec.Release()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteIPC(out, rec); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
