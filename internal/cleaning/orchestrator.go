package cleaning

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/multierr"

	"github.com/guttosm/tickpulse/internal/domain/models"
	"github.com/guttosm/tickpulse/internal/logger"
	"github.com/guttosm/tickpulse/internal/metrics"
	"github.com/guttosm/tickpulse/internal/workerpool"
)

const defaultExtension = ".csv"

// Recorder receives per-file cleaning stats once a file has been written.
// The storage repository implements it; nil disables recording.
type Recorder interface {
	UpsertCleaningLog(ctx context.Context, filename string, stats models.CleanStats) error
}

// Options configures CleanDirectory.
//
// Fields:
//   - InputDir:  directory holding raw shard files (flat, not recursive).
//   - OutputDir: directory receiving cleaned files; created if absent.
//   - Workers:   pool size; 0 means workerpool.DefaultWorkers().
//   - Extension: file extension to match (default ".csv").
//   - Policy:    baseline policy for the magnitude check.
//   - Recorder:  optional sink for per-file stats.
type Options struct {
	InputDir  string
	OutputDir string
	Workers   int
	Extension string
	Policy    BaselinePolicy
	Recorder  Recorder
}

// FileResult describes one successfully cleaned file.
type FileResult struct {
	Input   string
	Output  string
	Stats   models.CleanStats
	Elapsed time.Duration
}

// FileFailure describes one file that could not be cleaned or recorded.
type FileFailure struct {
	Input string
	Err   error
}

// Report summarizes a CleanDirectory batch.
type Report struct {
	Files    []FileResult
	Failures []FileFailure
}

// Err combines every per-file failure into one error, or nil if all files succeeded.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, fmt.Errorf("file %s: %w", f.Input, f.Err))
	}
	return err
}

// Totals sums the stats of every cleaned file.
func (r *Report) Totals() models.CleanStats {
	var t models.CleanStats
	for _, f := range r.Files {
		t.Rows += f.Stats.Rows
		t.Accepted += f.Stats.Accepted
		t.EmptyField += f.Stats.EmptyField
		t.Malformed += f.Stats.Malformed
		t.Duplicate += f.Stats.Duplicate
		t.SignCorrected += f.Stats.SignCorrected
		t.Magnitude += f.Stats.Magnitude
		t.NegativeSize += f.Stats.NegativeSize
	}
	return t
}

// cleanFileFn is an indirection for tests that need a file to fail.
var cleanFileFn = cleanFile

// CleanDirectory cleans every shard file in opts.InputDir into opts.OutputDir.
//
// Behavior:
//   - Files are processed independently on a bounded worker pool.
//   - A file's failure never stops the others; it is logged and collected in
//     Report.Failures (see Report.Err).
//
// Returns:
//   - *Report: per-file results and failures.
//   - error: only for setup problems (bad glob, output directory not creatable).
func CleanDirectory(ctx context.Context, opts Options) (*Report, error) {
	ext := opts.Extension
	if ext == "" {
		ext = defaultExtension
	}

	files, err := filepath.Glob(filepath.Join(opts.InputDir, "*"+ext))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", opts.InputDir, err)
	}
	sort.Strings(files)

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", opts.OutputDir, err)
	}

	log := logger.With("cleaning")
	log.Info().
		Str("input_dir", opts.InputDir).
		Str("output_dir", opts.OutputDir).
		Int("files", len(files)).
		Int("workers", opts.Workers).
		Str("baseline", opts.Policy.String()).
		Msg("cleaning start")

	results := workerpool.Run(ctx, opts.Workers, files, func(ctx context.Context, in string) (FileResult, error) {
		return cleanFileFn(ctx, in, opts)
	})

	report := &Report{}
	for _, r := range results {
		in := files[r.Index]
		if r.Err != nil {
			metrics.CleanFiles.WithLabelValues("failed").Inc()
			log.Error().Str("file", filepath.Base(in)).Err(r.Err).Msg("file failed")
			report.Failures = append(report.Failures, FileFailure{Input: in, Err: r.Err})
			continue
		}
		metrics.CleanFiles.WithLabelValues("ok").Inc()
		metrics.ObserveClean(r.Value.Stats)
		report.Files = append(report.Files, r.Value)
	}

	totals := report.Totals()
	log.Info().
		Int("files_ok", len(report.Files)).
		Int("files_failed", len(report.Failures)).
		Int("rows", totals.Rows).
		Int("accepted", totals.Accepted).
		Int("rejected", totals.Rejected()).
		Msg("cleaning done")

	return report, nil
}

// cleanFile cleans one input file and writes its same-named output file.
func cleanFile(ctx context.Context, in string, opts Options) (FileResult, error) {
	start := time.Now()
	base := filepath.Base(in)
	res := FileResult{Input: in, Output: filepath.Join(opts.OutputDir, base)}

	ticks, stats, err := readAndClean(in, opts.Policy)
	if err != nil {
		return res, err
	}
	res.Stats = stats

	if err := WriteTicks(res.Output, ticks); err != nil {
		return res, fmt.Errorf("write %s: %w", res.Output, err)
	}

	if opts.Recorder != nil {
		if err := opts.Recorder.UpsertCleaningLog(ctx, base, stats); err != nil {
			return res, fmt.Errorf("record cleaning log: %w", err)
		}
	}

	res.Elapsed = time.Since(start)
	logger.L().Debug().
		Str("file", base).
		Int("rows", stats.Rows).
		Int("accepted", stats.Accepted).
		Int("rejected", stats.Rejected()).
		Dur("elapsed", res.Elapsed).
		Msg("file cleaned")
	return res, nil
}

// readAndClean streams one raw file through Clean. The header row is skipped;
// an empty file yields no ticks.
func readAndClean(path string, policy BaselinePolicy) ([]models.Tick, models.CleanStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.CleanStats{}, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := NewTickReader(f)
	if _, err := r.Read(); err != nil && !errors.Is(err, io.EOF) {
		var perr *csv.ParseError
		if !errors.As(err, &perr) {
			return nil, models.CleanStats{}, fmt.Errorf("read header: %w", err)
		}
	}

	return Clean(r, policy)
}

// NewTickReader returns a csv reader tolerant of ragged rows; arity is
// checked per record by ParseRecord. Records are reused between reads.
func NewTickReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}
