package ohlcv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/guttosm/tickpulse/internal/cleaning"
	"github.com/guttosm/tickpulse/internal/domain/models"
	"github.com/guttosm/tickpulse/internal/logger"
	"github.com/guttosm/tickpulse/internal/metrics"
	"github.com/guttosm/tickpulse/internal/workerpool"
)

// FileFailure is a shard file the ingestor could not read.
type FileFailure struct {
	Path string
	Err  error
}

// IngestResult holds the per-file tick batches in input order plus the files
// that failed. Failed files contribute an empty batch.
type IngestResult struct {
	Batches  [][]models.Tick
	Failures []FileFailure
}

// Ticks returns the number of ticks across all batches.
func (r IngestResult) Ticks() int {
	n := 0
	for _, b := range r.Batches {
		n += len(b)
	}
	return n
}

// readShardFn is an indirection for tests that need a file read to fail.
var readShardFn = readShard

// Ingest reads every path on a bounded pool and keeps ticks with
// start <= timestamp <= end. A file that cannot be read is logged and
// reported in Failures; the remaining files are still collected.
func Ingest(ctx context.Context, paths []string, start, end time.Time, workers int) IngestResult {
	log := logger.With("ingest")

	results := workerpool.Run(ctx, workers, paths, func(ctx context.Context, p string) ([]models.Tick, error) {
		return readShardFn(ctx, p, start, end)
	})

	out := IngestResult{Batches: make([][]models.Tick, len(paths))}
	for _, r := range results {
		p := paths[r.Index]
		if r.Err != nil {
			metrics.IngestFiles.WithLabelValues("failed").Inc()
			log.Error().Str("file", filepath.Base(p)).Err(r.Err).Msg("error processing file")
			out.Failures = append(out.Failures, FileFailure{Path: p, Err: r.Err})
			continue
		}
		metrics.IngestFiles.WithLabelValues("ok").Inc()
		out.Batches[r.Index] = r.Value
	}
	metrics.IngestTicks.Add(float64(out.Ticks()))

	log.Debug().
		Int("files", len(paths)).
		Int("failed", len(out.Failures)).
		Int("ticks", out.Ticks()).
		Msg("ingest done")
	return out
}

// readShard parses one cleaned shard file. The header row is skipped; short
// or unparsable rows are dropped.
func readShard(ctx context.Context, path string, start, end time.Time) ([]models.Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := cleaning.NewTickReader(f)
	var ticks []models.Tick
	line := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := r.Read()
		line++
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if line == 1 {
			continue // header
		}

		tick, err := cleaning.ParseRecord(rec)
		if err != nil {
			continue
		}
		if tick.Timestamp.Before(start) || tick.Timestamp.After(end) {
			continue
		}
		ticks = append(ticks, tick)
	}

	return ticks, nil
}
