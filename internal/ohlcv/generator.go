package ohlcv

import (
	"context"
	"fmt"
	"time"

	"github.com/guttosm/tickpulse/internal/domain/models"
	"github.com/guttosm/tickpulse/internal/logger"
	"github.com/guttosm/tickpulse/internal/metrics"
)

// Request is one validated aggregation request.
type Request struct {
	Start    time.Time
	End      time.Time
	Interval time.Duration
}

// NewRequest parses the textual window boundaries and interval.
// Every failure wraps ErrInvalidRequest.
func NewRequest(start, end, interval string) (Request, error) {
	s, err := ParseDateTime(start)
	if err != nil {
		return Request{}, err
	}
	e, err := ParseDateTime(end)
	if err != nil {
		return Request{}, err
	}
	iv, err := ParseInterval(interval)
	if err != nil {
		return Request{}, err
	}
	if err := ValidateWindow(s, e); err != nil {
		return Request{}, err
	}
	return Request{Start: s, End: e, Interval: iv}, nil
}

// Result is the outcome of a successful Generate call.
type Result struct {
	Bars     []models.Bar
	Files    int
	Ticks    int
	Failures []FileFailure
}

// Generator runs the locate → ingest → merge → aggregate pipeline over a
// directory of cleaned shard files.
type Generator struct {
	locator *Locator
	workers int
}

// NewGenerator returns a Generator; workers <= 0 uses the pool default.
func NewGenerator(locator *Locator, workers int) *Generator {
	return &Generator{locator: locator, workers: workers}
}

// Generate produces the bars for req.
//
// Returns:
//   - ErrNoShards if no shard file matches the window.
//   - ErrNoTicks if the matched files hold no tick inside the window.
//   - any ErrInvalidRequest from window validation.
//   - a plain error if the shard directory cannot be listed.
//
// Ingestion is a strict barrier: aggregation starts only after every file
// has been read.
func (g *Generator) Generate(ctx context.Context, req Request) (res *Result, err error) {
	started := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.GenerateDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	}()

	if req.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be a positive duration", ErrInvalidRequest)
	}

	shards, err := g.locator.Locate(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if len(shards) == 0 {
		return nil, ErrNoShards
	}

	log := logger.With("ohlcv")
	log.Info().
		Time("start", req.Start).
		Time("end", req.End).
		Dur("interval", req.Interval).
		Int("files", len(shards)).
		Msg("generate start")

	ingested := Ingest(ctx, Paths(shards), req.Start, req.End, g.workers)
	timeline := Merge(ingested.Batches)
	if len(timeline) == 0 {
		return nil, ErrNoTicks
	}

	bars := Aggregate(timeline, req.Start, req.End, req.Interval)
	metrics.BarsEmitted.Add(float64(len(bars)))

	log.Info().
		Int("files", len(shards)).
		Int("failed_files", len(ingested.Failures)).
		Int("ticks", len(timeline)).
		Int("bars", len(bars)).
		Dur("elapsed", time.Since(started)).
		Msg("generate done")

	return &Result{
		Bars:     bars,
		Files:    len(shards),
		Ticks:    len(timeline),
		Failures: ingested.Failures,
	}, nil
}
