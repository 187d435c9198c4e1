package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/guttosm/tickpulse/internal/domain/models"
	"github.com/guttosm/tickpulse/internal/ohlcv"
	"github.com/guttosm/tickpulse/internal/storage"
)

// ErrPersistenceDisabled is returned when a stored run is requested but no repository is wired.
var ErrPersistenceDisabled = errors.New("bar persistence is disabled")

// GenerateRequest is the textual form of an aggregation request, as received
// from the CLI or the HTTP API.
type GenerateRequest struct {
	Start    string `validate:"required"`
	End      string `validate:"required"`
	Interval string `validate:"required"`
	Persist  bool
}

// GenerateResult is a generated bar set plus bookkeeping.
type GenerateResult struct {
	RunID       string
	Bars        []models.Bar
	Files       int
	Ticks       int
	FailedFiles []string
}

// OHLCVService defines business logic for producing and reading bars.
type OHLCVService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	GetRunBars(ctx context.Context, runID string) (*models.Run, []models.Bar, error)
}

// generator is the part of *ohlcv.Generator the service needs.
type generator interface {
	Generate(ctx context.Context, req ohlcv.Request) (*ohlcv.Result, error)
}

type ohlcvService struct {
	gen      generator
	repo     storage.BarsRepository
	validate *validator.Validate
	newID    func() string
	now      func() time.Time
}

// NewOHLCVService wires a generator and an optional repository (nil disables persistence).
func NewOHLCVService(gen generator, repo storage.BarsRepository) OHLCVService {
	return &ohlcvService{
		gen:      gen,
		repo:     repo,
		validate: validator.New(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Generate validates and parses req, runs the pipeline and optionally stores
// the run. Request problems wrap ohlcv.ErrInvalidRequest.
func (s *ohlcvService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ohlcv.ErrInvalidRequest, err)
	}
	if req.Persist && s.repo == nil {
		return nil, ErrPersistenceDisabled
	}

	parsed, err := ohlcv.NewRequest(req.Start, req.End, req.Interval)
	if err != nil {
		return nil, err
	}

	res, err := s.gen.Generate(ctx, parsed)
	if err != nil {
		return nil, err
	}

	out := &GenerateResult{Bars: res.Bars, Files: res.Files, Ticks: res.Ticks}
	for _, f := range res.Failures {
		out.FailedFiles = append(out.FailedFiles, f.Path)
	}

	if req.Persist {
		run := models.Run{
			ID:        s.newID(),
			Start:     parsed.Start,
			End:       parsed.End,
			Interval:  parsed.Interval,
			BarCount:  len(res.Bars),
			TickCount: res.Ticks,
			CreatedAt: s.now(),
		}
		if err := s.repo.SaveRun(ctx, run, res.Bars); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
		out.RunID = run.ID
	}

	return out, nil
}

// GetRunBars loads a stored run and its bars.
func (s *ohlcvService) GetRunBars(ctx context.Context, runID string) (*models.Run, []models.Bar, error) {
	if s.repo == nil {
		return nil, nil, ErrPersistenceDisabled
	}
	run, err := s.repo.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	bars, err := s.repo.GetRunBars(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	return run, bars, nil
}
