package app

import (
	"database/sql"
	"fmt"

	"github.com/guttosm/tickpulse/config"
	"github.com/guttosm/tickpulse/internal/cleaning"
	"github.com/guttosm/tickpulse/internal/ohlcv"
	"github.com/guttosm/tickpulse/internal/storage"
)

// migrator is an indirection for unit testing; defaults to storage.Migrate.
var migrator = storage.Migrate

// NewGenerator builds the bar generator over cfg's cleaned shard directory.
func NewGenerator(cfg config.Config) (*ohlcv.Generator, error) {
	session, err := ohlcv.ParseSession(cfg.Pipeline.SessionOpen, cfg.Pipeline.SessionClose)
	if err != nil {
		return nil, fmt.Errorf("trading session: %w", err)
	}
	locator := ohlcv.NewLocator(cfg.Pipeline.CleanDir, cfg.Pipeline.ShardPrefix, cfg.Pipeline.ShardExt, session)
	return ohlcv.NewGenerator(locator, cfg.Pipeline.Workers), nil
}

// NewCleanOptions maps cfg onto cleaning options. recorder may be nil.
func NewCleanOptions(cfg config.Config, recorder cleaning.Recorder) (cleaning.Options, error) {
	policy, err := cleaning.ParseBaselinePolicy(cfg.Pipeline.BaselinePolicy)
	if err != nil {
		return cleaning.Options{}, err
	}
	return cleaning.Options{
		InputDir:  cfg.Pipeline.InputDir,
		OutputDir: cfg.Pipeline.CleanDir,
		Workers:   cfg.Pipeline.Workers,
		Extension: cfg.Pipeline.ShardExt,
		Policy:    policy,
		Recorder:  recorder,
	}, nil
}

// OpenStorage connects to Postgres and applies migrations when persistence
// is enabled. With persistence off it returns nil, nil, nil.
func OpenStorage(cfg config.Config) (*sql.DB, storage.BarsRepository, error) {
	if !cfg.Postgres.Enabled {
		return nil, nil, nil
	}

	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	if err := migrator(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, storage.NewBarsRepository(db), nil
}
