package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/guttosm/tickpulse/internal/domain/models"
	pq "github.com/lib/pq"
)

// ErrRunNotFound is returned when a run id has no row in ohlcv_runs.
var ErrRunNotFound = errors.New("run not found")

// BarsRepository defines contract for DB operations.
type BarsRepository interface {
	SaveRun(ctx context.Context, run models.Run, bars []models.Bar) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	GetRunBars(ctx context.Context, id string) ([]models.Bar, error)
	UpsertCleaningLog(ctx context.Context, filename string, stats models.CleanStats) error
}

type barsRepository struct {
	db *sql.DB
}

func NewBarsRepository(db *sql.DB) BarsRepository {
	return &barsRepository{db: db}
}

// SaveRun inserts the run header and all its bars in a single transaction.
func (r *barsRepository) SaveRun(ctx context.Context, run models.Run, bars []models.Bar) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ohlcv_runs (id, window_start, window_end, interval_seconds, bar_count, tick_count)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.ID, run.Start, run.End, int64(run.Interval/time.Second), len(bars), run.TickCount); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"ohlcv_bars",
		"run_id",
		"interval_start",
		"interval_end",
		"open",
		"high",
		"low",
		"close",
		"volume",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, run.ID, b.Start, b.End, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// GetRun loads one run header.
func (r *barsRepository) GetRun(ctx context.Context, id string) (*models.Run, error) {
	var run models.Run
	var seconds int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, window_start, window_end, interval_seconds, bar_count, tick_count, created_at
		FROM ohlcv_runs WHERE id = $1
	`, id).Scan(&run.ID, &run.Start, &run.End, &seconds, &run.BarCount, &run.TickCount, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	run.Interval = time.Duration(seconds) * time.Second
	return &run, nil
}

// GetRunBars returns the bars of a run in ascending time order.
func (r *barsRepository) GetRunBars(ctx context.Context, id string) ([]models.Bar, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT interval_start, interval_end, open, high, low, close, volume
		FROM ohlcv_bars
		WHERE run_id = $1
		ORDER BY interval_start
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Bar
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Start, &b.End, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertCleaningLog records (or updates) the cleaning outcome of one shard file.
func (r *barsRepository) UpsertCleaningLog(ctx context.Context, filename string, stats models.CleanStats) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cleaning_log (filename, row_count, accepted, rejected, sign_corrected)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (filename)
		DO UPDATE SET row_count = EXCLUDED.row_count,
					  accepted = EXCLUDED.accepted,
					  rejected = EXCLUDED.rejected,
					  sign_corrected = EXCLUDED.sign_corrected,
					  cleaned_at = NOW()
	`, filename, stats.Rows, stats.Accepted, stats.Rejected(), stats.SignCorrected)
	return err
}
