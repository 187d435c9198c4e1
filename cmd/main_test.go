package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/guttosm/tickpulse/config"
	"github.com/guttosm/tickpulse/internal/domain/models"
	"github.com/guttosm/tickpulse/internal/ohlcv"
	"github.com/guttosm/tickpulse/internal/service"
)

type dummyHandler struct{}

func (d dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestStartServerAndShutdown(t *testing.T) {
	srv := startServer(dummyHandler{}, "0") // random port
	if srv == nil {
		t.Fatalf("expected server")
	}

	time.Sleep(50 * time.Millisecond)

	shutdownCtx, c := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		t.Fatalf("shutdown err: %v", err)
	}
}

func TestGracefulShutdown_SignalPath(t *testing.T) {
	srv := startServer(dummyHandler{}, "0")

	cleaned := make(chan struct{}, 1)
	go func() {
		gracefulShutdown(context.Background(), srv, func() { close(cleaned) })
	}()

	// Give the goroutine time to set up signal notifications
	time.Sleep(50 * time.Millisecond)

	p, _ := os.FindProcess(os.Getpid())
	_ = p.Signal(syscall.SIGTERM)

	select {
	case <-cleaned:
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup not called after SIGTERM")
	}
}

func pipelineConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	raw := filepath.Join(root, "raw")
	if err := os.MkdirAll(raw, 0o755); err != nil {
		t.Fatal(err)
	}
	shard := "Timestamp,Price,Size\n" +
		"2024-01-02 09:30:01.000000,100.0,10\n" +
		"2024-01-02 09:30:02.000000,-101.0,5\n" +
		"2024-01-02 09:30:02.000000,102.0,5\n" +
		"2024-01-02 09:30:03.000000,5000.0,1\n" +
		"2024-01-02 09:30:06.000000,103.0,7\n"
	if err := os.WriteFile(filepath.Join(raw, "ctg_tick_20240102_0001_a.csv"), []byte(shard), 0o644); err != nil {
		t.Fatal(err)
	}
	return config.Config{
		Pipeline: config.PipelineConfig{
			InputDir:       raw,
			CleanDir:       filepath.Join(root, "clean"),
			Workers:        2,
			ShardPrefix:    "ctg_tick",
			ShardExt:       ".csv",
			SessionOpen:    "09:30",
			SessionClose:   "21:00",
			BaselinePolicy: "first",
		},
	}
}

func TestRunCleanThenOHLCV(t *testing.T) {
	cfg := pipelineConfig(t)
	ctx := context.Background()

	if err := runClean(ctx, cfg); err != nil {
		t.Fatalf("runClean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Pipeline.CleanDir, "ctg_tick_20240102_0001_a.csv")); err != nil {
		t.Fatalf("cleaned file missing: %v", err)
	}

	out := filepath.Join(t.TempDir(), "bars.json")
	err := runOHLCV(ctx, cfg, ohlcvFlags{
		start:    "2024-01-02 09:30:00",
		end:      "2024-01-02 09:30:10",
		interval: "5s",
		out:      out,
	})
	if err != nil {
		t.Fatalf("runOHLCV: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var bars []models.Bar
	if err := json.Unmarshal(raw, &bars); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// 09:30:01 100/10 and 09:30:02 101/5 (sign corrected; duplicate and outlier dropped), then 09:30:06 103/7.
	if len(bars) != 2 {
		t.Fatalf("want 2 bars, got %d: %+v", len(bars), bars)
	}
	if bars[0].Open != 100 || bars[0].Close != 101 || bars[0].Volume != 15 {
		t.Fatalf("unexpected first bar %+v", bars[0])
	}
	if bars[1].Open != 103 || bars[1].Volume != 7 {
		t.Fatalf("unexpected second bar %+v", bars[1])
	}
}

func TestRunOHLCV_Errors(t *testing.T) {
	cfg := pipelineConfig(t)
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "bars.csv")
	if err := runClean(ctx, cfg); err != nil {
		t.Fatalf("runClean: %v", err)
	}

	cases := []struct {
		name  string
		flags ohlcvFlags
		want  error
	}{
		{name: "bad interval", flags: ohlcvFlags{start: "2024-01-02 09:30:00", end: "2024-01-02 09:31:00", interval: "abc", out: out}, want: ohlcv.ErrInvalidRequest},
		{name: "no shards", flags: ohlcvFlags{start: "2024-01-03 09:30:00", end: "2024-01-03 09:31:00", interval: "5s", out: out}, want: ohlcv.ErrNoShards},
		{name: "persist without storage", flags: ohlcvFlags{start: "2024-01-02 09:30:00", end: "2024-01-02 09:31:00", interval: "5s", out: out, persist: true}, want: service.ErrPersistenceDisabled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := runOHLCV(ctx, cfg, tc.flags)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}

	if err := runOHLCV(ctx, cfg, ohlcvFlags{out: out, format: "xml"}); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestRunClean_BadPolicy(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Pipeline.BaselinePolicy = "median"
	if err := runClean(context.Background(), cfg); err == nil {
		t.Fatalf("expected policy error")
	}
}

func TestRunClean_UnreachableDatabaseStillCleans(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Postgres = config.PostgresConfig{
		Enabled:  true,
		Host:     "127.0.0.1",
		Port:     1, // nothing listens here
		User:     "x",
		Password: "y",
		DBName:   "z",
		SSLMode:  "disable",
	}

	if err := runClean(context.Background(), cfg); err != nil {
		t.Fatalf("runClean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Pipeline.CleanDir, "ctg_tick_20240102_0001_a.csv")); err != nil {
		t.Fatalf("cleaned file missing: %v", err)
	}
}

func TestRunPipeline(t *testing.T) {
	flagsFor := func(out string) ohlcvFlags {
		return ohlcvFlags{start: "2024-01-02 09:30:00", end: "2024-01-02 09:30:10", interval: "5s", out: out}
	}

	t.Run("setup error stops before generation", func(t *testing.T) {
		cfg := pipelineConfig(t)
		cfg.Pipeline.BaselinePolicy = "median"
		out := filepath.Join(t.TempDir(), "bars.csv")

		err := runPipeline(context.Background(), cfg, flagsFor(out))
		if err == nil || errors.Is(err, errCleanFailures) {
			t.Fatalf("expected setup error, got %v", err)
		}
		if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
			t.Fatalf("bars must not be written after a setup error")
		}
	})

	t.Run("failed files do not stop generation", func(t *testing.T) {
		cfg := pipelineConfig(t)
		// a directory matching the extension fails to read as a file
		if err := os.Mkdir(filepath.Join(cfg.Pipeline.InputDir, "ctg_tick_20240102_0002_b.csv"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := runClean(context.Background(), cfg); !errors.Is(err, errCleanFailures) {
			t.Fatalf("expected per-file failure, got %v", err)
		}

		out := filepath.Join(t.TempDir(), "bars.csv")
		if err := runPipeline(context.Background(), cfg, flagsFor(out)); err != nil {
			t.Fatalf("runPipeline: %v", err)
		}
		if _, err := os.Stat(out); err != nil {
			t.Fatalf("bars missing: %v", err)
		}
	})
}
