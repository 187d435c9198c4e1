package main

//
//  @title           tickpulse API
//  @version         1.0
//  @description     Tick cleaning and OHLCV bar generation service.
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/tickpulse
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        ohlcv
//  @tag.description Bar generation and stored runs
//
//  @tag.name        health
//  @tag.description Liveness and readiness checks

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/tickpulse/config"
	_ "github.com/guttosm/tickpulse/docs" // swagger docs
	"github.com/guttosm/tickpulse/internal/app"
	"github.com/guttosm/tickpulse/internal/cleaning"
	"github.com/guttosm/tickpulse/internal/logger"
	"github.com/guttosm/tickpulse/internal/saver"
	"github.com/guttosm/tickpulse/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// errCleanFailures marks a cleaning batch that ran to the end with some files failed.
var errCleanFailures = errors.New("cleaning finished with failed files")

// runClean cleans every raw shard file of cfg.Pipeline.InputDir into
// cfg.Pipeline.CleanDir. The cleaning log is recorded when persistence is on
// and the database is reachable; otherwise cleaning runs without it.
// Per-file failures do not stop the batch; they come back wrapped in
// errCleanFailures. Any other error means nothing was cleaned.
func runClean(ctx context.Context, cfg config.Config) error {
	var recorder cleaning.Recorder
	db, repo, err := app.OpenStorage(cfg)
	switch {
	case err != nil:
		logger.L().Warn().Err(err).Msg("storage unavailable, cleaning without the cleaning log")
	case repo != nil:
		recorder = repo
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	opts, err := app.NewCleanOptions(cfg, recorder)
	if err != nil {
		return err
	}

	report, err := cleaning.CleanDirectory(ctx, opts)
	if err != nil {
		return err
	}
	if err := report.Err(); err != nil {
		return fmt.Errorf("%w: %d of %d: %w", errCleanFailures, len(report.Failures), len(report.Failures)+len(report.Files), err)
	}
	return nil
}

// runPipeline cleans then generates, as one batch. Failed files only warn;
// a cleaning setup error stops the run so bars are never built from stale files.
func runPipeline(ctx context.Context, cfg config.Config, f ohlcvFlags) error {
	if err := runClean(ctx, cfg); err != nil {
		if !errors.Is(err, errCleanFailures) {
			return fmt.Errorf("cleaning: %w", err)
		}
		logger.L().Warn().Err(err).Msg("cleaning finished with failures")
	}
	return runOHLCV(ctx, cfg, f)
}

// ohlcvFlags are the command-line inputs of one bar generation.
type ohlcvFlags struct {
	start    string
	end      string
	interval string
	out      string
	format   string
	persist  bool
}

// runOHLCV generates bars from the cleaned directory and writes them to f.out.
func runOHLCV(ctx context.Context, cfg config.Config, f ohlcvFlags) error {
	s := saver.ForPath(f.out, f.format)
	if s == nil {
		return fmt.Errorf("unsupported output format %q", f.format)
	}

	gen, err := app.NewGenerator(cfg)
	if err != nil {
		return err
	}

	var svc service.OHLCVService
	if f.persist {
		db, repo, err := app.OpenStorage(cfg)
		if err != nil {
			return err
		}
		if db != nil {
			defer func() { _ = db.Close() }()
		}
		svc = service.NewOHLCVService(gen, repo)
	} else {
		svc = service.NewOHLCVService(gen, nil)
	}

	res, err := svc.Generate(ctx, service.GenerateRequest{
		Start:    f.start,
		End:      f.end,
		Interval: f.interval,
		Persist:  f.persist,
	})
	if err != nil {
		return err
	}

	if err := s.Save(res.Bars, f.out); err != nil {
		return fmt.Errorf("save bars: %w", err)
	}

	logger.L().Info().
		Str("out", f.out).
		Str("format", s.Extension()).
		Int("bars", len(res.Bars)).
		Int("ticks", res.Ticks).
		Int("failed_files", len(res.FailedFiles)).
		Str("run_id", res.RunID).
		Msg("bars written")
	return nil
}

// main is the entry point of the tickpulse application.
//
// Modes (selected via --mode flag):
//   - clean:    Cleans raw shard files from INPUT_DIR into CLEAN_DIR.
//   - ohlcv:    Generates bars for --start/--end/--interval into --out.
//   - pipeline: clean followed by ohlcv.
//   - api:      Starts the REST API serving bar generation and stored runs.
func main() {
	config.LoadConfig()
	logger.Init()

	cfg := config.AppConfig

	mode := flag.String("mode", "pipeline", "Mode: clean, ohlcv, pipeline or api")
	input := flag.String("input", cfg.Pipeline.InputDir, "Directory with raw shard files")
	clean := flag.String("clean", cfg.Pipeline.CleanDir, "Directory for cleaned shard files")
	workers := flag.Int("workers", cfg.Pipeline.Workers, "Worker pool size (0=2x CPU)")
	var of ohlcvFlags
	flag.StringVar(&of.start, "start", "", "Window start, YYYY-MM-DD HH:MM:SS[.ffffff]")
	flag.StringVar(&of.end, "end", "", "Window end (exclusive), YYYY-MM-DD HH:MM:SS[.ffffff]")
	flag.StringVar(&of.interval, "interval", "", "Bar interval, e.g. 4s, 15m, 1h30m")
	flag.StringVar(&of.out, "out", "results.csv", "Output file for the bars")
	flag.StringVar(&of.format, "format", cfg.Pipeline.OutputFormat, "Output format: csv, json or parquet (default: by --out extension)")
	flag.BoolVar(&of.persist, "persist", false, "Store the generated run in Postgres")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	flag.Parse()

	cfg.Pipeline.InputDir = *input
	cfg.Pipeline.CleanDir = *clean
	cfg.Pipeline.Workers = *workers
	config.AppConfig = cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "clean":
		if err := runClean(ctx, cfg); err != nil {
			logger.L().Fatal().Err(err).Msg("cleaning failed")
		}
		logger.L().Info().Msg("cleaning completed")

	case "ohlcv":
		if err := runOHLCV(ctx, cfg, of); err != nil {
			logger.L().Fatal().Err(err).Msg("bar generation failed")
		}

	case "pipeline":
		if err := runPipeline(ctx, cfg, of); err != nil {
			logger.L().Fatal().Err(err).Msg("pipeline failed")
		}

	case "api":
		stop()
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(context.Background(), server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
