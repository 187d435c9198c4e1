package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tickpulse/config"
	"github.com/guttosm/tickpulse/internal/api"
	"github.com/guttosm/tickpulse/internal/service"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Builds the bar generator over the cleaned shard directory.
//   - Connects to PostgreSQL and migrates it when persistence is enabled.
//   - Wires service, handler and router.
//   - Registers health and readiness checks (database, shard directory).
//   - Provides a cleanup function to close resources (e.g., DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	gen, err := NewGenerator(cfg)
	if err != nil {
		return nil, nil, err
	}

	db, repo, err := OpenStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	svc := service.NewOHLCVService(gen, repo)
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler)

	checks := map[string]api.Check{"shards": dirCheck(cfg.Pipeline.CleanDir)}
	if db != nil {
		checks["database"] = db.Ping
	}
	api.NewHealthHandler(checks).Register(router)

	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	return router, cleanup, nil
}

// dirCheck reports whether dir exists and is a directory.
func dirCheck(dir string) api.Check {
	return func() error {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
}
