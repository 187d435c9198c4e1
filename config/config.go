package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV:
//
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=tickpulse
//	INPUT_DIR=./data/raw
//	CLEAN_DIR=./data/clean
//	WORKERS=0
//	BASELINE_POLICY=first
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings
	Pipeline PipelineConfig // Cleaning and bar generation settings
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Enabled turns persistence on (PERSIST_BARS, off by default); when false no
// connection is opened, runs are not stored and the cleaning log is not written.
type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// PipelineConfig controls where shard files live and how they are processed.
//
// Fields:
//   - InputDir:       raw shard files read by the cleaner.
//   - CleanDir:       cleaned shard files, written by the cleaner and read by the generator.
//   - Workers:        worker pool size; 0 means twice the CPU count.
//   - ShardPrefix:    shard file name prefix (e.g. "ctg_tick").
//   - ShardExt:       shard file extension, dot included.
//   - SessionOpen:    trading session open, HH:MM.
//   - SessionClose:   trading session close, HH:MM.
//   - BaselinePolicy: "first" or "latest".
//   - OutputFormat:   bar file format; empty picks it from the output extension.
type PipelineConfig struct {
	InputDir       string
	CleanDir       string
	Workers        int
	ShardPrefix    string
	ShardExt       string
	SessionOpen    string
	SessionClose   string
	BaselinePolicy string
	OutputFormat   string
}

// DSN builds the lib/pq connection URL from the individual fields.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// AppConfig is the globally accessible configuration instance, populated by LoadConfig.
var AppConfig Config

// LoadConfig initializes the global AppConfig from defaults, an optional .env
// file and the environment (in increasing precedence), then validates it.
// Missing or invalid values terminate the process.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("PERSIST_BARS", false)
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "tickpulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("INPUT_DIR", "./data/raw")
	viper.SetDefault("CLEAN_DIR", "./data/clean")
	viper.SetDefault("WORKERS", 0)
	viper.SetDefault("SHARD_PREFIX", "ctg_tick")
	viper.SetDefault("SHARD_EXT", ".csv")
	viper.SetDefault("SESSION_OPEN", "09:30")
	viper.SetDefault("SESSION_CLOSE", "21:00")
	viper.SetDefault("BASELINE_POLICY", "first")
	viper.SetDefault("OUTPUT_FORMAT", "")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Postgres: PostgresConfig{
			Enabled:  viper.GetBool("PERSIST_BARS"),
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Pipeline: PipelineConfig{
			InputDir:       viper.GetString("INPUT_DIR"),
			CleanDir:       viper.GetString("CLEAN_DIR"),
			Workers:        viper.GetInt("WORKERS"),
			ShardPrefix:    viper.GetString("SHARD_PREFIX"),
			ShardExt:       viper.GetString("SHARD_EXT"),
			SessionOpen:    viper.GetString("SESSION_OPEN"),
			SessionClose:   viper.GetString("SESSION_CLOSE"),
			BaselinePolicy: strings.ToLower(viper.GetString("BASELINE_POLICY")),
			OutputFormat:   strings.ToLower(viper.GetString("OUTPUT_FORMAT")),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig()
}

// problems lists every missing or invalid setting of c.
func (c Config) problems() []string {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if c.Postgres.Enabled {
		if c.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if c.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if c.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	}

	p := c.Pipeline
	if p.InputDir == "" {
		missing = append(missing, "INPUT_DIR")
	}
	if p.CleanDir == "" {
		missing = append(missing, "CLEAN_DIR")
	}
	if p.Workers < 0 {
		missing = append(missing, "WORKERS (must be >= 0)")
	}
	if p.ShardPrefix == "" {
		missing = append(missing, "SHARD_PREFIX")
	}
	if !strings.HasPrefix(p.ShardExt, ".") {
		missing = append(missing, "SHARD_EXT (must start with '.')")
	}
	if p.SessionOpen == "" {
		missing = append(missing, "SESSION_OPEN")
	}
	if p.SessionClose == "" {
		missing = append(missing, "SESSION_CLOSE")
	}
	switch p.BaselinePolicy {
	case "first", "latest":
	default:
		missing = append(missing, "BASELINE_POLICY (first|latest)")
	}
	switch p.OutputFormat {
	case "", "csv", "json", "parquet":
	default:
		missing = append(missing, "OUTPUT_FORMAT (csv|json|parquet)")
	}

	return missing
}

// validateConfig terminates the application if any required variable is
// missing or invalid.
func validateConfig() {
	if missing := AppConfig.problems(); len(missing) > 0 {
		log.Fatalf("❌ Missing or invalid environment variables: %v\n", missing)
	}
}
