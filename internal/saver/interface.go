// Package saver writes OHLCV bars to flat files. The format is picked by
// name or by the output file's extension.
package saver

import (
	"path/filepath"
	"strings"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

// BarSaver persists a complete, time-ordered set of bars to path.
type BarSaver interface {
	Save(bars []models.Bar, path string) error
	Extension() string
}

// New returns the saver for format (csv, json, parquet), or nil if unsupported.
func New(format string) BarSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}

// ForPath picks the saver from format if set, otherwise from the extension
// of path. Unknown extensions fall back to CSV.
func ForPath(path, format string) BarSaver {
	if format != "" {
		return New(format)
	}
	if s := New(strings.TrimPrefix(filepath.Ext(path), ".")); s != nil {
		return s
	}
	return CSVSaver{}
}
