package ohlcv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

func at(s string) time.Time {
	t, err := ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

func tick(ts string, price float64, size int64) models.Tick {
	return models.Tick{Timestamp: at(ts), Price: price, Size: size}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func names(shards []models.ShardFile) []string {
	out := make([]string, len(shards))
	for i, s := range shards {
		out[i] = filepath.Base(s.Path)
	}
	return out
}
