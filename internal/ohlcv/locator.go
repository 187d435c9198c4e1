package ohlcv

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

const (
	// DefaultShardPrefix is the leading segment of shard file names.
	DefaultShardPrefix = "ctg_tick"
	// DefaultShardExtension is the extension shard files must end with.
	DefaultShardExtension = ".csv"

	shardDateLayout = "20060102"
)

// Locator maps a time window to the shard files whose names place them in it.
// File names follow "<prefix>_<YYYYMMDD>_<MMMM>_*<ext>", MMMM being the
// zero-padded minute code inside Session.
type Locator struct {
	dir     string
	session Session
	pattern *regexp.Regexp
}

// NewLocator returns a Locator over dir. Empty prefix/ext fall back to the defaults.
func NewLocator(dir, prefix, ext string, session Session) *Locator {
	if prefix == "" {
		prefix = DefaultShardPrefix
	}
	if ext == "" {
		ext = DefaultShardExtension
	}
	return &Locator{
		dir:     dir,
		session: session,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `_(\d{8})_(\d{4})_.*` + regexp.QuoteMeta(ext) + `$`),
	}
}

type shardKey struct {
	date string
	code int
}

// Locate returns every shard file covering [start, end], ordered by date,
// minute code and name. An empty result is not an error here; the caller
// decides what no data means.
//
// For each calendar date in [start.date, end.date] the window is clipped to
// the session; days whose clipped window is empty are skipped, otherwise every
// code from the clipped start's minute to the clipped end's minute (clamped to
// 1..MaxMinuteCode) is collected.
func (l *Locator) Locate(start, end time.Time) ([]models.ShardFile, error) {
	if err := ValidateWindow(start, end); err != nil {
		return nil, err
	}

	index, err := l.index()
	if err != nil {
		return nil, err
	}

	maxCode := l.session.MaxMinuteCode()
	var out []models.ShardFile

	last := truncateToDate(end)
	for day := truncateToDate(start); !day.After(last); day = day.AddDate(0, 0, 1) {
		open, close := l.session.Bounds(day)
		effStart := maxTime(start, open)
		effEnd := minTime(end, close)
		if !effStart.Before(effEnd) {
			continue
		}

		from := clamp(l.session.MinuteCode(effStart), 1, maxCode)
		to := clamp(l.session.MinuteCode(effEnd), 1, maxCode)
		date := day.Format(shardDateLayout)
		for code := from; code <= to; code++ {
			out = append(out, index[shardKey{date: date, code: code}]...)
		}
	}

	return out, nil
}

// index lists the directory once and groups matching files by (date, code).
func (l *Locator) index() (map[shardKey][]models.ShardFile, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list shard dir %s: %w", l.dir, err)
	}

	index := make(map[shardKey][]models.ShardFile)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := l.pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		d, err := time.Parse(shardDateLayout, m[1])
		if err != nil {
			continue
		}
		code, _ := strconv.Atoi(m[2])
		key := shardKey{date: m[1], code: code}
		index[key] = append(index[key], models.ShardFile{
			Date:       d,
			MinuteCode: code,
			Path:       filepath.Join(l.dir, e.Name()),
		})
	}
	for _, files := range index {
		sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	}
	return index, nil
}

// Paths extracts the file paths of shards, keeping their order.
func Paths(shards []models.ShardFile) []string {
	out := make([]string, len(shards))
	for i, s := range shards {
		out[i] = s.Path
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
