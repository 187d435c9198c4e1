package cleaning

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

// tickHeader is written as the first row of every cleaned file.
var tickHeader = []string{"Timestamp", "Price", "Size"}

// parseLayout accepts both "YYYY-MM-DD HH:MM:SS" and the same with a
// fractional second; time.Parse allows the fraction even if the layout omits it.
const parseLayout = "2006-01-02 15:04:05"

var (
	// ErrEmptyField marks a record with a blank timestamp, price or size.
	ErrEmptyField = errors.New("empty field")
	// ErrMalformed marks a record whose fields cannot be parsed.
	ErrMalformed = errors.New("malformed record")
)

// ParseRecord converts one raw record into a models.Tick. It performs no I/O
// and no plausibility checks; those belong to the cleaner.
//
// Column order:
//
//	0 Timestamp → Tick.Timestamp ("2006-01-02 15:04:05[.ffffff]")
//	1 Price     → Tick.Price (finite float)
//	2 Size      → Tick.Size (int64)
//
// Extra trailing columns are ignored. Fewer than three columns is malformed.
func ParseRecord(rec []string) (models.Tick, error) {
	var t models.Tick

	if len(rec) < 3 {
		return t, fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformed, len(rec))
	}

	ts := strings.TrimSpace(rec[0])
	price := strings.TrimSpace(rec[1])
	size := strings.TrimSpace(rec[2])
	if ts == "" || price == "" || size == "" {
		return t, ErrEmptyField
	}

	parsed, err := ParseTimestamp(ts)
	if err != nil {
		return t, err
	}
	t.Timestamp = parsed

	p, err := strconv.ParseFloat(price, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return t, fmt.Errorf("%w: invalid price %q", ErrMalformed, price)
	}
	t.Price = p

	s, err := strconv.ParseInt(size, 10, 64)
	if err != nil {
		return t, fmt.Errorf("%w: invalid size %q", ErrMalformed, size)
	}
	t.Size = s

	return t, nil
}

// ParseTimestamp parses "YYYY-MM-DD HH:MM:SS" with an optional ".ffffff"
// fraction of one to six digits. A comma separator is rejected.
func ParseTimestamp(s string) (time.Time, error) {
	if strings.ContainsRune(s, ',') {
		return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", ErrMalformed, s)
	}
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > 6 {
		return time.Time{}, fmt.Errorf("%w: timestamp %q has more than 6 fractional digits", ErrMalformed, s)
	}
	t, err := time.Parse(parseLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", ErrMalformed, s)
	}
	return t, nil
}

// formatTick renders a tick as a cleaned-file row.
func formatTick(t models.Tick) []string {
	return []string{
		t.Timestamp.Format(models.TimestampLayout),
		models.FormatPrice(t.Price),
		strconv.FormatInt(t.Size, 10),
	}
}
