package models

import (
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the textual timestamp format used by raw and cleaned tick files
// and by the Start/End columns of OHLCV output.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// FormatPrice renders a price in shortest round-trip form, always with a
// fractional part: 100 -> "100.0", 99.5 -> "99.5".
func FormatPrice(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Tick represents a single trade observation from a shard file.
//
// Column order in tick files:
//  1. Timestamp
//  2. Price
//  3. Size
type Tick struct {
	Timestamp time.Time
	Price     float64
	Size      int64
}

// ShardFile identifies one per-minute tick file by its calendar date and
// minute-of-session code. It is a reference only; nothing here opens the file.
type ShardFile struct {
	Date       time.Time
	MinuteCode int
	Path       string
}
