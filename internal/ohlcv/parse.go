package ohlcv

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/tickpulse/internal/cleaning"
)

// intervalToken matches one "<count><unit>" piece of an interval string.
var intervalToken = regexp.MustCompile(`(\d+)([dhmsDHMS])`)

var unitSeconds = map[byte]int64{
	'd': 86400,
	'h': 3600,
	'm': 60,
	's': 1,
}

// ParseInterval parses compound durations such as "5s", "15m", "1h30m" or "1D".
// Units are case-insensitive and summed. The whole string must consist of
// tokens (blanks between them are allowed); a result <= 0 is rejected.
func ParseInterval(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	matches := intervalToken.FindAllStringSubmatchIndex(trimmed, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: invalid interval format %q", ErrInvalidRequest, s)
	}

	var total int64
	pos := 0
	for _, m := range matches {
		if strings.TrimSpace(trimmed[pos:m[0]]) != "" {
			return 0, fmt.Errorf("%w: invalid interval format %q", ErrInvalidRequest, s)
		}
		pos = m[1]

		n, err := strconv.ParseInt(trimmed[m[2]:m[3]], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: interval count %q: %v", ErrInvalidRequest, trimmed[m[2]:m[3]], err)
		}
		unit, ok := unitSeconds[strings.ToLower(trimmed[m[4]:m[5]])[0]]
		if !ok || unit <= 0 {
			return 0, fmt.Errorf("%w: invalid interval unit in %q", ErrInvalidRequest, s)
		}
		if n > (math.MaxInt64/int64(time.Second)-total)/unit {
			return 0, fmt.Errorf("%w: interval %q overflows", ErrInvalidRequest, s)
		}
		total += n * unit
	}
	if strings.TrimSpace(trimmed[pos:]) != "" {
		return 0, fmt.Errorf("%w: invalid interval format %q", ErrInvalidRequest, s)
	}

	if total <= 0 {
		return 0, fmt.Errorf("%w: interval must be a positive duration", ErrInvalidRequest)
	}
	return time.Duration(total) * time.Second, nil
}

// ParseDateTime parses a window boundary in "YYYY-MM-DD HH:MM:SS" or
// "YYYY-MM-DD HH:MM:SS.ffffff" form, with the same rules as tick timestamps.
// Times carry no zone and are read as UTC.
func ParseDateTime(s string) (time.Time, error) {
	t, err := cleaning.ParseTimestamp(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid datetime format %q", ErrInvalidRequest, s)
	}
	return t, nil
}

// ValidateWindow rejects windows whose end is not after their start.
func ValidateWindow(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start time must be before end time", ErrInvalidRequest)
	}
	return nil
}
