package ohlcv

import (
	"sort"
	"time"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

// Aggregate buckets a time-sorted timeline into bars of length interval over
// [start, end). The last bucket is truncated at end. Each bucket is the
// half-open range [current, next): a tick exactly on a boundary belongs to the
// bucket starting there. Buckets without ticks produce no bar.
//
// ticks must be sorted ascending by timestamp (see Merge); interval must be positive.
func Aggregate(ticks []models.Tick, start, end time.Time, interval time.Duration) []models.Bar {
	if interval <= 0 || !start.Before(end) {
		return nil
	}

	lowerBound := func(t time.Time) int {
		return sort.Search(len(ticks), func(i int) bool {
			return !ticks[i].Timestamp.Before(t)
		})
	}

	var bars []models.Bar
	for current := start; current.Before(end); {
		next := current.Add(interval)
		if next.After(end) {
			next = end
		}

		left, right := lowerBound(current), lowerBound(next)
		if left < right {
			bars = append(bars, summarize(ticks[left:right], current, next))
		}
		current = next
	}
	return bars
}

// summarize builds one bar from a non-empty, time-ordered slice.
func summarize(slice []models.Tick, start, end time.Time) models.Bar {
	b := models.Bar{
		Start: start,
		End:   end,
		Open:  slice[0].Price,
		High:  slice[0].Price,
		Low:   slice[0].Price,
		Close: slice[len(slice)-1].Price,
	}
	for _, t := range slice {
		b.High = max(b.High, t.Price)
		b.Low = min(b.Low, t.Price)
		b.Volume += t.Size
	}
	return b
}
