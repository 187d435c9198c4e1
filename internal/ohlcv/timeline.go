package ohlcv

import (
	"slices"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

// Merge concatenates batches in the order given and stable-sorts the result
// by timestamp. Ticks with equal timestamps keep (batch order, row order), so
// the timeline is deterministic for a given shard ordering regardless of
// which worker finished first.
func Merge(batches [][]models.Tick) []models.Tick {
	n := 0
	for _, b := range batches {
		n += len(b)
	}

	out := make([]models.Tick, 0, n)
	for _, b := range batches {
		out = append(out, b...)
	}

	slices.SortStableFunc(out, func(a, b models.Tick) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}
