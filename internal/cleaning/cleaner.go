package cleaning

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

const (
	// magnitudeFactor bounds a price to (baseline/5, baseline*5).
	magnitudeFactor = 5.0
	// priceFloor rejects any price below it regardless of the baseline.
	priceFloor = 100.0
)

// BaselinePolicy selects how the reference price for the magnitude check evolves.
type BaselinePolicy int

const (
	// BaselineFirst fixes the baseline to the first parsed price of the file
	// and never moves it.
	BaselineFirst BaselinePolicy = iota
	// BaselineLatest starts like BaselineFirst but moves the baseline to every
	// accepted price.
	BaselineLatest
)

// String implements fmt.Stringer.
func (p BaselinePolicy) String() string {
	if p == BaselineLatest {
		return "latest"
	}
	return "first"
}

// ParseBaselinePolicy maps "first" (or "") and "latest" to a policy.
func ParseBaselinePolicy(s string) (BaselinePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return BaselineFirst, nil
	case "latest":
		return BaselineLatest, nil
	default:
		return BaselineFirst, fmt.Errorf("unknown baseline policy %q", s)
	}
}

// RecordReader yields raw records one at a time; *csv.Reader satisfies it.
type RecordReader interface {
	Read() ([]string, error)
}

// cleanState is the fold state for one file. It is created per Clean call
// and never shared between files or workers.
type cleanState struct {
	policy      BaselinePolicy
	baseline    float64
	hasBaseline bool
	seen        map[int64]struct{}
}

// Clean reads every record from r and returns the accepted ticks in file order.
//
// Rules, applied in order (the first rejection wins):
//  1. any empty field → drop
//  2. unparsable timestamp/price/size → drop; the first parsed row sets the baseline
//  3. timestamp already accepted → drop
//  4. negative price → absolute value
//  5. price >= 5*baseline, price <= baseline/5 or price < 100 → drop
//  6. negative size → drop
//
// A *csv.ParseError counts as a malformed row. Any other read error aborts
// the file and is returned with the ticks accepted so far.
func Clean(r RecordReader, policy BaselinePolicy) ([]models.Tick, models.CleanStats, error) {
	st := &cleanState{policy: policy, seen: make(map[int64]struct{})}
	var stats models.CleanStats
	var out []models.Tick

	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.Rows++
				stats.Malformed++
				continue
			}
			return out, stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}

		stats.Rows++
		if tick, ok := st.apply(rec, &stats); ok {
			out = append(out, tick)
			stats.Accepted++
		}
	}

	return out, stats, nil
}

// apply runs the rule chain on one record.
func (st *cleanState) apply(rec []string, stats *models.CleanStats) (models.Tick, bool) {
	tick, err := ParseRecord(rec)
	switch {
	case errors.Is(err, ErrEmptyField):
		stats.EmptyField++
		return tick, false
	case err != nil:
		stats.Malformed++
		return tick, false
	}

	if !st.hasBaseline {
		st.baseline = math.Abs(tick.Price)
		st.hasBaseline = true
	}

	key := tick.Timestamp.UnixNano()
	if _, dup := st.seen[key]; dup {
		stats.Duplicate++
		return tick, false
	}

	if tick.Price < 0 {
		tick.Price = -tick.Price
		stats.SignCorrected++
	}

	if implausible(st.baseline, tick.Price) {
		stats.Magnitude++
		return tick, false
	}

	if tick.Size < 0 {
		stats.NegativeSize++
		return tick, false
	}

	st.seen[key] = struct{}{}
	if st.policy == BaselineLatest {
		st.baseline = tick.Price
	}
	return tick, true
}

// implausible reports whether price is out of range relative to baseline.
func implausible(baseline, price float64) bool {
	return price >= baseline*magnitudeFactor ||
		price <= baseline/magnitudeFactor ||
		price < priceFloor
}
