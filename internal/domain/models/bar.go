package models

import "time"

// Bar represents one OHLCV summary for the half-open interval [Start, End).
//
// Fields:
//   - Start/End: interval bounds; a tick at End belongs to the next bar.
//   - Open/Close: price of the first and last tick in time order.
//   - High/Low: price extrema inside the interval.
//   - Volume: sum of tick sizes inside the interval.
//
// swagger:model Bar
type Bar struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Run describes one persisted aggregation request.
type Run struct {
	ID        string
	Start     time.Time
	End       time.Time
	Interval  time.Duration
	BarCount  int
	TickCount int
	CreatedAt time.Time
}
