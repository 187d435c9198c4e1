package dto

import (
	"github.com/guttosm/tickpulse/internal/domain/models"
)

// OHLCVRequest is the body of POST /api/v1/ohlcv.
type OHLCVRequest struct {
	Start    string `json:"start" binding:"required" example:"2024-01-02 09:30:00"`
	End      string `json:"end" binding:"required" example:"2024-01-02 10:30:00"`
	Interval string `json:"interval" binding:"required" example:"1m"`
	Persist  bool   `json:"persist"`
}

// BarResponse is one OHLCV bar with timestamps in the tick layout.
type BarResponse struct {
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// OHLCVResponse is returned by both the generate and stored-run endpoints.
type OHLCVResponse struct {
	RunID       string        `json:"run_id,omitempty"`
	Files       int           `json:"files"`
	Ticks       int           `json:"ticks"`
	FailedFiles []string      `json:"failed_files,omitempty"`
	Bars        []BarResponse `json:"bars"`
}

// NewBarResponses converts model bars for the wire.
func NewBarResponses(bars []models.Bar) []BarResponse {
	out := make([]BarResponse, 0, len(bars))
	for _, b := range bars {
		out = append(out, BarResponse{
			Start:  b.Start.Format(models.TimestampLayout),
			End:    b.End.Format(models.TimestampLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return out
}
