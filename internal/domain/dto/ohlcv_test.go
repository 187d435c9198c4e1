package dto

import (
	"testing"
	"time"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

func TestNewBarResponses(t *testing.T) {
	start := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	bars := []models.Bar{{Start: start, End: start.Add(5 * time.Second), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 7}}

	out := NewBarResponses(bars)
	if len(out) != 1 {
		t.Fatalf("len=%d", len(out))
	}
	if out[0].Start != "2024-01-02 09:30:00.000000" || out[0].End != "2024-01-02 09:30:05.000000" {
		t.Fatalf("unexpected timestamps %+v", out[0])
	}
	if out[0].Volume != 7 || out[0].High != 2 {
		t.Fatalf("unexpected values %+v", out[0])
	}

	if got := NewBarResponses(nil); got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}
