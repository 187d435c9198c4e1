package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestErrorResponse_Error(t *testing.T) {
	cases := []struct {
		name string
		resp ErrorResponse
		want string
	}{
		{name: "message only", resp: ErrorResponse{Message: "rate limit exceeded"}, want: "rate limit exceeded"},
		{name: "with details", resp: ErrorResponse{Message: "invalid request", ErrorDetails: "bad interval"}, want: "invalid request: bad interval"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.resp.Error(); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestNewErrorResponse_NilErrorOmitsDetails(t *testing.T) {
	e := NewErrorResponse("rate limit exceeded", nil)
	if e.ErrorDetails != "" {
		t.Fatalf("unexpected details %q", e.ErrorDetails)
	}
	if e.Timestamp.IsZero() || time.Since(e.Timestamp) > time.Second {
		t.Fatalf("timestamp not set")
	}

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("error key must be omitted without details: %s", raw)
	}
	if body["message"] != "rate limit exceeded" || body["timestamp"] == nil {
		t.Fatalf("unexpected body %s", raw)
	}
}

func TestNewErrorResponse_WrapsDetails(t *testing.T) {
	inner := errors.New("no shard file matches the window")
	e := NewErrorResponse("no data found", inner)
	if e.ErrorDetails != inner.Error() || e.Message != "no data found" {
		t.Fatalf("unexpected %+v", e)
	}
}
