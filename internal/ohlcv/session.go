package ohlcv

import (
	"fmt"
	"time"
)

// Session is the daily trading window shard files are cut from. Minute code 1
// is the minute starting at Open; the last code is the minute ending at Close.
type Session struct {
	Open  time.Duration // offset from midnight
	Close time.Duration // offset from midnight
}

// DefaultSession is 09:30-21:00, i.e. minute codes 1..690.
var DefaultSession = Session{
	Open:  9*time.Hour + 30*time.Minute,
	Close: 21 * time.Hour,
}

// ParseSession builds a Session from "HH:MM" open/close strings.
func ParseSession(open, close string) (Session, error) {
	o, err := parseClock(open)
	if err != nil {
		return Session{}, err
	}
	c, err := parseClock(close)
	if err != nil {
		return Session{}, err
	}
	if c <= o {
		return Session{}, fmt.Errorf("session close %s must be after open %s", close, open)
	}
	return Session{Open: o, Close: c}, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid session clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// MaxMinuteCode is the number of whole minutes in the session.
func (s Session) MaxMinuteCode() int {
	return int((s.Close - s.Open) / time.Minute)
}

// Bounds returns the session window on the calendar date of day.
func (s Session) Bounds(day time.Time) (open, close time.Time) {
	d := truncateToDate(day)
	return d.Add(s.Open), d.Add(s.Close)
}

// MinuteCode returns the unclamped code of the minute containing t: 1 for the
// first session minute, 0 or less before the open, above MaxMinuteCode at or
// after the close. Seconds are ignored.
func (s Session) MinuteCode(t time.Time) int {
	sinceMidnight := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	return int((sinceMidnight-s.Open)/time.Minute) + 1
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
