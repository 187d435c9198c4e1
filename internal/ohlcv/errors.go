package ohlcv

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks any request the caller can fix and retry.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoShards means no shard file matched the requested window.
	ErrNoShards = fmt.Errorf("%w: no shard files found in specified range", ErrInvalidRequest)
	// ErrNoTicks means the matched shard files held no tick inside the window.
	ErrNoTicks = fmt.Errorf("%w: no tick data found in specified range", ErrInvalidRequest)
)
