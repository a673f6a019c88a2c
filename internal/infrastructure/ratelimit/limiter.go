// Package ratelimit provides sliding-window request limiting backed by Redis
// or process memory, plus a keyed token bucket for message flood control.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one Limit call
type Result struct {
	Success   bool
	Limit     int
	Remaining int
	Reset     time.Time // end of the current window
}

// Limiter decides whether identifier may make another request
type Limiter interface {
	Limit(ctx context.Context, identifier string) (Result, error)
}

// MinWindow is the smallest window the limiters work with; windows are
// counted in whole milliseconds.
const MinWindow = time.Millisecond

// window splits now into the index of the fixed window it falls in and the
// fraction of that window already elapsed. Sizes below MinWindow count as MinWindow.
func window(now time.Time, size time.Duration) (index int64, elapsed float64) {
	ms := now.UnixMilli()
	w := max(size.Milliseconds(), 1)
	return ms / w, float64(ms%w) / float64(w)
}

// estimate weights the previous window by the part of it still inside the sliding window
func estimate(current, previous int64, elapsed float64) int64 {
	return current + int64((1-elapsed)*float64(previous))
}
