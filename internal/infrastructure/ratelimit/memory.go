package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemorySlidingWindowLimiter has the same semantics as SlidingWindowLimiter
// but keeps counters in process memory. Identifiers idle for two windows are
// swept at most once per window.
type MemorySlidingWindowLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	counters  map[string]map[int64]int64
	lastSweep int64
	now       func() time.Time
}

// NewMemorySlidingWindowLimiter allows limit requests per window for each identifier
func NewMemorySlidingWindowLimiter(limit int, window time.Duration) *MemorySlidingWindowLimiter {
	return &MemorySlidingWindowLimiter{
		limit:    limit,
		window:   max(window, MinWindow),
		counters: make(map[string]map[int64]int64),
		now:      time.Now,
	}
}

// Limit implements Limiter
func (l *MemorySlidingWindowLimiter) Limit(_ context.Context, identifier string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	index, elapsed := window(l.now(), l.window)
	reset := time.UnixMilli((index + 1) * l.window.Milliseconds())
	if index > l.lastSweep {
		l.sweep(index)
	}

	windows, ok := l.counters[identifier]
	if !ok {
		windows = make(map[int64]int64, 2)
		l.counters[identifier] = windows
	}

	weighted := estimate(windows[index], windows[index-1], elapsed)
	if weighted >= int64(l.limit) {
		return Result{Success: false, Limit: l.limit, Remaining: 0, Reset: reset}, nil
	}

	windows[index]++
	remaining := int64(l.limit) - estimate(windows[index], windows[index-1], elapsed)
	return Result{Success: true, Limit: l.limit, Remaining: int(remaining), Reset: reset}, nil
}

// sweep drops windows older than the previous one and identifiers left empty
func (l *MemorySlidingWindowLimiter) sweep(index int64) {
	for id, windows := range l.counters {
		for i := range windows {
			if i < index-1 {
				delete(windows, i)
			}
		}
		if len(windows) == 0 {
			delete(l.counters, id)
		}
	}
	l.lastSweep = index
}

// Len returns the number of identifiers currently tracked
func (l *MemorySlidingWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

var _ Limiter = (*MemorySlidingWindowLimiter)(nil)
