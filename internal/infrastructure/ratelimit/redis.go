package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindowScript increments the current window counter unless the
// weighted count already reached the limit. Returns the remaining budget or -1.
var slidingWindowScript = redis.NewScript(`
local currentKey = KEYS[1]
local previousKey = KEYS[2]
local limit = tonumber(ARGV[1])
local elapsed = tonumber(ARGV[2])
local windowMs = tonumber(ARGV[3])

local current = tonumber(redis.call("GET", currentKey) or "0")
local previous = tonumber(redis.call("GET", previousKey) or "0")
local weighted = math.floor((1 - elapsed) * previous)

if current + weighted >= limit then
  return -1
end

local updated = redis.call("INCR", currentKey)
if updated == 1 then
  redis.call("PEXPIRE", currentKey, windowMs * 2 + 1000)
end
return limit - (updated + weighted)
`)

// evalFunc runs the limiter script; swapped out in tests
type evalFunc func(ctx context.Context, keys []string, args ...any) (int64, error)

// SlidingWindowLimiter is a Redis-backed sliding-window limiter shared by all instances
type SlidingWindowLimiter struct {
	limit  int
	window time.Duration
	prefix string
	eval   evalFunc
	now    func() time.Time
}

// NewSlidingWindowLimiter allows limit requests per window for each identifier
func NewSlidingWindowLimiter(client redis.Scripter, limit int, window time.Duration, prefix string) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		limit:  limit,
		window: max(window, MinWindow),
		prefix: prefix,
		now:    time.Now,
		eval: func(ctx context.Context, keys []string, args ...any) (int64, error) {
			return slidingWindowScript.Run(ctx, client, keys, args...).Int64()
		},
	}
}

func (l *SlidingWindowLimiter) keys(identifier string, index int64) []string {
	base := l.prefix + ":" + identifier + ":"
	return []string{
		base + strconv.FormatInt(index, 10),
		base + strconv.FormatInt(index-1, 10),
	}
}

// Limit implements Limiter
func (l *SlidingWindowLimiter) Limit(ctx context.Context, identifier string) (Result, error) {
	now := l.now()
	index, elapsed := window(now, l.window)
	reset := time.UnixMilli((index + 1) * l.window.Milliseconds())

	remaining, err := l.eval(ctx, l.keys(identifier, index),
		l.limit, strconv.FormatFloat(elapsed, 'f', 6, 64), l.window.Milliseconds())
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit script: %w", err)
	}

	if remaining < 0 {
		return Result{Success: false, Limit: l.limit, Remaining: 0, Reset: reset}, nil
	}
	return Result{Success: true, Limit: l.limit, Remaining: int(remaining), Reset: reset}, nil
}

var _ Limiter = (*SlidingWindowLimiter)(nil)
