package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySlidingWindowLimiter(t *testing.T) {
	ctx := context.Background()
	start := time.UnixMilli(60_000 * 1000) // aligned to a window boundary

	t.Run("allows up to limit then rejects", func(t *testing.T) {
		now := start
		l := NewMemorySlidingWindowLimiter(3, time.Minute)
		l.now = func() time.Time { return now }

		for want := 2; want >= 0; want-- {
			res, err := l.Limit(ctx, "ip:1")
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, want, res.Remaining)
			assert.Equal(t, 3, res.Limit)
		}

		res, err := l.Limit(ctx, "ip:1")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, 0, res.Remaining)
		assert.Equal(t, start.Add(time.Minute), res.Reset)
	})

	t.Run("identifiers are independent", func(t *testing.T) {
		l := NewMemorySlidingWindowLimiter(1, time.Minute)
		l.now = func() time.Time { return start }

		res, _ := l.Limit(ctx, "a")
		assert.True(t, res.Success)
		res, _ = l.Limit(ctx, "a")
		assert.False(t, res.Success)
		res, _ = l.Limit(ctx, "b")
		assert.True(t, res.Success)
	})

	t.Run("previous window is weighted by overlap", func(t *testing.T) {
		now := start
		l := NewMemorySlidingWindowLimiter(10, time.Minute)
		l.now = func() time.Time { return now }

		for i := 0; i < 10; i++ {
			res, _ := l.Limit(ctx, "acct")
			require.True(t, res.Success)
		}

		// A quarter into the next window 75% of the previous 10 still count.
		now = start.Add(time.Minute + 15*time.Second)
		for i := 0; i < 3; i++ {
			res, _ := l.Limit(ctx, "acct")
			assert.True(t, res.Success, "request %d", i)
		}
		res, _ := l.Limit(ctx, "acct")
		assert.False(t, res.Success)

		// Two windows later the old counts no longer matter.
		now = start.Add(2*time.Minute + 59*time.Second)
		res, _ = l.Limit(ctx, "acct")
		assert.True(t, res.Success)
	})

	t.Run("old windows are pruned", func(t *testing.T) {
		now := start
		l := NewMemorySlidingWindowLimiter(5, time.Minute)
		l.now = func() time.Time { return now }

		for i := 0; i < 5; i++ {
			now = start.Add(time.Duration(i) * time.Minute)
			_, _ = l.Limit(ctx, "k")
		}
		assert.LessOrEqual(t, len(l.counters["k"]), 2)
	})

	t.Run("idle identifiers are evicted", func(t *testing.T) {
		now := start
		l := NewMemorySlidingWindowLimiter(5, time.Minute)
		l.now = func() time.Time { return now }

		for i := 0; i < 10_000; i++ {
			_, _ = l.Limit(ctx, fmt.Sprintf("ip:%d", i))
		}
		assert.Equal(t, 10_000, l.Len())

		// one window later the previous window still counts
		now = start.Add(time.Minute)
		_, _ = l.Limit(ctx, "ip:new")
		assert.Equal(t, 10_001, l.Len())

		now = start.Add(24 * time.Hour)
		res, err := l.Limit(ctx, "ip:late")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 1, l.Len())
	})

	t.Run("sub-millisecond window does not panic", func(t *testing.T) {
		l := NewMemorySlidingWindowLimiter(2, 500*time.Microsecond)
		assert.Equal(t, MinWindow, l.window)
		assert.NotPanics(t, func() {
			res, err := l.Limit(ctx, "k")
			require.NoError(t, err)
			assert.True(t, res.Success)
		})
	})
}
