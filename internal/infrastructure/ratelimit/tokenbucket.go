package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// TokenBucket keeps one x/time/rate limiter per key
type TokenBucket struct {
	mu       sync.Mutex
	perSec   rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewTokenBucket refills perSec tokens per second up to burst for each key
func NewTokenBucket(perSec float64, burst int) *TokenBucket {
	return &TokenBucket{
		perSec:   rate.Limit(perSec),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow consumes one token for key
func (b *TokenBucket) Allow(key string) bool {
	b.mu.Lock()
	l, ok := b.limiters[key]
	if !ok {
		l = rate.NewLimiter(b.perSec, b.burst)
		b.limiters[key] = l
	}
	b.mu.Unlock()
	return l.Allow()
}

// Forget drops the state for key
func (b *TokenBucket) Forget(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.limiters, key)
}

// Len returns the number of tracked keys
func (b *TokenBucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.limiters)
}
