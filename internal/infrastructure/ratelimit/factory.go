package ratelimit

import (
	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// New returns the Redis sliding-window limiter when client is non-nil,
// otherwise the in-memory one.
func New(cfg config.RateLimitConfig, client *redis.Client, logger *zap.Logger) Limiter {
	if client != nil {
		logger.Info("Using Redis sliding-window rate limiter",
			zap.Int("requests", cfg.Requests),
			zap.Duration("window", cfg.Window),
		)
		return NewSlidingWindowLimiter(client, cfg.Requests, cfg.Window, cfg.KeyPrefix)
	}
	logger.Warn("Using in-memory rate limiter; limits are per instance",
		zap.Int("requests", cfg.Requests),
		zap.Duration("window", cfg.Window),
	)
	return NewMemorySlidingWindowLimiter(cfg.Requests, cfg.Window)
}
