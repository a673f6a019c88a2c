package cache

import (
	"context"
	"fmt"

	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory builds the KV backend from configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	dial                  func(context.Context, config.RedisConfig) (*redis.Client, error)
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		dial:                  NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Backend is the KV store chosen by the factory. Client is nil when the
// in-memory store is used.
type Backend struct {
	KV     KVStore
	Client *redis.Client
	close  func() error
}

// Close releases the backend's resources
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Create returns a Redis-backed store when Redis is enabled and reachable,
// otherwise an in-memory store if fallback is allowed.
func (f *Factory) Create(ctx context.Context) (*Backend, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory key/value store")
		return f.memory(), nil
	}

	client, err := f.dial(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis key/value store", zap.String("addr", f.redisConfig.Addr()))
		return &Backend{KV: NewRedisKV(client), Client: client, close: client.Close}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory key/value store. "+
		"Short links, rate limits and webhook deduplication will not be shared across instances.",
		zap.Error(err),
	)
	return f.memory(), nil
}

func (f *Factory) memory() *Backend {
	kv := NewMemoryKV()
	return &Backend{KV: kv, close: kv.Close}
}
