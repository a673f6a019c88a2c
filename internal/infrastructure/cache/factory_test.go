package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func failingDial(context.Context, config.RedisConfig) (*redis.Client, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestFactory_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("redis disabled uses memory", func(t *testing.T) {
		f := NewFactory(config.RedisConfig{Enabled: false})
		backend, err := f.Create(ctx)
		require.NoError(t, err)
		defer backend.Close()

		assert.IsType(t, &MemoryKV{}, backend.KV)
		assert.Nil(t, backend.Client)
	})

	t.Run("unreachable redis falls back with a warning", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		f := NewFactory(config.RedisConfig{Enabled: true, Host: "nowhere", Port: 6379}, WithLogger(zap.New(core)))
		f.dial = failingDial

		backend, err := f.Create(ctx)
		require.NoError(t, err)
		defer backend.Close()

		assert.IsType(t, &MemoryKV{}, backend.KV)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewFactory(config.RedisConfig{Enabled: true}, WithInMemoryFallback(false))
		f.dial = failingDial

		_, err := f.Create(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})
}
