package shortlink

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg ServiceConfig) (*Service, *cache.MemoryKV) {
	t.Helper()
	kv := cache.NewMemoryKV()
	t.Cleanup(func() { _ = kv.Close() })
	cfg.KV = kv
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://app.example.com/"
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 90 * 24 * time.Hour
	}
	if cfg.MaxTTL == 0 {
		cfg.MaxTTL = 365 * 24 * time.Hour
	}
	svc := NewService(cfg)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, kv
}

func TestCreateAndResolve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, ServiceConfig{})

	res, err := svc.Create(ctx, "https://sbx.example.dev/preview", 0)
	require.NoError(t, err)
	assert.Len(t, res.Code, 7)
	assert.Equal(t, "https://app.example.com/s/"+res.Code, res.ShortURL)
	assert.Equal(t, time.Date(2026, 5, 30, 12, 0, 0, 0, time.UTC), res.ExpiresAt)

	target, err := svc.Resolve(ctx, res.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://sbx.example.dev/preview", target)
}

func TestCreate_TTL(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, ServiceConfig{})

	res, err := svc.Create(ctx, "https://example.com", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC), res.ExpiresAt)

	_, err = svc.Create(ctx, "https://example.com", 400*24*time.Hour)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Create(ctx, "https://example.com", -time.Second)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreate_InvalidTarget(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{})
	_, err := svc.Create(context.Background(), "mailto:a@b.c", 0)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreate_CollisionRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	// constant entropy always yields the same code
	entropy := bytes.Repeat([]byte{1}, 4096)
	svc, kv := newTestService(t, ServiceConfig{Random: bytes.NewReader(entropy)})

	first, err := svc.Create(ctx, "https://one.example.com", 0)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "https://two.example.com", 0)
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)

	stored, err := kv.Get(ctx, "shortlink:"+first.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://one.example.com", stored)
}

func TestResolve_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, ServiceConfig{})

	_, err := svc.Resolve(ctx, "abcdefg")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Resolve(ctx, "../etc")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
