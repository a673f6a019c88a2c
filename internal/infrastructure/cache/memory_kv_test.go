package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemoryKV(t *testing.T) (*MemoryKV, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	kv := NewMemoryKV()
	kv.now = clock.Now
	t.Cleanup(func() { _ = kv.Close() })
	return kv, clock
}

func TestMemoryKV_GetSetDelete(t *testing.T) {
	kv, _ := newTestMemoryKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "k", "v1", 0))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	require.NoError(t, kv.Set(ctx, "k", "v2", time.Minute))
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	require.NoError(t, kv.Delete(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryKV_Expiry(t *testing.T) {
	kv, clock := newTestMemoryKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "short", "x", time.Second))
	require.NoError(t, kv.Set(ctx, "forever", "y", 0))

	clock.Advance(time.Second)

	_, err := kv.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	got, err := kv.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "y", got)

	assert.Equal(t, 2, kv.Len())
	kv.sweep()
	assert.Equal(t, 1, kv.Len())
}

func TestMemoryKV_SetNX(t *testing.T) {
	kv, clock := newTestMemoryKV(t)
	ctx := context.Background()

	ok, err := kv.SetNX(ctx, "code", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = kv.SetNX(ctx, "code", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := kv.Get(ctx, "code")
	assert.Equal(t, "first", got)

	clock.Advance(time.Minute)
	ok, err = kv.SetNX(ctx, "code", "third", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired key can be claimed again")
}

func TestMemoryKV_SetNXSingleWinner(t *testing.T) {
	kv, _ := newTestMemoryKV(t)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := kv.SetNX(ctx, "race", "v", time.Minute); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryKV_CloseIdempotent(t *testing.T) {
	kv := NewMemoryKV()
	assert.NoError(t, kv.Close())
	assert.NoError(t, kv.Close())
}
