package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockKV struct {
	mock.Mock
}

func (m *mockKV) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockKV) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockKV) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestKVIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("first delivery wins, redelivery is detected", func(t *testing.T) {
		kv, _ := newTestMemoryKV(t)
		store := NewKVIdempotencyStore(kv, "")

		processed, err := store.IsProcessed(ctx, "evt_1")
		require.NoError(t, err)
		assert.False(t, processed)

		isNew, err := store.MarkProcessed(ctx, "evt_1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "evt_1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)

		processed, err = store.IsProcessed(ctx, "evt_1")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("marker expires", func(t *testing.T) {
		kv, clock := newTestMemoryKV(t)
		store := NewKVIdempotencyStore(kv, "stripe:")

		_, err := store.MarkProcessed(ctx, "evt_2", time.Hour)
		require.NoError(t, err)
		clock.Advance(time.Hour)

		processed, err := store.IsProcessed(ctx, "evt_2")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("uses prefixed keys", func(t *testing.T) {
		kv := new(mockKV)
		kv.On("SetNX", ctx, "stripe:evt_3", "1", 72*time.Hour).Return(true, nil)

		store := NewKVIdempotencyStore(kv, "stripe:")
		isNew, err := store.MarkProcessed(ctx, "evt_3", 72*time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
		kv.AssertExpectations(t)
	})

	t.Run("backend errors are wrapped", func(t *testing.T) {
		kv := new(mockKV)
		boom := errors.New("connection reset")
		kv.On("SetNX", ctx, DefaultIdempotencyPrefix+"evt_4", "1", time.Hour).Return(false, boom)
		kv.On("Get", ctx, DefaultIdempotencyPrefix+"evt_4").Return("", boom)

		store := NewKVIdempotencyStore(kv, "")
		_, err := store.MarkProcessed(ctx, "evt_4", time.Hour)
		assert.ErrorIs(t, err, boom)
		_, err = store.IsProcessed(ctx, "evt_4")
		assert.ErrorIs(t, err, boom)
	})
}
