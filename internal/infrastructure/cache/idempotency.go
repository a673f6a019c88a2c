package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appforge/backend/internal/domain/shared"
)

// DefaultIdempotencyPrefix namespaces processed-event markers
const DefaultIdempotencyPrefix = "event:idempotency:"

// KVIdempotencyStore implements shared.IdempotencyStore on any KVStore.
// MarkProcessed is a single SETNX so concurrent deliveries of the same
// event resolve to exactly one winner.
type KVIdempotencyStore struct {
	kv        KVStore
	keyPrefix string
}

// NewKVIdempotencyStore creates an idempotency store; an empty prefix uses DefaultIdempotencyPrefix
func NewKVIdempotencyStore(kv KVStore, keyPrefix string) *KVIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultIdempotencyPrefix
	}
	return &KVIdempotencyStore{kv: kv, keyPrefix: keyPrefix}
}

// MarkProcessed reports true when eventID was not seen before
func (s *KVIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	ok, err := s.kv.SetNX(ctx, s.keyPrefix+eventID, "1", ttl)
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return ok, nil
}

// IsProcessed reports whether eventID has been marked and not expired
func (s *KVIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	_, err := s.kv.Get(ctx, s.keyPrefix+eventID)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check if event is processed: %w", err)
	}
	return true, nil
}

var _ shared.IdempotencyStore = (*KVIdempotencyStore)(nil)
