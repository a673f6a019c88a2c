package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appforge/backend/internal/infrastructure/cache"
)

// TokenBlacklist invalidates tokens before they expire (logout, refresh rotation)
type TokenBlacklist interface {
	// Revoke blacklists a token's JTI; ttl should be its remaining lifetime
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether a JTI was blacklisted
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// DefaultBlacklistPrefix namespaces revoked JTIs in the KV store
const DefaultBlacklistPrefix = "auth:revoked:"

// KVTokenBlacklist stores revoked JTIs in a KVStore with their remaining TTL
type KVTokenBlacklist struct {
	kv     cache.KVStore
	prefix string
}

// NewKVTokenBlacklist creates a blacklist; an empty prefix uses DefaultBlacklistPrefix
func NewKVTokenBlacklist(kv cache.KVStore, prefix string) *KVTokenBlacklist {
	if prefix == "" {
		prefix = DefaultBlacklistPrefix
	}
	return &KVTokenBlacklist{kv: kv, prefix: prefix}
}

// Revoke blacklists jti. Already-expired tokens need no entry.
func (b *KVTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := b.kv.Set(ctx, b.prefix+jti, "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was blacklisted
func (b *KVTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := b.kv.Get(ctx, b.prefix+jti)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return true, nil
}

var _ TokenBlacklist = (*KVTokenBlacklist)(nil)
