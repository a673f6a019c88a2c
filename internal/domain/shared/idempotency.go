package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL covers Stripe's three day retry window
const DefaultIdempotencyTTL = 72 * time.Hour

// IdempotencyStore remembers delivered webhook event IDs for a while.
// MarkProcessed must be atomic: of two concurrent calls for the same ID,
// exactly one reports true.
type IdempotencyStore interface {
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
}
