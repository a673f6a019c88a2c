// Package storage stores shared fragment artifacts in object storage.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned when a key does not exist
var ErrObjectNotFound = errors.New("storage: object not found")

// errEmptyKey is returned for operations without a storage key
var errEmptyKey = errors.New("storage key is required")

// MaxLinkExpiration is the longest validity a presigned S3 URL may have
const MaxLinkExpiration = 7 * 24 * time.Hour

// ObjectStore puts and fetches objects by key
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// URL returns a link a browser can use to read the object
	URL(ctx context.Context, key string) (string, error)
}
