// Package shortlink creates and resolves short URLs kept in the key-value store.
package shortlink

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/domain/shortlink"
	"github.com/appforge/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

const maxAttempts = 5

// ErrCodeSpaceExhausted is returned when every attempt collided with an existing code
var ErrCodeSpaceExhausted = shared.ErrInternal.WithMessage("could not allocate a short link code")

// Service shortens and resolves URLs
type Service struct {
	kv         cache.KVStore
	prefix     string
	baseURL    string
	defaultTTL time.Duration
	maxTTL     time.Duration
	random     io.Reader
	now        func() time.Time
	logger     *zap.Logger
}

// ServiceConfig contains the dependencies of Service
type ServiceConfig struct {
	KV         cache.KVStore
	KeyPrefix  string
	BaseURL    string // public origin, short URLs are BaseURL + "/s/" + code
	DefaultTTL time.Duration
	MaxTTL     time.Duration
	Random     io.Reader // code entropy, crypto/rand when nil
	Logger     *zap.Logger
}

// NewService creates a shortlink service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "shortlink:"
	}
	return &Service{
		kv:         cfg.KV,
		prefix:     prefix,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		defaultTTL: cfg.DefaultTTL,
		maxTTL:     cfg.MaxTTL,
		random:     cfg.Random,
		now:        time.Now,
		logger:     logger,
	}
}

// CreateResult is a stored short link
type CreateResult struct {
	Code      string    `json:"code"`
	ShortURL  string    `json:"short_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create stores target under a fresh code. A zero ttl uses the default;
// ttl above the maximum is rejected.
func (s *Service) Create(ctx context.Context, target string, ttl time.Duration) (*CreateResult, error) {
	normalized, err := shortlink.ValidateTarget(target)
	if err != nil {
		return nil, err
	}
	if ttl < 0 {
		return nil, shared.ErrInvalidInput.WithMessage("ttl must be positive")
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if s.maxTTL > 0 && ttl > s.maxTTL {
		return nil, shared.ErrInvalidInput.WithMessage("ttl exceeds the maximum of " + s.maxTTL.String())
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		code, err := shortlink.NewCode(s.random)
		if err != nil {
			return nil, err
		}
		ok, err := s.kv.SetNX(ctx, s.prefix+code, normalized, ttl)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Debug("Short link code collision", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}
		return &CreateResult{
			Code:      code,
			ShortURL:  s.ShortURL(code),
			ExpiresAt: s.now().Add(ttl).UTC(),
		}, nil
	}
	s.logger.Warn("Short link allocation failed", zap.Int("attempts", maxAttempts))
	return nil, ErrCodeSpaceExhausted
}

// Resolve returns the target stored under code
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	if !shortlink.ValidCode(code) {
		return "", shared.ErrNotFound.WithMessage("short link not found")
	}
	target, err := s.kv.Get(ctx, s.prefix+code)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return "", shared.ErrNotFound.WithMessage("short link not found")
		}
		return "", err
	}
	return target, nil
}

// ShortURL builds the public URL for code
func (s *Service) ShortURL(code string) string {
	return s.baseURL + "/s/" + code
}
