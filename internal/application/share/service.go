// Package share publishes fragments so they can be opened from a short link.
package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appforge/backend/internal/application/shortlink"
	"github.com/appforge/backend/internal/domain/fragment"
	"github.com/appforge/backend/internal/domain/shared"
	linkdomain "github.com/appforge/backend/internal/domain/shortlink"
	"github.com/appforge/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const keyPrefix = "fragments/"

// Shortener creates short links
type Shortener interface {
	Create(ctx context.Context, target string, ttl time.Duration) (*shortlink.CreateResult, error)
}

// Service stores shared fragments and links to them
type Service struct {
	store     storage.ObjectStore
	shortener Shortener
	logger    *zap.Logger
}

// ServiceConfig contains the dependencies of Service
type ServiceConfig struct {
	Store     storage.ObjectStore
	Shortener Shortener
	Logger    *zap.Logger
}

// NewService creates a share service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: cfg.Store, shortener: cfg.Shortener, logger: logger}
}

// ShareInput is the fragment to publish. PreviewURL, when set, is what the
// short link points at instead of the stored JSON.
type ShareInput struct {
	Fragment   fragment.Fragment
	PreviewURL string
}

// ShareResult identifies a published fragment
type ShareResult struct {
	ID        string    `json:"id"`
	ShortURL  string    `json:"short_url"`
	ObjectURL string    `json:"object_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SharedFragment is the stored document
type SharedFragment struct {
	ID         string            `json:"id"`
	Fragment   fragment.Fragment `json:"fragment"`
	PreviewURL string            `json:"preview_url,omitempty"`
	SharedAt   time.Time         `json:"shared_at"`
}

// Share stores the fragment under fragments/{id}.json and creates a short link
func (s *Service) Share(ctx context.Context, in ShareInput) (*ShareResult, error) {
	if err := in.Fragment.Validate(); err != nil {
		return nil, err
	}

	preview := strings.TrimSpace(in.PreviewURL)
	if preview != "" {
		var err error
		if preview, err = linkdomain.ValidateTarget(preview); err != nil {
			return nil, err
		}
	}

	id := uuid.New().String()
	doc := SharedFragment{
		ID:         id,
		Fragment:   in.Fragment,
		PreviewURL: preview,
		SharedAt:   time.Now().UTC(),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode shared fragment: %w", err)
	}

	key := objectKey(id)
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		s.logger.Error("Failed to store shared fragment", zap.String("key", key), zap.Error(err))
		return nil, shared.ErrVendor.WithMessage("failed to store shared fragment")
	}
	objectURL, err := s.store.URL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("object url: %w", err)
	}

	target := objectURL
	if doc.PreviewURL != "" {
		target = doc.PreviewURL
	}
	link, err := s.shortener.Create(ctx, target, 0)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fragment shared",
		zap.String("id", id),
		zap.String("template", in.Fragment.Template),
		zap.String("code", link.Code))
	return &ShareResult{
		ID:        id,
		ShortURL:  link.ShortURL,
		ObjectURL: objectURL,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// Get loads a shared fragment by id
func (s *Service) Get(ctx context.Context, id string) (*SharedFragment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shared.ErrNotFound.WithMessage("shared fragment not found")
	}
	body, err := s.store.Get(ctx, objectKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, shared.ErrNotFound.WithMessage("shared fragment not found")
		}
		return nil, err
	}
	var doc SharedFragment
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode shared fragment: %w", err)
	}
	return &doc, nil
}

func objectKey(id string) string {
	return keyPrefix + id + ".json"
}
