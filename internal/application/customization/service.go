// Package customization serves canned website customization suggestions and
// remembers, per process, which ones each website was offered.
package customization

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/appforge/backend/internal/domain/customization"
	"github.com/appforge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultCount is the number of suggestions picked when none is requested
	DefaultCount = 3
	// MaxCount bounds a single request
	MaxCount = 10
)

// Service picks random suggestions and keeps a process-local map of websites.
// The map is lost on restart.
type Service struct {
	mu       sync.Mutex
	websites map[string]*customization.Website
	rng      *rand.Rand
	now      func() time.Time
	logger   *zap.Logger
}

// ServiceConfig contains the dependencies of Service
type ServiceConfig struct {
	// Source seeds suggestion picking; time-seeded when nil
	Source rand.Source
	Logger *zap.Logger
}

// NewService creates a customization service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	src := cfg.Source
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Service{
		websites: make(map[string]*customization.Website),
		rng:      rand.New(src),
		now:      time.Now,
		logger:   logger,
	}
}

// SuggestInput asks for suggestions for one website
type SuggestInput struct {
	WebsiteID string
	Industry  string
	Count     int
}

// Suggest picks Count distinct suggestions at random, records them for the
// website and returns the updated website state.
func (s *Service) Suggest(_ context.Context, in SuggestInput) (*customization.Website, error) {
	websiteID := strings.TrimSpace(in.WebsiteID)
	if websiteID == "" {
		return nil, shared.ErrInvalidInput.WithMessage("website_id is required")
	}
	count := in.Count
	if count == 0 {
		count = DefaultCount
	}
	if count < 0 || count > MaxCount {
		return nil, shared.ErrInvalidInput.WithMessage("count must be between 1 and 10")
	}

	all := customization.Suggestions()
	if count > len(all) {
		count = len(all)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	picked := all[:count]

	w, ok := s.websites[websiteID]
	if !ok {
		w = &customization.Website{WebsiteID: websiteID}
		s.websites[websiteID] = w
	}
	w.Offer(strings.TrimSpace(in.Industry), picked, s.now().UTC())

	s.logger.Debug("Customization suggestions offered",
		zap.String("website_id", websiteID),
		zap.Int("count", count))
	return cloneWebsite(w), nil
}

// Get returns the stored state of a website
func (s *Service) Get(_ context.Context, websiteID string) (*customization.Website, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.websites[websiteID]
	if !ok {
		return nil, shared.ErrNotFound.WithMessage("no customizations for this website")
	}
	return cloneWebsite(w), nil
}

// Apply marks an offered suggestion as applied
func (s *Service) Apply(_ context.Context, websiteID, suggestionID string) (*customization.AppliedSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.websites[websiteID]
	if !ok {
		return nil, shared.ErrNotFound.WithMessage("no customizations for this website")
	}
	applied, err := w.Apply(suggestionID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	out := *applied
	return &out, nil
}

// Upsells lists the paid add-ons
func (s *Service) Upsells() []customization.UpsellFeature {
	return customization.Upsells()
}

// Len returns the number of websites held
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.websites)
}

func cloneWebsite(w *customization.Website) *customization.Website {
	out := *w
	out.Suggestions = make([]customization.AppliedSuggestion, len(w.Suggestions))
	copy(out.Suggestions, w.Suggestions)
	return &out
}
