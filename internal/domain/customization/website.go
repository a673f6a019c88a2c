package customization

import (
	"time"

	"github.com/appforge/backend/internal/domain/shared"
)

// AppliedSuggestion is a suggestion the owner accepted
type AppliedSuggestion struct {
	Suggestion
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

// Website is the customization state kept for one website
type Website struct {
	WebsiteID   string              `json:"website_id"`
	Industry    string              `json:"industry,omitempty"`
	Suggestions []AppliedSuggestion `json:"suggestions"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Offer replaces the pending suggestions, keeping those already applied
func (w *Website) Offer(industry string, picked []Suggestion, now time.Time) {
	kept := w.Suggestions[:0]
	have := make(map[string]struct{})
	for _, s := range w.Suggestions {
		if s.Applied {
			kept = append(kept, s)
			have[s.ID] = struct{}{}
		}
	}
	for _, s := range picked {
		if _, dup := have[s.ID]; dup {
			continue
		}
		kept = append(kept, AppliedSuggestion{Suggestion: s})
	}
	w.Suggestions = kept
	if industry != "" {
		w.Industry = industry
	}
	w.UpdatedAt = now
}

// Apply marks a suggestion as applied; applying twice is a no-op
func (w *Website) Apply(suggestionID string, now time.Time) (*AppliedSuggestion, error) {
	for i := range w.Suggestions {
		s := &w.Suggestions[i]
		if s.ID != suggestionID {
			continue
		}
		if !s.Applied {
			s.Applied = true
			s.AppliedAt = &now
			w.UpdatedAt = now
		}
		return s, nil
	}
	return nil, shared.ErrNotFound.WithMessage("suggestion not offered for this website")
}
