package customization

import (
	"testing"
	"time"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIntegrity(t *testing.T) {
	ids := make(map[string]bool)
	for _, s := range Suggestions() {
		assert.False(t, ids[s.ID], "duplicate suggestion %s", s.ID)
		ids[s.ID] = true
		if s.UpsellID != "" {
			_, ok := LookupUpsell(s.UpsellID)
			assert.True(t, ok, "suggestion %s references unknown upsell %s", s.ID, s.UpsellID)
		}
	}
	for _, u := range Upsells() {
		assert.True(t, u.MonthlyPrice.IsPositive(), u.ID)
	}
}

func TestMatchUpsells(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"How do I connect my own DOMAIN?", []string{"custom-domain"}},
		{"I want to sell shoes and see visitor stats", []string{"analytics", "ecommerce"}},
		{"make the button blue", nil},
		{"", nil},
		{"domains", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var got []string
			for _, u := range MatchUpsells(tt.text) {
				got = append(got, u.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWebsite_OfferAndApply(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	all := Suggestions()
	w := &Website{WebsiteID: "site-1"}

	w.Offer("bakery", all[:2], now)
	require.Len(t, w.Suggestions, 2)
	assert.Equal(t, "bakery", w.Industry)

	applied, err := w.Apply(all[1].ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, applied.Applied)
	require.NotNil(t, applied.AppliedAt)

	again, err := w.Apply(all[1].ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), *again.AppliedAt)

	// New offer drops pending suggestions but keeps the applied one once.
	w.Offer("", []Suggestion{all[1], all[5]}, now.Add(2*time.Hour))
	require.Len(t, w.Suggestions, 2)
	assert.Equal(t, all[1].ID, w.Suggestions[0].ID)
	assert.True(t, w.Suggestions[0].Applied)
	assert.Equal(t, all[5].ID, w.Suggestions[1].ID)
	assert.Equal(t, "bakery", w.Industry)

	_, err = w.Apply("nope", now)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
