package billing

import (
	"testing"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return NewCatalog(PriceIDs{
		ProMonthly:  "price_pro_m",
		ProYearly:   "price_pro_y",
		TeamMonthly: "price_team_m",
	})
}

func TestCatalog_Tiers(t *testing.T) {
	c := testCatalog()
	tiers := c.Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, []Tier{TierFree, TierPro, TierTeam}, []Tier{tiers[0].ID, tiers[1].ID, tiers[2].ID})
	assert.True(t, tiers[0].MonthlyPrice.IsZero())
	assert.Equal(t, "20", tiers[1].MonthlyPrice.String())
	assert.Equal(t, "48", tiers[1].YearlySavings().String())
}

func TestPricingTier_PriceID(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		name     string
		tier     Tier
		interval Interval
		want     string
		wantErr  *shared.DomainError
	}{
		{"pro monthly", TierPro, IntervalMonth, "price_pro_m", nil},
		{"pro yearly", TierPro, IntervalYear, "price_pro_y", nil},
		{"team monthly", TierTeam, IntervalMonth, "price_team_m", nil},
		{"team yearly not configured", TierTeam, IntervalYear, "", shared.ErrInvalidState},
		{"free cannot be bought", TierFree, IntervalMonth, "", shared.ErrInvalidInput},
		{"bad interval", TierPro, "week", "", shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Tier(tt.tier)
			require.NoError(t, err)
			got, err := p.PriceID(tt.interval)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := c.Tier("enterprise")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCatalog_TierForPrice(t *testing.T) {
	c := testCatalog()

	tier, ok := c.TierForPrice("price_pro_y")
	assert.True(t, ok)
	assert.Equal(t, TierPro, tier)

	tier, ok = c.TierForPrice("price_team_m")
	assert.True(t, ok)
	assert.Equal(t, TierTeam, tier)

	_, ok = c.TierForPrice("")
	assert.False(t, ok, "empty price must not match the unconfigured team yearly slot")

	_, ok = c.TierForPrice("price_other")
	assert.False(t, ok)
}
