package billing

import (
	"fmt"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Tier identifies a pricing tier
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
	TierTeam Tier = "team"
)

// IsValid reports whether t is a known tier
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierPro, TierTeam:
		return true
	}
	return false
}

// Interval is a billing period
type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// PriceIDs maps paid tiers to Stripe price IDs
type PriceIDs struct {
	ProMonthly  string
	ProYearly   string
	TeamMonthly string
	TeamYearly  string
}

// PricingTier is one column of the pricing page
type PricingTier struct {
	ID                 Tier            `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	MonthlyPrice       decimal.Decimal `json:"monthly_price"`
	YearlyPrice        decimal.Decimal `json:"yearly_price"`
	Currency           string          `json:"currency"`
	Features           []string        `json:"features"`
	GenerationsPerDay  int             `json:"generations_per_day"`
	Highlighted        bool            `json:"highlighted"`
	StripePriceMonthly string          `json:"stripe_price_monthly,omitempty"`
	StripePriceYearly  string          `json:"stripe_price_yearly,omitempty"`
}

// PriceID returns the Stripe price for interval
func (p PricingTier) PriceID(interval Interval) (string, error) {
	if p.ID == TierFree {
		return "", shared.ErrInvalidInput.WithMessage("the free tier cannot be purchased")
	}
	var id string
	switch interval {
	case IntervalMonth:
		id = p.StripePriceMonthly
	case IntervalYear:
		id = p.StripePriceYearly
	default:
		return "", shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown billing interval %q", interval))
	}
	if id == "" {
		return "", shared.ErrInvalidState.WithMessage(fmt.Sprintf("no price configured for %s/%s", p.ID, interval))
	}
	return id, nil
}

// YearlySavings is what a year costs on monthly billing minus the yearly price
func (p PricingTier) YearlySavings() decimal.Decimal {
	return p.MonthlyPrice.Mul(decimal.NewFromInt(12)).Sub(p.YearlyPrice)
}

// Catalog holds the pricing tiers
type Catalog struct {
	tiers []PricingTier
}

// NewCatalog builds the tiers with the configured Stripe price IDs
func NewCatalog(prices PriceIDs) *Catalog {
	return &Catalog{tiers: []PricingTier{
		{
			ID:                TierFree,
			Name:              "Free",
			Description:       "Try the generator on small projects.",
			MonthlyPrice:      decimal.Zero,
			YearlyPrice:       decimal.Zero,
			Currency:          "usd",
			GenerationsPerDay: 10,
			Features: []string{
				"10 generations per day",
				"Live sandbox previews",
				"Community templates",
			},
		},
		{
			ID:                 TierPro,
			Name:               "Pro",
			Description:        "For makers shipping real apps.",
			MonthlyPrice:       decimal.RequireFromString("20.00"),
			YearlyPrice:        decimal.RequireFromString("192.00"),
			Currency:           "usd",
			GenerationsPerDay:  200,
			Highlighted:        true,
			StripePriceMonthly: prices.ProMonthly,
			StripePriceYearly:  prices.ProYearly,
			Features: []string{
				"200 generations per day",
				"All models including Claude and GPT-4o",
				"Shareable links",
				"Custom domain",
			},
		},
		{
			ID:                 TierTeam,
			Name:               "Team",
			Description:        "Collaborate on apps with your team.",
			MonthlyPrice:       decimal.RequireFromString("50.00"),
			YearlyPrice:        decimal.RequireFromString("480.00"),
			Currency:           "usd",
			GenerationsPerDay:  1000,
			StripePriceMonthly: prices.TeamMonthly,
			StripePriceYearly:  prices.TeamYearly,
			Features: []string{
				"1000 generations per day",
				"Realtime collaboration rooms",
				"Priority support",
				"Everything in Pro",
			},
		},
	}}
}

// Tiers returns a copy of every tier
func (c *Catalog) Tiers() []PricingTier {
	out := make([]PricingTier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// Tier finds a tier by id
func (c *Catalog) Tier(id Tier) (PricingTier, error) {
	for _, t := range c.tiers {
		if t.ID == id {
			return t, nil
		}
	}
	return PricingTier{}, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown tier %q", id))
}

// TierForPrice maps a Stripe price ID back to its tier
func (c *Catalog) TierForPrice(priceID string) (Tier, bool) {
	if priceID == "" {
		return "", false
	}
	for _, t := range c.tiers {
		if t.StripePriceMonthly == priceID || t.StripePriceYearly == priceID {
			return t.ID, true
		}
	}
	return "", false
}
