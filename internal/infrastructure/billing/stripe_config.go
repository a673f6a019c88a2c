package billing

import (
	"fmt"
	"strings"

	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/infrastructure/config"
)

// StripeConfig holds configuration for the Stripe integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// WebhookSecret verifies webhook signatures
	WebhookSecret string

	// IsTestMode requires a test key when true and a live key otherwise
	IsTestMode bool

	// Prices maps paid tiers to Stripe price IDs
	Prices billing.PriceIDs

	SuccessURL string
	CancelURL  string

	// PortalReturnURL is where the billing portal sends the customer back
	PortalReturnURL string
}

// NewStripeConfig builds the adapter configuration from application config.
// Production runs in live mode, every other environment in test mode.
func NewStripeConfig(app config.AppConfig, cfg config.StripeConfig) *StripeConfig {
	return &StripeConfig{
		SecretKey:     cfg.SecretKey,
		WebhookSecret: cfg.WebhookSecret,
		IsTestMode:    !app.IsProduction(),
		Prices: billing.PriceIDs{
			ProMonthly:  cfg.ProMonthlyPrice,
			ProYearly:   cfg.ProYearlyPrice,
			TeamMonthly: cfg.TeamMonthlyPrice,
			TeamYearly:  cfg.TeamYearlyPrice,
		},
		SuccessURL:      cfg.SuccessURL,
		CancelURL:       cfg.CancelURL,
		PortalReturnURL: cfg.PortalReturnURL,
	}
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}

	if c.IsTestMode {
		if strings.HasPrefix(c.SecretKey, "sk_live") {
			return fmt.Errorf("stripe: test mode enabled but secret key is not a test key")
		}
	} else if !strings.HasPrefix(c.SecretKey, "sk_live") && !strings.HasPrefix(c.SecretKey, "rk_live") {
		return fmt.Errorf("stripe: live mode enabled but secret key is not a live key")
	}

	if c.SuccessURL == "" || c.CancelURL == "" {
		return fmt.Errorf("stripe: success and cancel URLs are required")
	}

	return nil
}
