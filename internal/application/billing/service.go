package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/domain/identity"
	"github.com/appforge/backend/internal/domain/shared"
	infra "github.com/appforge/backend/internal/infrastructure/billing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentGateway is the subset of the Stripe adapter used by checkout and the portal
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, input infra.CreateCustomerInput) (*infra.CreateCustomerOutput, error)
	CreateCheckoutSession(ctx context.Context, input infra.CreateCheckoutSessionInput) (*infra.CreateCheckoutSessionOutput, error)
	CreatePortalSession(ctx context.Context, customerID string) (*infra.CreatePortalSessionOutput, error)
}

// ErrBillingDisabled is returned when Stripe is not configured
var ErrBillingDisabled = shared.ErrInvalidState.WithMessage("billing is not configured")

// Service creates checkout and portal sessions and reports subscriptions
type Service struct {
	catalog  *billing.Catalog
	accounts identity.AccountRepository
	subs     billing.SubscriptionRepository
	gateway  PaymentGateway
	logger   *zap.Logger
}

// ServiceConfig contains the dependencies of Service. A nil Gateway disables paid operations.
type ServiceConfig struct {
	Catalog       *billing.Catalog
	Accounts      identity.AccountRepository
	Subscriptions billing.SubscriptionRepository
	Gateway       PaymentGateway
	Logger        *zap.Logger
}

// NewService creates a billing service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:  cfg.Catalog,
		accounts: cfg.Accounts,
		subs:     cfg.Subscriptions,
		gateway:  cfg.Gateway,
		logger:   logger,
	}
}

// Tiers lists the pricing tiers
func (s *Service) Tiers() []billing.PricingTier {
	return s.catalog.Tiers()
}

// CheckoutInput selects what to buy
type CheckoutInput struct {
	Tier     billing.Tier
	Interval billing.Interval
}

// CheckoutResult is the hosted checkout to redirect to
type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// Checkout ensures the account has a Stripe customer and opens a subscription checkout
func (s *Service) Checkout(ctx context.Context, accountID uuid.UUID, in CheckoutInput) (*CheckoutResult, error) {
	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}

	tier, err := s.catalog.Tier(in.Tier)
	if err != nil {
		return nil, err
	}
	priceID, err := tier.PriceID(in.Interval)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	customerID, err := s.ensureCustomer(ctx, account)
	if err != nil {
		return nil, err
	}

	out, err := s.gateway.CreateCheckoutSession(ctx, infra.CreateCheckoutSessionInput{
		AccountID:  account.ID,
		CustomerID: customerID,
		PriceID:    priceID,
		Tier:       string(tier.ID),
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{SessionID: out.SessionID, URL: out.URL}, nil
}

func (s *Service) ensureCustomer(ctx context.Context, account *identity.Account) (string, error) {
	if account.StripeCustomerID != "" {
		return account.StripeCustomerID, nil
	}

	out, err := s.gateway.CreateCustomer(ctx, infra.CreateCustomerInput{
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.Name,
	})
	if err != nil {
		return "", err
	}

	account.SetStripeCustomer(out.CustomerID)
	if err := s.accounts.Save(ctx, account); err != nil {
		return "", fmt.Errorf("failed to save stripe customer: %w", err)
	}
	return out.CustomerID, nil
}

// PortalResult is the billing portal to redirect to
type PortalResult struct {
	URL string `json:"url"`
}

// Portal opens the billing portal; accounts that never checked out get ErrNotFound
func (s *Service) Portal(ctx context.Context, accountID uuid.UUID) (*PortalResult, error) {
	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.StripeCustomerID == "" {
		return nil, shared.ErrNotFound.WithMessage("no billing account yet")
	}
	out, err := s.gateway.CreatePortalSession(ctx, account.StripeCustomerID)
	if err != nil {
		return nil, err
	}
	return &PortalResult{URL: out.URL}, nil
}

// SubscriptionView is the subscription as shown on the dashboard
type SubscriptionView struct {
	Tier              billing.Tier               `json:"tier"`
	EffectiveTier     billing.Tier               `json:"effective_tier"`
	Status            billing.SubscriptionStatus `json:"status"`
	CurrentPeriodEnd  *time.Time                 `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool                       `json:"cancel_at_period_end"`
}

// Subscription returns the account's subscription, free when none is stored
func (s *Service) Subscription(ctx context.Context, accountID uuid.UUID) (*SubscriptionView, error) {
	sub, err := s.subs.FindByAccountID(ctx, accountID)
	if errors.Is(err, shared.ErrNotFound) {
		sub = billing.NewFreeSubscription(accountID)
	} else if err != nil {
		return nil, err
	}
	return &SubscriptionView{
		Tier:              sub.Tier,
		EffectiveTier:     sub.EffectiveTier(),
		Status:            sub.Status,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}, nil
}
