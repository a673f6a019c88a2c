package billing

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.uber.org/zap"
)

// StripeAdapter wraps the Stripe calls used by checkout and the billing portal
type StripeAdapter struct {
	config *StripeConfig
	api    *client.API
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter. Nil backends use the default HTTP backends.
func NewStripeAdapter(config *StripeConfig, backends *stripe.Backends, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StripeAdapter{
		config: config,
		api:    client.New(config.SecretKey, backends),
		logger: logger,
	}, nil
}

// Config returns the adapter configuration
func (a *StripeAdapter) Config() *StripeConfig {
	return a.config
}

// CreateCustomer creates a new customer in Stripe
func (a *StripeAdapter) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CreateCustomerOutput, error) {
	a.logger.Debug("Creating Stripe customer",
		zap.String("account_id", input.AccountID.String()))

	params := &stripe.CustomerParams{}
	params.Context = ctx
	if input.Email != "" {
		params.Email = stripe.String(input.Email)
	}
	if input.Name != "" {
		params.Name = stripe.String(input.Name)
	}
	params.Metadata = map[string]string{
		MetadataAccountID: input.AccountID.String(),
	}
	maps.Copy(params.Metadata, input.Metadata)

	cust, err := a.api.Customers.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe customer",
			zap.String("account_id", input.AccountID.String()),
			zap.Error(err))
		return nil, MapError(err)
	}

	a.logger.Info("Created Stripe customer",
		zap.String("account_id", input.AccountID.String()),
		zap.String("customer_id", cust.ID))

	return &CreateCustomerOutput{CustomerID: cust.ID, Email: cust.Email}, nil
}

// CreateCheckoutSession opens a hosted checkout for a subscription
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, input CreateCheckoutSessionInput) (*CreateCheckoutSessionOutput, error) {
	a.logger.Debug("Creating Stripe checkout session",
		zap.String("account_id", input.AccountID.String()),
		zap.String("price_id", input.PriceID))

	metadata := map[string]string{
		MetadataAccountID: input.AccountID.String(),
		MetadataTier:      input.Tier,
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(input.CustomerID),
		ClientReferenceID: stripe.String(input.AccountID.String()),
		SuccessURL:        stripe.String(a.config.SuccessURL),
		CancelURL:         stripe.String(a.config.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(input.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	params.Metadata = metadata

	sess, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("account_id", input.AccountID.String()),
			zap.Error(err))
		return nil, MapError(err)
	}

	a.logger.Info("Created Stripe checkout session",
		zap.String("account_id", input.AccountID.String()),
		zap.String("session_id", sess.ID))

	return &CreateCheckoutSessionOutput{SessionID: sess.ID, URL: sess.URL}, nil
}

// CreatePortalSession opens the hosted billing portal for a customer
func (a *StripeAdapter) CreatePortalSession(ctx context.Context, customerID string) (*CreatePortalSessionOutput, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(a.config.PortalReturnURL),
	}
	params.Context = ctx

	sess, err := a.api.BillingPortalSessions.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe billing portal session",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, MapError(err)
	}

	return &CreatePortalSessionOutput{SessionID: sess.ID, URL: sess.URL}, nil
}

// MapError converts a Stripe API error into a domain error.
// The vendor message stays in the logs.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return shared.ErrVendor.WithMessage("payment provider timed out")
	}

	var serr *stripe.Error
	if !errors.As(err, &serr) {
		return fmt.Errorf("%w: %v", shared.ErrVendor, err)
	}

	switch {
	case serr.Type == stripe.ErrorTypeCard || serr.HTTPStatusCode == http.StatusPaymentRequired:
		return shared.ErrPaymentRequired.WithMessage("payment was declined")
	case serr.HTTPStatusCode == http.StatusUnauthorized:
		return shared.ErrUnauthorized.WithMessage("payment provider rejected the API key")
	case serr.HTTPStatusCode == http.StatusForbidden:
		return shared.ErrForbidden.WithMessage("payment provider denied access")
	case serr.HTTPStatusCode == http.StatusTooManyRequests:
		return shared.ErrRateLimited.WithMessage("payment provider rate limit reached")
	case serr.HTTPStatusCode == http.StatusNotFound:
		return shared.ErrNotFound.WithMessage("payment resource not found")
	case serr.Type == stripe.ErrorTypeInvalidRequest:
		return shared.ErrInvalidInput.WithMessage("payment request was rejected")
	default:
		return shared.ErrVendor.WithMessage("payment provider error")
	}
}
