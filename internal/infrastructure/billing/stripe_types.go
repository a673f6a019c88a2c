package billing

import (
	"github.com/google/uuid"
)

// CreateCustomerInput contains input for creating a Stripe customer
type CreateCustomerInput struct {
	AccountID uuid.UUID
	Email     string
	Name      string
	Metadata  map[string]string
}

// CreateCustomerOutput contains the created customer
type CreateCustomerOutput struct {
	CustomerID string
	Email      string
}

// CreateCheckoutSessionInput contains input for a subscription checkout
type CreateCheckoutSessionInput struct {
	AccountID  uuid.UUID
	CustomerID string
	PriceID    string
	Tier       string
}

// CreateCheckoutSessionOutput is the hosted checkout page to redirect to
type CreateCheckoutSessionOutput struct {
	SessionID string
	URL       string
}

// CreatePortalSessionOutput is the hosted billing portal page
type CreatePortalSessionOutput struct {
	SessionID string
	URL       string
}

// Metadata keys attached to checkout sessions and subscriptions
const (
	MetadataAccountID = "account_id"
	MetadataTier      = "tier"
)
