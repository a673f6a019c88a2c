// Package identity models the accounts created through OAuth sign-in.
package identity

import (
	"context"
	"strings"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Provider is an OAuth identity provider
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGoogle Provider = "google"
)

// IsValid reports whether p is supported
func (p Provider) IsValid() bool {
	return p == ProviderGitHub || p == ProviderGoogle
}

// Account is a signed-in user
type Account struct {
	shared.BaseEntity
	Email            string
	Name             string
	AvatarURL        string
	Provider         Provider
	ProviderUserID   string
	StripeCustomerID string
}

// Profile is what an identity provider tells us about the user
type Profile struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
}

// NewAccount creates an account from a provider profile
func NewAccount(provider Provider, p Profile) (*Account, error) {
	if !provider.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("unsupported identity provider")
	}
	if strings.TrimSpace(p.ProviderUserID) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("provider user id is required")
	}
	a := &Account{
		BaseEntity:     shared.NewBaseEntity(),
		Provider:       provider,
		ProviderUserID: p.ProviderUserID,
	}
	a.UpdateProfile(p)
	return a, nil
}

// UpdateProfile refreshes the profile fields, keeping old values the provider omitted
func (a *Account) UpdateProfile(p Profile) {
	if email := strings.ToLower(strings.TrimSpace(p.Email)); email != "" {
		a.Email = email
	}
	if p.Name != "" {
		a.Name = p.Name
	}
	if p.AvatarURL != "" {
		a.AvatarURL = p.AvatarURL
	}
	a.Touch()
}

// SetStripeCustomer links the account to a Stripe customer
func (a *Account) SetStripeCustomer(customerID string) {
	a.StripeCustomerID = customerID
	a.Touch()
}

// AccountRepository persists accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByProvider(ctx context.Context, provider Provider, providerUserID string) (*Account, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*Account, error)
	Save(ctx context.Context, account *Account) error
}
