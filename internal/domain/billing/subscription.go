package billing

import (
	"context"
	"time"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SubscriptionStatus mirrors Stripe's subscription status
type SubscriptionStatus string

const (
	StatusActive     SubscriptionStatus = "active"
	StatusTrialing   SubscriptionStatus = "trialing"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusIncomplete SubscriptionStatus = "incomplete"
	StatusUnpaid     SubscriptionStatus = "unpaid"
)

// Subscription is the billing state of one account
type Subscription struct {
	shared.BaseEntity
	AccountID            uuid.UUID
	Tier                 Tier
	Status               SubscriptionStatus
	StripeSubscriptionID string
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
}

// NewFreeSubscription returns the implicit subscription of an account that never paid
func NewFreeSubscription(accountID uuid.UUID) *Subscription {
	return &Subscription{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  accountID,
		Tier:       TierFree,
		Status:     StatusActive,
	}
}

// Sync applies the state Stripe reports for the subscription
func (s *Subscription) Sync(stripeID string, tier Tier, status SubscriptionStatus, periodEnd *time.Time, cancelAtPeriodEnd bool) {
	s.StripeSubscriptionID = stripeID
	if tier.IsValid() {
		s.Tier = tier
	}
	s.Status = status
	s.CurrentPeriodEnd = periodEnd
	s.CancelAtPeriodEnd = cancelAtPeriodEnd
	s.Touch()
}

// Cancel drops the account back to the free tier
func (s *Subscription) Cancel() {
	s.Tier = TierFree
	s.Status = StatusCanceled
	s.CancelAtPeriodEnd = false
	s.Touch()
}

// MarkPastDue records a failed renewal payment
func (s *Subscription) MarkPastDue() {
	s.Status = StatusPastDue
	s.Touch()
}

// MarkPaid records a successful invoice, extending the period when known
func (s *Subscription) MarkPaid(periodEnd *time.Time) {
	s.Status = StatusActive
	if periodEnd != nil {
		s.CurrentPeriodEnd = periodEnd
	}
	s.Touch()
}

// EffectiveTier is the tier the account may use right now
func (s *Subscription) EffectiveTier() Tier {
	switch s.Status {
	case StatusActive, StatusTrialing, StatusPastDue:
		return s.Tier
	default:
		return TierFree
	}
}

// SubscriptionRepository persists subscriptions
type SubscriptionRepository interface {
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Subscription, error)
	FindByStripeSubscriptionID(ctx context.Context, stripeID string) (*Subscription, error)
	Save(ctx context.Context, sub *Subscription) error
}
