package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/domain/identity"
	"github.com/appforge/backend/internal/domain/shared"
	infra "github.com/appforge/backend/internal/infrastructure/billing"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// ErrInvalidSignature is returned for a missing or forged Stripe-Signature header
var ErrInvalidSignature = shared.ErrUnauthorized.WithMessage("webhook signature verification failed")

// ErrWebhookNotConfigured is returned when no signing secret is set. Without
// one the HMAC key is empty and anyone could sign an event.
var ErrWebhookNotConfigured = shared.ErrUnauthorized.WithMessage("webhook endpoint is not configured")

// StripeWebhookService handles Stripe webhook events
type StripeWebhookService struct {
	webhookSecret string
	catalog       *billing.Catalog
	accounts      identity.AccountRepository
	subs          billing.SubscriptionRepository
	idempotency   shared.IdempotencyStore
	logger        *zap.Logger
}

// StripeWebhookServiceConfig contains configuration for StripeWebhookService
type StripeWebhookServiceConfig struct {
	WebhookSecret string
	Catalog       *billing.Catalog
	Accounts      identity.AccountRepository
	Subscriptions billing.SubscriptionRepository
	Idempotency   shared.IdempotencyStore
	Logger        *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg StripeWebhookServiceConfig) *StripeWebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeWebhookService{
		webhookSecret: cfg.WebhookSecret,
		catalog:       cfg.Catalog,
		accounts:      cfg.Accounts,
		subs:          cfg.Subscriptions,
		idempotency:   cfg.Idempotency,
		logger:        logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Enabled reports whether a signing secret is configured
func (s *StripeWebhookService) Enabled() bool {
	return s.webhookSecret != ""
}

// ProcessWebhook verifies and dispatches a Stripe webhook event.
// Only signature failures are returned as errors; handler failures are
// reported in the result so the caller can still acknowledge the delivery.
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if !s.Enabled() {
		s.logger.Warn("Rejected webhook: no signing secret configured")
		return nil, ErrWebhookNotConfigured
	}
	if signature == "" {
		return nil, ErrInvalidSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.logger.Warn("Failed to verify webhook signature", zap.Error(err))
		return nil, ErrInvalidSignature
	}

	logger := s.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	if s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, event.ID, shared.DefaultIdempotencyTTL)
		if err != nil {
			logger.Warn("Idempotency check failed, processing anyway", zap.Error(err))
		} else if !fresh {
			logger.Info("Duplicate webhook event ignored")
			result.Duplicate = true
			result.Message = "Event already processed"
			return result, nil
		}
	}

	logger.Info("Processing Stripe webhook event")

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated":
		err = s.handleSubscriptionChanged(ctx, event)
	case "customer.subscription.deleted":
		err = s.handleSubscriptionDeleted(ctx, event)
	case "invoice.paid":
		err = s.handleInvoicePaid(ctx, event)
	case "invoice.payment_failed":
		err = s.handleInvoicePaymentFailed(ctx, event)
	default:
		logger.Debug("Unhandled webhook event type")
		result.Message = "Event type not handled"
	}

	if err != nil {
		logger.Error("Failed to process webhook event", zap.Error(err))
		result.Processed = false
		result.Message = "Event processing failed"
	}

	return result, nil
}

// handleCheckoutCompleted links the Stripe customer and subscription to the account
func (s *StripeWebhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	ref := session.ClientReferenceID
	if ref == "" {
		ref = session.Metadata[infra.MetadataAccountID]
	}
	accountID, err := uuid.Parse(ref)
	if err != nil {
		s.logger.Warn("Checkout session has no account reference, skipping",
			zap.String("session_id", session.ID))
		return nil
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Account not found for checkout session",
			zap.String("account_id", accountID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find account: %w", err)
	}

	if session.Customer != nil && session.Customer.ID != "" && account.StripeCustomerID != session.Customer.ID {
		account.SetStripeCustomer(session.Customer.ID)
		if err := s.accounts.Save(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
	}

	if session.Subscription == nil || session.Subscription.ID == "" {
		return nil
	}

	sub, err := s.subscriptionFor(ctx, account.ID)
	if err != nil {
		return err
	}
	tier := billing.Tier(session.Metadata[infra.MetadataTier])
	sub.Sync(session.Subscription.ID, tier, billing.StatusActive, sub.CurrentPeriodEnd, false)
	if err := s.subs.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.Info("Checkout completed",
		zap.String("account_id", account.ID.String()),
		zap.String("subscription_id", session.Subscription.ID),
		zap.String("tier", string(sub.Tier)))
	return nil
}

// handleSubscriptionChanged handles customer.subscription.created and .updated
func (s *StripeWebhookService) handleSubscriptionChanged(ctx context.Context, event stripe.Event) error {
	var subscription stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	account, err := s.accountForSubscription(ctx, &subscription)
	if err != nil || account == nil {
		return err
	}

	sub, err := s.subscriptionFor(ctx, account.ID)
	if err != nil {
		return err
	}

	status := billing.SubscriptionStatus(subscription.Status)
	if status == billing.StatusCanceled {
		sub.Cancel()
	} else {
		sub.Sync(subscription.ID, s.tierOf(&subscription), status, unixTime(subscription.CurrentPeriodEnd), subscription.CancelAtPeriodEnd)
	}

	if err := s.subs.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.Info("Subscription synced",
		zap.String("account_id", account.ID.String()),
		zap.String("subscription_id", subscription.ID),
		zap.String("status", string(sub.Status)),
		zap.String("tier", string(sub.Tier)))
	return nil
}

// handleSubscriptionDeleted drops the account to the free tier
func (s *StripeWebhookService) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var subscription stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	sub, err := s.subs.FindByStripeSubscriptionID(ctx, subscription.ID)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Subscription not found for deletion",
			zap.String("subscription_id", subscription.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find subscription: %w", err)
	}

	sub.Cancel()
	if err := s.subs.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.Info("Subscription canceled",
		zap.String("account_id", sub.AccountID.String()),
		zap.String("subscription_id", subscription.ID))
	return nil
}

// handleInvoicePaid marks the subscription active for the new period
func (s *StripeWebhookService) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	invoice, sub, err := s.invoiceSubscription(ctx, event)
	if err != nil || sub == nil {
		return err
	}

	sub.MarkPaid(invoicePeriodEnd(invoice))
	if err := s.subs.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.Info("Invoice paid",
		zap.String("account_id", sub.AccountID.String()),
		zap.String("invoice_id", invoice.ID))
	return nil
}

// handleInvoicePaymentFailed marks the subscription past due
func (s *StripeWebhookService) handleInvoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	invoice, sub, err := s.invoiceSubscription(ctx, event)
	if err != nil || sub == nil {
		return err
	}

	sub.MarkPastDue()
	if err := s.subs.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.Warn("Invoice payment failed",
		zap.String("account_id", sub.AccountID.String()),
		zap.String("invoice_id", invoice.ID),
		zap.Int64("attempt_count", invoice.AttemptCount))
	return nil
}

func (s *StripeWebhookService) invoiceSubscription(ctx context.Context, event stripe.Event) (*stripe.Invoice, *billing.Subscription, error) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		s.logger.Debug("Invoice is not for a subscription, skipping",
			zap.String("invoice_id", invoice.ID))
		return &invoice, nil, nil
	}

	sub, err := s.subs.FindByStripeSubscriptionID(ctx, invoice.Subscription.ID)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Subscription not found for invoice",
			zap.String("invoice_id", invoice.ID),
			zap.String("subscription_id", invoice.Subscription.ID))
		return &invoice, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return &invoice, sub, nil
}

// accountForSubscription resolves the owner by Stripe customer, then by metadata.
// A nil account with a nil error means the event should be skipped.
func (s *StripeWebhookService) accountForSubscription(ctx context.Context, subscription *stripe.Subscription) (*identity.Account, error) {
	if subscription.Customer != nil && subscription.Customer.ID != "" {
		account, err := s.accounts.FindByStripeCustomerID(ctx, subscription.Customer.ID)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to find account: %w", err)
		}
	}

	if id, err := uuid.Parse(subscription.Metadata[infra.MetadataAccountID]); err == nil {
		account, err := s.accounts.FindByID(ctx, id)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to find account: %w", err)
		}
	}

	s.logger.Warn("Account not found for subscription, skipping",
		zap.String("subscription_id", subscription.ID))
	return nil, nil
}

func (s *StripeWebhookService) subscriptionFor(ctx context.Context, accountID uuid.UUID) (*billing.Subscription, error) {
	sub, err := s.subs.FindByAccountID(ctx, accountID)
	if errors.Is(err, shared.ErrNotFound) {
		return billing.NewFreeSubscription(accountID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return sub, nil
}

// tierOf prefers the price on the first item over the metadata written at checkout
func (s *StripeWebhookService) tierOf(subscription *stripe.Subscription) billing.Tier {
	if subscription.Items != nil && len(subscription.Items.Data) > 0 {
		if price := subscription.Items.Data[0].Price; price != nil {
			if tier, ok := s.catalog.TierForPrice(price.ID); ok {
				return tier
			}
		}
	}
	return billing.Tier(subscription.Metadata[infra.MetadataTier])
}

func invoicePeriodEnd(invoice *stripe.Invoice) *time.Time {
	if invoice.Lines != nil {
		for _, line := range invoice.Lines.Data {
			if line.Period != nil && line.Period.End > 0 {
				return unixTime(line.Period.End)
			}
		}
	}
	return nil
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
