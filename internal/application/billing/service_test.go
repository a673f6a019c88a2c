package billing

import (
	"context"
	"testing"

	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/domain/identity"
	"github.com/appforge/backend/internal/domain/shared"
	infra "github.com/appforge/backend/internal/infrastructure/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(gateway PaymentGateway) (*Service, *MockAccountRepository, *MockSubscriptionRepository) {
	accounts := new(MockAccountRepository)
	subs := new(MockSubscriptionRepository)
	svc := NewService(ServiceConfig{
		Catalog:       testCatalog(),
		Accounts:      accounts,
		Subscriptions: subs,
		Gateway:       gateway,
	})
	return svc, accounts, subs
}

func TestService_Checkout_CreatesCustomerOnce(t *testing.T) {
	ctx := context.Background()
	gateway := new(MockGateway)
	svc, accounts, _ := newTestService(gateway)
	account := testAccount()

	accounts.On("FindByID", ctx, account.ID).Return(account, nil)
	gateway.On("CreateCustomer", ctx, mock.MatchedBy(func(in infra.CreateCustomerInput) bool {
		return in.AccountID == account.ID && in.Email == "ada@example.com"
	})).Return(&infra.CreateCustomerOutput{CustomerID: "cus_new"}, nil).Once()
	accounts.On("Save", ctx, mock.MatchedBy(func(a *identity.Account) bool {
		return a.StripeCustomerID == "cus_new"
	})).Return(nil).Once()
	gateway.On("CreateCheckoutSession", ctx, infra.CreateCheckoutSessionInput{
		AccountID:  account.ID,
		CustomerID: "cus_new",
		PriceID:    "price_team_y",
		Tier:       "team",
	}).Return(&infra.CreateCheckoutSessionOutput{SessionID: "cs_1", URL: "https://checkout/cs_1"}, nil).Twice()

	res, err := svc.Checkout(ctx, account.ID, CheckoutInput{Tier: billing.TierTeam, Interval: billing.IntervalYear})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", res.SessionID)
	assert.Equal(t, "https://checkout/cs_1", res.URL)

	_, err = svc.Checkout(ctx, account.ID, CheckoutInput{Tier: billing.TierTeam, Interval: billing.IntervalYear})
	require.NoError(t, err)

	gateway.AssertExpectations(t)
	accounts.AssertExpectations(t)
}

func TestService_Checkout_RejectsInvalidSelection(t *testing.T) {
	svc, _, _ := newTestService(new(MockGateway))
	account := testAccount()

	_, err := svc.Checkout(context.Background(), account.ID, CheckoutInput{Tier: billing.TierFree, Interval: billing.IntervalMonth})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Checkout(context.Background(), account.ID, CheckoutInput{Tier: "gold", Interval: billing.IntervalMonth})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_Disabled(t *testing.T) {
	svc, _, _ := newTestService(nil)
	account := testAccount()

	_, err := svc.Checkout(context.Background(), account.ID, CheckoutInput{Tier: billing.TierPro, Interval: billing.IntervalMonth})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.Portal(context.Background(), account.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestService_Portal(t *testing.T) {
	ctx := context.Background()
	gateway := new(MockGateway)
	svc, accounts, _ := newTestService(gateway)

	noCustomer := testAccount()
	accounts.On("FindByID", ctx, noCustomer.ID).Return(noCustomer, nil)
	_, err := svc.Portal(ctx, noCustomer.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	customer := testAccount()
	customer.SetStripeCustomer("cus_9")
	accounts.On("FindByID", ctx, customer.ID).Return(customer, nil)
	gateway.On("CreatePortalSession", ctx, "cus_9").Return(&infra.CreatePortalSessionOutput{URL: "https://portal/9"}, nil)

	res, err := svc.Portal(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://portal/9", res.URL)
}

func TestService_Subscription(t *testing.T) {
	ctx := context.Background()
	svc, _, subs := newTestService(nil)
	account := testAccount()

	subs.On("FindByAccountID", ctx, account.ID).Return(nil, shared.ErrNotFound).Once()
	view, err := svc.Subscription(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.TierFree, view.Tier)
	assert.Equal(t, billing.StatusActive, view.Status)

	paid := billing.NewFreeSubscription(account.ID)
	paid.Sync("sub_1", billing.TierPro, billing.StatusPastDue, nil, true)
	subs.On("FindByAccountID", ctx, account.ID).Return(paid, nil).Once()
	view, err = svc.Subscription(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.TierPro, view.EffectiveTier)
	assert.True(t, view.CancelAtPeriodEnd)
}
