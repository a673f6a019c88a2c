package billing

import (
	"context"

	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/domain/identity"
	infra "github.com/appforge/backend/internal/infrastructure/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByProvider(ctx context.Context, provider identity.Provider, providerUserID string) (*identity.Account, error) {
	args := m.Called(ctx, provider, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*identity.Account, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *identity.Account) error {
	return m.Called(ctx, account).Error(0)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByStripeSubscriptionID(ctx context.Context, stripeID string) (*billing.Subscription, error) {
	args := m.Called(ctx, stripeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCustomer(ctx context.Context, input infra.CreateCustomerInput) (*infra.CreateCustomerOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.CreateCustomerOutput), args.Error(1)
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, input infra.CreateCheckoutSessionInput) (*infra.CreateCheckoutSessionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.CreateCheckoutSessionOutput), args.Error(1)
}

func (m *MockGateway) CreatePortalSession(ctx context.Context, customerID string) (*infra.CreatePortalSessionOutput, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.CreatePortalSessionOutput), args.Error(1)
}

func testCatalog() *billing.Catalog {
	return billing.NewCatalog(billing.PriceIDs{
		ProMonthly:  "price_pro_m",
		ProYearly:   "price_pro_y",
		TeamMonthly: "price_team_m",
		TeamYearly:  "price_team_y",
	})
}

func testAccount() *identity.Account {
	a, err := identity.NewAccount(identity.ProviderGitHub, identity.Profile{
		ProviderUserID: "42",
		Email:          "ada@example.com",
		Name:           "Ada",
	})
	if err != nil {
		panic(err)
	}
	return a
}
