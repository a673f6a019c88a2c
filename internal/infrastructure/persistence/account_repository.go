package persistence

import (
	"context"
	"errors"

	"github.com/appforge/backend/internal/domain/identity"
	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements identity.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByProvider finds an account by its identity provider user
func (r *GormAccountRepository) FindByProvider(ctx context.Context, provider identity.Provider, providerUserID string) (*identity.Account, error) {
	return r.first(ctx, "provider = ? AND provider_user_id = ?", string(provider), providerUserID)
}

// FindByStripeCustomerID finds the account linked to a Stripe customer
func (r *GormAccountRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*identity.Account, error) {
	if customerID == "" {
		return nil, shared.ErrNotFound
	}
	return r.first(ctx, "stripe_customer_id = ?", customerID)
}

func (r *GormAccountRepository) first(ctx context.Context, query string, args ...any) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *identity.Account) error {
	model := models.AccountModelFromDomain(account)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists.WithMessage("account already exists for this identity")
	}
	return err
}

var _ identity.AccountRepository = (*GormAccountRepository)(nil)
