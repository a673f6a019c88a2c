package persistence

import (
	"context"
	"errors"

	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionRepository implements billing.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByAccountID finds the subscription of an account
func (r *GormSubscriptionRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*billing.Subscription, error) {
	return r.first(ctx, "account_id = ?", accountID)
}

// FindByStripeSubscriptionID finds a subscription by its Stripe ID
func (r *GormSubscriptionRepository) FindByStripeSubscriptionID(ctx context.Context, stripeID string) (*billing.Subscription, error) {
	if stripeID == "" {
		return nil, shared.ErrNotFound
	}
	return r.first(ctx, "stripe_subscription_id = ?", stripeID)
}

func (r *GormSubscriptionRepository) first(ctx context.Context, query string, args ...any) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates a subscription; one row per account
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	model := models.SubscriptionModelFromDomain(sub)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists.WithMessage("subscription already exists for this account")
	}
	return err
}

var _ billing.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
