package models

import (
	"time"

	"github.com/appforge/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// SubscriptionModel is the subscriptions table
type SubscriptionModel struct {
	BaseModel
	AccountID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Tier                 string    `gorm:"type:varchar(20);not null;default:'free'"`
	Status               string    `gorm:"type:varchar(30);not null;default:'active'"`
	StripeSubscriptionID *string   `gorm:"type:varchar(100);uniqueIndex"`
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool `gorm:"not null;default:false"`
}

// TableName returns the table name
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the model to a domain Subscription
func (m *SubscriptionModel) ToDomain() *billing.Subscription {
	return &billing.Subscription{
		BaseEntity:           m.BaseModel.ToDomain(),
		AccountID:            m.AccountID,
		Tier:                 billing.Tier(m.Tier),
		Status:               billing.SubscriptionStatus(m.Status),
		StripeSubscriptionID: deref(m.StripeSubscriptionID),
		CurrentPeriodEnd:     m.CurrentPeriodEnd,
		CancelAtPeriodEnd:    m.CancelAtPeriodEnd,
	}
}

// SubscriptionModelFromDomain converts a domain Subscription to its model
func SubscriptionModelFromDomain(s *billing.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{
		AccountID:            s.AccountID,
		Tier:                 string(s.Tier),
		Status:               string(s.Status),
		StripeSubscriptionID: nullable(s.StripeSubscriptionID),
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// All returns every model, in dependency order, for sqlite AutoMigrate
func All() []any {
	return []any{&AccountModel{}, &SubscriptionModel{}}
}
