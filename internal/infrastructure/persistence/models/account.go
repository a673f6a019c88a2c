package models

import (
	"github.com/appforge/backend/internal/domain/identity"
)

// AccountModel is the accounts table
type AccountModel struct {
	BaseModel
	Email            string  `gorm:"type:varchar(320);not null;default:'';index"`
	Name             string  `gorm:"type:varchar(200);not null;default:''"`
	AvatarURL        string  `gorm:"type:text;not null;default:''"`
	Provider         string  `gorm:"type:varchar(20);not null;uniqueIndex:uq_accounts_provider_user"`
	ProviderUserID   string  `gorm:"type:varchar(100);not null;uniqueIndex:uq_accounts_provider_user"`
	StripeCustomerID *string `gorm:"type:varchar(100);uniqueIndex"`
}

// TableName returns the table name
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the model to a domain Account
func (m *AccountModel) ToDomain() *identity.Account {
	return &identity.Account{
		BaseEntity:       m.BaseModel.ToDomain(),
		Email:            m.Email,
		Name:             m.Name,
		AvatarURL:        m.AvatarURL,
		Provider:         identity.Provider(m.Provider),
		ProviderUserID:   m.ProviderUserID,
		StripeCustomerID: deref(m.StripeCustomerID),
	}
}

// AccountModelFromDomain converts a domain Account to its model
func AccountModelFromDomain(a *identity.Account) *AccountModel {
	m := &AccountModel{
		Email:            a.Email,
		Name:             a.Name,
		AvatarURL:        a.AvatarURL,
		Provider:         string(a.Provider),
		ProviderUserID:   a.ProviderUserID,
		StripeCustomerID: nullable(a.StripeCustomerID),
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}
