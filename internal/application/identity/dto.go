package identity

import (
	"time"

	"github.com/appforge/backend/internal/domain/identity"
	"github.com/appforge/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// AccountResponse is the signed-in account as returned to the browser
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// ToAccountResponse converts a domain account
func ToAccountResponse(a *identity.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		AvatarURL: a.AvatarURL,
		Provider:  string(a.Provider),
		CreatedAt: a.CreatedAt,
	}
}

// LoginResult is the outcome of a completed sign-in or refresh
type LoginResult struct {
	Account *identity.Account
	Tokens  *auth.TokenPair
	Created bool
}
