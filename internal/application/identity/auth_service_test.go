package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/appforge/backend/internal/domain/identity"
	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/auth"
	"github.com/appforge/backend/internal/infrastructure/cache"
	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	profile identity.Profile
	err     error
}

func (p *fakeProvider) Name() identity.Provider { return identity.ProviderGitHub }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://github.com/login/oauth/authorize?state=" + state
}

func (p *fakeProvider) Exchange(context.Context, string) (identity.Profile, error) {
	return p.profile, p.err
}

// memAccounts is an in-memory AccountRepository
type memAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]identity.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[uuid.UUID]identity.Account{}}
}

func (r *memAccounts) FindByID(_ context.Context, id uuid.UUID) (*identity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (r *memAccounts) FindByProvider(_ context.Context, p identity.Provider, uid string) (*identity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Provider == p && a.ProviderUserID == uid {
			return &a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAccounts) FindByStripeCustomerID(_ context.Context, id string) (*identity.Account, error) {
	return nil, shared.ErrNotFound
}

func (r *memAccounts) Save(_ context.Context, a *identity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = *a
	return nil
}

func newTestAuthService(t *testing.T, provider *fakeProvider) (*AuthService, *memAccounts) {
	t.Helper()
	kv := cache.NewMemoryKV()
	t.Cleanup(func() { _ = kv.Close() })

	accounts := newMemAccounts()
	svc := NewAuthService(AuthServiceConfig{
		Providers: auth.OAuthProviders{identity.ProviderGitHub: provider},
		Accounts:  accounts,
		Tokens: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-characters",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "appforge-test",
		}),
		Blacklist: auth.NewKVTokenBlacklist(kv, ""),
	})
	return svc, accounts
}

func TestAuthService_LoginURL(t *testing.T) {
	svc, _ := newTestAuthService(t, &fakeProvider{})

	url, err := svc.LoginURL("github", "abc")
	require.NoError(t, err)
	assert.Contains(t, url, "state=abc")

	_, err = svc.LoginURL("gitlab", "abc")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAuthService_Callback(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{profile: identity.Profile{ProviderUserID: "42", Email: "ada@example.com", Name: "Ada"}}
	svc, accounts := newTestAuthService(t, provider)

	first, err := svc.Callback(ctx, "github", "code")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.NotEmpty(t, first.Tokens.AccessToken)

	provider.profile.Name = "Ada Lovelace"
	second, err := svc.Callback(ctx, "github", "code")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Account.ID, second.Account.ID)

	stored, err := accounts.FindByID(ctx, first.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.Name)

	claims, err := svc.Authenticate(ctx, second.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, first.Account.ID, claims.AccountUUID())

	_, err = svc.Callback(ctx, "github", "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	provider.err = shared.ErrUnauthorized.WithMessage("github sign-in failed")
	_, err = svc.Callback(ctx, "github", "code")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t, &fakeProvider{profile: identity.Profile{ProviderUserID: "7"}})

	login, err := svc.Callback(ctx, "github", "code")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.Account.ID, refreshed.Account.ID)

	_, err = svc.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrUnauthorized, "a rotated refresh token cannot be reused")

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t, &fakeProvider{profile: identity.Profile{ProviderUserID: "9"}})

	login, err := svc.Callback(ctx, "github", "code")
	require.NoError(t, err)

	svc.Logout(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken)

	_, err = svc.Authenticate(ctx, login.Tokens.AccessToken)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	_, err = svc.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// junk tokens are ignored
	svc.Logout(ctx, "", "junk")
}
