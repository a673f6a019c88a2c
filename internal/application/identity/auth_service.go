package identity

import (
	"context"
	"errors"
	"time"

	"github.com/appforge/backend/internal/domain/identity"
	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService signs accounts in through OAuth and manages their session tokens
type AuthService struct {
	providers auth.OAuthProviders
	accounts  identity.AccountRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// AuthServiceConfig contains the dependencies of AuthService
type AuthServiceConfig struct {
	Providers auth.OAuthProviders
	Accounts  identity.AccountRepository
	Tokens    *auth.JWTService
	Blacklist auth.TokenBlacklist
	Logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		providers: cfg.Providers,
		accounts:  cfg.Accounts,
		tokens:    cfg.Tokens,
		blacklist: cfg.Blacklist,
		logger:    logger,
	}
}

// LoginURL returns the provider authorization URL carrying state
func (s *AuthService) LoginURL(provider, state string) (string, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return "", err
	}
	return p.AuthCodeURL(state), nil
}

// Callback completes the code flow, upserts the account and issues tokens
func (s *AuthService) Callback(ctx context.Context, provider, code string) (*LoginResult, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, shared.ErrInvalidInput.WithMessage("missing authorization code")
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("OAuth exchange failed",
			zap.String("provider", string(p.Name())),
			zap.Error(err))
		return nil, err
	}

	created := false
	account, err := s.accounts.FindByProvider(ctx, p.Name(), profile.ProviderUserID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		account, err = identity.NewAccount(p.Name(), profile)
		if err != nil {
			return nil, err
		}
		created = true
	case err != nil:
		return nil, err
	default:
		account.UpdateProfile(profile)
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	pair, err := s.issue(account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account signed in",
		zap.String("account_id", account.ID.String()),
		zap.String("provider", string(p.Name())),
		zap.Bool("created", created))

	return &LoginResult{Account: account, Tokens: pair, Created: created}, nil
}

// Refresh rotates a refresh token into a new pair; the old refresh token is revoked
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.ErrUnauthorized.WithMessage("invalid refresh token")
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(ctx, claims.AccountUUID())
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrUnauthorized.WithMessage("account no longer exists")
	}
	if err != nil {
		return nil, err
	}

	s.revoke(ctx, claims)

	pair, err := s.issue(account)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Account: account, Tokens: pair}, nil
}

// Logout revokes whichever of the two tokens are still valid
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) {
	if claims, err := s.tokens.ValidateAccessToken(accessToken); err == nil {
		s.revoke(ctx, claims)
	}
	if claims, err := s.tokens.ValidateRefreshToken(refreshToken); err == nil {
		s.revoke(ctx, claims)
	}
}

// Authenticate validates an access token and rejects revoked ones
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.ErrUnauthorized.WithMessage("session expired")
		}
		return nil, shared.ErrUnauthorized.WithMessage("invalid session")
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Me returns the account behind a session
func (s *AuthService) Me(ctx context.Context, accountID uuid.UUID) (*identity.Account, error) {
	return s.accounts.FindByID(ctx, accountID)
}

func (s *AuthService) issue(account *identity.Account) (*auth.TokenPair, error) {
	return s.tokens.GenerateTokenPair(auth.TokenInput{
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.Name,
	})
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		// fail open: the KV store being down must not sign everyone out
		s.logger.Warn("Token blacklist check failed", zap.Error(err))
		return nil
	}
	if revoked {
		return shared.ErrUnauthorized.WithMessage("session revoked")
	}
	return nil
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(time.Now())); err != nil {
		s.logger.Warn("Failed to revoke token", zap.Error(err))
	}
}
