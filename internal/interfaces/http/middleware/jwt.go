package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/auth"
	"github.com/appforge/backend/internal/infrastructure/logger"
	"github.com/appforge/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session context keys and cookie names
const (
	JWTClaimsKey      = "jwt_claims"
	AccountIDKey      = logger.GinAccountIDKey
	AuthHeaderKey     = "Authorization"
	BearerPrefix      = "Bearer "
	SessionCookieName = "appforge_session"
	RefreshCookieName = "appforge_refresh"
)

// Authenticator validates an access token, including revocation
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// AccessToken returns the bearer token, or the session cookie when there is none
func AccessToken(c *gin.Context) string {
	if h := c.GetHeader(AuthHeaderKey); strings.HasPrefix(h, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, BearerPrefix))
	}
	if v, err := c.Cookie(SessionCookieName); err == nil {
		return v
	}
	return ""
}

// JWTAuth rejects requests without a valid session with 401
func JWTAuth(authn Authenticator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := AccessToken(c)
		if token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Debug("Session rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			message := "Invalid session"
			var de *shared.DomainError
			if errors.As(err, &de) {
				message = de.Message
			}
			abortUnauthorized(c, dto.ErrCodeInvalidSession, message)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth attaches the session when one is present and valid, and
// never rejects the request.
func OptionalJWTAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := AccessToken(c); token != "" {
			if claims, err := authn.Authenticate(c.Request.Context(), token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(AccountIDKey, claims.AccountID)

	ctx := c.Request.Context()
	ctx, _ = logger.WithAccountID(ctx, logger.FromContext(ctx), claims.AccountID)
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves the session claims, or nil
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetAccountID returns the signed-in account, if any
func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id := claims.AccountUUID()
	return id, id != uuid.Nil
}
