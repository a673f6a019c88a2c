package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/auth"
	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/appforge/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jwtAuthenticator validates tokens without a revocation list
type jwtAuthenticator struct {
	svc *auth.JWTService
}

func (a jwtAuthenticator) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	claims, err := a.svc.ValidateAccessToken(token)
	if err != nil {
		return nil, shared.ErrUnauthorized.WithMessage("invalid session")
	}
	return claims, nil
}

func newTestSession(t *testing.T) (jwtAuthenticator, *auth.TokenPair, uuid.UUID) {
	t.Helper()
	svc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "appforge-test",
	})
	accountID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.TokenInput{AccountID: accountID, Email: "a@example.com"})
	require.NoError(t, err)
	return jwtAuthenticator{svc: svc}, pair, accountID
}

func sessionRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw)
	router.GET("/me", func(c *gin.Context) {
		id, ok := GetAccountID(c)
		c.JSON(http.StatusOK, gin.H{"signed_in": ok, "account_id": id.String()})
	})
	return router
}

func TestJWTAuth(t *testing.T) {
	authn, pair, accountID := newTestSession(t)
	router := sessionRouter(JWTAuth(authn, nil))

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), accountID.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: pair.AccessToken})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))

		require.Equal(t, http.StatusUnauthorized, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("refresh token is not a session", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.RefreshToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidSession)
	})
}

func TestOptionalJWTAuth(t *testing.T) {
	authn, pair, _ := newTestSession(t)
	router := sessionRouter(OptionalJWTAuth(authn))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"signed_in":false`)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+"garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"signed_in":false`)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"signed_in":true`)
}
