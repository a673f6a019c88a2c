package handler

import (
	"net/http"
	"strings"
	"time"

	appidentity "github.com/appforge/backend/internal/application/identity"
	"github.com/appforge/backend/internal/infrastructure/auth"
	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/appforge/backend/internal/interfaces/http/dto"
	"github.com/appforge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StateCookieName carries the OAuth state between login and callback
const StateCookieName = "appforge_oauth_state"

const stateCookieTTL = 10 * time.Minute

// AuthHandler handles OAuth sign-in and session endpoints
type AuthHandler struct {
	BaseHandler
	auth            *appidentity.AuthService
	cookie          config.CookieConfig
	successRedirect string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(svc *appidentity.AuthService, cookie config.CookieConfig, successRedirect string) *AuthHandler {
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	if successRedirect == "" {
		successRedirect = "/"
	}
	return &AuthHandler{auth: svc, cookie: cookie, successRedirect: successRedirect}
}

// SessionResponse is returned by refresh
type SessionResponse struct {
	Account   appidentity.AccountResponse `json:"account"`
	ExpiresAt time.Time                   `json:"expires_at"`
}

// Login handles GET /auth/:provider/login
// @Summary      Start OAuth sign-in
// @Tags         auth
// @Param        provider path string true "OAuth provider" Enums(github, google)
// @Success      302 "Redirect to the provider"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/{provider}/login [get]
func (h *AuthHandler) Login(c *gin.Context) {
	state := uuid.NewString()
	url, err := h.auth.LoginURL(c.Param("provider"), state)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setCookie(c, StateCookieName, state, stateCookieTTL)
	c.Redirect(http.StatusFound, url)
}

// Callback handles GET /auth/:provider/callback
// @Summary      Complete OAuth sign-in
// @Tags         auth
// @Param        provider path string true "OAuth provider" Enums(github, google)
// @Param        code query string true "Authorization code"
// @Param        state query string true "State issued at login"
// @Success      302 "Session cookies set, redirect to the app"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/{provider}/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	if msg := c.Query("error"); msg != "" {
		h.BadRequest(c, "Sign-in was cancelled: "+msg)
		return
	}

	state, err := c.Cookie(StateCookieName)
	if err != nil || state == "" || state != c.Query("state") {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidSession, "Sign-in state mismatch, please try again")
		return
	}
	h.clearCookie(c, StateCookieName)

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		h.BadRequest(c, "Missing authorization code")
		return
	}

	res, err := h.auth.Callback(c.Request.Context(), c.Param("provider"), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setSession(c, res.Tokens)
	c.Redirect(http.StatusFound, h.successRedirect)
}

// Me handles GET /auth/me
// @Summary      Get the signed-in account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=appidentity.AccountResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	account, err := h.auth.Me(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appidentity.ToAccountResponse(account))
}

// Refresh handles POST /auth/refresh
// @Summary      Refresh the session
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshCookieName)
	if token == "" {
		h.Unauthorized(c, "Missing refresh token")
		return
	}

	res, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		h.clearSession(c)
		h.HandleError(c, err)
		return
	}
	h.setSession(c, res.Tokens)
	h.Success(c, SessionResponse{
		Account:   appidentity.ToAccountResponse(res.Account),
		ExpiresAt: res.Tokens.AccessTokenExpiresAt,
	})
}

// Logout handles POST /auth/logout
// @Summary      Sign out
// @Tags         auth
// @Success      204 "Session cleared"
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refresh, _ := c.Cookie(middleware.RefreshCookieName)
	h.auth.Logout(c.Request.Context(), middleware.AccessToken(c), refresh)
	h.clearSession(c)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) setSession(c *gin.Context, pair *auth.TokenPair) {
	h.setCookie(c, middleware.SessionCookieName, pair.AccessToken, time.Until(pair.AccessTokenExpiresAt))
	h.setCookie(c, middleware.RefreshCookieName, pair.RefreshToken, time.Until(pair.RefreshTokenExpiresAt))
}

func (h *AuthHandler) clearSession(c *gin.Context) {
	h.clearCookie(c, middleware.SessionCookieName)
	h.clearCookie(c, middleware.RefreshCookieName)
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(name, value, int(ttl.Seconds()), h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(name, "", -1, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
