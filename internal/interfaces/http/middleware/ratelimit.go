package middleware

import (
	"net/http"
	"strconv"

	"github.com/appforge/backend/internal/infrastructure/ratelimit"
	"github.com/appforge/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitConfig configures RateLimit
type RateLimitConfig struct {
	Limiter ratelimit.Limiter
	// Scope separates the budgets of different endpoint groups
	Scope string
	// OnReject is called with the matched route of every rejected request
	OnReject func(route string)
	Logger   *zap.Logger
}

// RateLimit applies the sliding-window limiter per client identity: the
// signed-in account when there is one, the client IP otherwise. Limiter
// failures let the request through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := cfg.Scope + ":" + ClientIdentity(c)

		res, err := cfg.Limiter.Limit(c.Request.Context(), key)
		if err != nil {
			log.Warn("Rate limiter unavailable, allowing request",
				zap.String("scope", cfg.Scope),
				zap.Error(err))
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))

		if !res.Success {
			if cfg.OnReject != nil {
				cfg.OnReject(c.FullPath())
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}

// ClientIdentity is "account:<id>" for signed-in callers and "ip:<addr>" otherwise
func ClientIdentity(c *gin.Context) string {
	if id, ok := GetAccountID(c); ok {
		return "account:" + id.String()
	}
	return "ip:" + c.ClientIP()
}
