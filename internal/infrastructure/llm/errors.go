package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/sashabaranov/go-openai"
)

// MapError converts a vendor error into a domain error. The vendor detail is
// dropped; callers log the original error.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return shared.ErrVendor.WithMessage("language model request timed out")
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		if apiErr.Type == "insufficient_quota" || apiErr.Code == "insufficient_quota" {
			return shared.ErrPaymentRequired.WithMessage("language model quota exhausted")
		}
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized:
		return shared.ErrUnauthorized.WithMessage("invalid API key")
	case http.StatusPaymentRequired:
		return shared.ErrPaymentRequired.WithMessage("language model quota exhausted")
	case http.StatusForbidden:
		return shared.ErrForbidden.WithMessage("access to the language model was denied")
	case http.StatusTooManyRequests:
		return shared.ErrRateLimited.WithMessage("language model rate limit reached")
	default:
		return shared.ErrVendor.WithMessage("language model request failed")
	}
}
