package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("error message", func(t *testing.T) {
		assert.Equal(t, "Resource not found", ErrNotFound.Error())
	})

	t.Run("copy with message still matches", func(t *testing.T) {
		err := ErrRateLimited.WithMessage("slow down")
		assert.Equal(t, "slow down", err.Error())
		assert.True(t, errors.Is(err, ErrRateLimited))
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("wrapped errors match", func(t *testing.T) {
		err := fmt.Errorf("lookup: %w", ErrNotFound)
		assert.True(t, errors.Is(err, ErrNotFound))

		var de *DomainError
		assert.True(t, errors.As(err, &de))
		assert.Equal(t, "NOT_FOUND", de.Code)
	})
}
