package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/appforge/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	type linkRequest struct {
		URL        string `json:"url" binding:"required,http_url"`
		TTLSeconds int    `json:"ttl_seconds" binding:"gte=0"`
	}

	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req linkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("reports every rejected field by json name", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"url": "not a url", "ttl_seconds": -1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, w.Header().Get(RequestIDKey), resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "url", resp.Error.Details[0].Field)
		assert.Equal(t, "Invalid URL format", resp.Error.Details[0].Message)
		assert.Equal(t, "ttl_seconds", resp.Error.Details[1].Field)
	})

	t.Run("valid input passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"url": "https://example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type sample struct {
		Required string   `validate:"required"`
		Min      string   `validate:"min=5"`
		Max      []string `validate:"max=1"`
		OneOf    string   `validate:"oneof=month year"`
		GTE      int      `validate:"gte=10"`
	}

	err := validator.New().Struct(sample{Min: "ab", Max: []string{"a", "b"}, OneOf: "week"})
	require.Error(t, err)

	got := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		got[e.Field()] = getValidationMessage(e)
	}

	assert.Equal(t, "This field is required", got["Required"])
	assert.Equal(t, "Must be at least 5 characters", got["Min"])
	assert.Equal(t, "Must contain at most 1 items", got["Max"])
	assert.Equal(t, "Must be one of: month year", got["OneOf"])
	assert.Equal(t, "Must be greater than or equal to 10", got["GTE"])
}
