package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/appforge/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// echoRouter reads the whole body and answers 413 itself when the limit trips
func echoRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(limit))
	r.POST("/webhooks/stripe", func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			if IsBodyTooLarge(err) {
				AbortBodyTooLarge(c)
				return
			}
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, "%d", len(payload))
	})
	return r
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		chunked       bool
		wantStatus    int
		wantBodyMatch string
	}{
		{name: "within limit", body: `{"id":"evt_1"}`, wantStatus: http.StatusOK, wantBodyMatch: "14"},
		{name: "exactly at limit", body: strings.Repeat("a", 64), wantStatus: http.StatusOK, wantBodyMatch: "64"},
		{name: "declared length over limit", body: strings.Repeat("a", 65), wantStatus: http.StatusRequestEntityTooLarge, wantBodyMatch: dto.ErrCodeRequestTooLarge},
		{name: "undeclared length over limit", body: strings.Repeat("a", 200), chunked: true, wantStatus: http.StatusRequestEntityTooLarge, wantBodyMatch: dto.ErrCodeRequestTooLarge},
		{name: "empty body", body: "", wantStatus: http.StatusOK, wantBodyMatch: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(tt.body))
			if tt.chunked {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			echoRouter(64).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBodyMatch)
		})
	}
}

func TestIsBodyTooLarge(t *testing.T) {
	assert.False(t, IsBodyTooLarge(nil))
	assert.False(t, IsBodyTooLarge(io.ErrUnexpectedEOF))
	assert.True(t, IsBodyTooLarge(&http.MaxBytesError{Limit: 10}))
}
