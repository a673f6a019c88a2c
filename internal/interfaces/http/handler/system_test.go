package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantState  string
	}{
		{"no checks", nil, http.StatusOK, "healthy"},
		{"all up", map[string]HealthCheck{"database": ok, "redis": ok}, http.StatusOK, "healthy"},
		{"redis down", map[string]HealthCheck{"database": ok, "redis": down}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler(SystemHandlerConfig{Name: "appforge", Checks: tt.checks})
			r := gin.New()
			r.GET("/health", h.Health)

			w := doJSON(t, r, http.MethodGet, "/health", nil)
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantState, resp.Status)
			if tt.name == "redis down" {
				assert.Equal(t, "ok", resp.Checks["database"])
				assert.Contains(t, resp.Checks["redis"], "connection refused")
			}
		})
	}
}

func TestSystemHandler_Info(t *testing.T) {
	h := NewSystemHandler(SystemHandlerConfig{Name: "appforge", Version: "1.2.3", Env: "test"})
	r := gin.New()
	r.GET("/info", h.GetSystemInfo)
	r.GET("/ping", h.Ping)

	w := doJSON(t, r, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	decode(t, w, &info)
	assert.Equal(t, "appforge", info.Name)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "test", info.Environment)

	w = doJSON(t, r, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pong PingResponse
	decode(t, w, &pong)
	assert.Equal(t, "pong", pong.Message)
}
