package handler

import (
	"net/http"
	"testing"

	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/domain/fragment"
	"github.com/appforge/backend/internal/domain/theme"
	"github.com/appforge/backend/internal/infrastructure/llm"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogRouter() *gin.Engine {
	catalog := billing.NewCatalog(billing.PriceIDs{})
	h := NewCatalogHandler(catalog.Tiers)
	r := gin.New()
	r.GET("/templates", h.ListTemplates)
	r.GET("/templates/:id", h.GetTemplate)
	r.GET("/models", h.ListModels)
	r.GET("/theme", h.GetTheme)
	r.GET("/theme/:scheme", h.GetThemeScheme)
	r.GET("/pricing", h.ListPricing)
	return r
}

func TestCatalogHandler_Templates(t *testing.T) {
	r := newCatalogRouter()

	w := doJSON(t, r, http.MethodGet, "/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var templates []fragment.Template
	decode(t, w, &templates)
	assert.Len(t, templates, len(fragment.Templates()))

	w = doJSON(t, r, http.MethodGet, "/templates/"+fragment.CodeInterpreterID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tpl fragment.Template
	decode(t, w, &tpl)
	assert.Equal(t, fragment.CodeInterpreterID, tpl.ID)

	w = doJSON(t, r, http.MethodGet, "/templates/cobol-developer", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_Models(t *testing.T) {
	w := doJSON(t, newCatalogRouter(), http.MethodGet, "/models", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var models []llm.Model
	decode(t, w, &models)
	assert.Len(t, models, len(llm.Models()))
}

func TestCatalogHandler_Theme(t *testing.T) {
	r := newCatalogRouter()

	w := doJSON(t, r, http.MethodGet, "/theme/dark", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tokens theme.Tokens
	decode(t, w, &tokens)
	assert.Equal(t, theme.Dark, tokens.Scheme)

	w = doJSON(t, r, http.MethodGet, "/theme/sepia", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_Pricing(t *testing.T) {
	w := doJSON(t, newCatalogRouter(), http.MethodGet, "/pricing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tiers []map[string]any
	decode(t, w, &tiers)
	require.NotEmpty(t, tiers)
	assert.Equal(t, string(billing.TierFree), tiers[0]["id"])
}
