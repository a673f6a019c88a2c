package handler

import (
	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/domain/customization"
	"github.com/appforge/backend/internal/domain/fragment"
	"github.com/appforge/backend/internal/domain/theme"
	"github.com/appforge/backend/internal/infrastructure/llm"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the static tables the pages render: templates,
// models, theme tokens, pricing tiers and upsell features.
type CatalogHandler struct {
	BaseHandler
	tiers func() []billing.PricingTier
}

// NewCatalogHandler creates a catalog handler. tiers supplies the pricing
// tiers with their configured Stripe prices.
func NewCatalogHandler(tiers func() []billing.PricingTier) *CatalogHandler {
	return &CatalogHandler{tiers: tiers}
}

// ListTemplates handles GET /templates
// @Summary      List fragment templates
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]fragment.Template}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /templates [get]
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	h.Success(c, fragment.Templates())
}

// GetTemplate handles GET /templates/:id
// @Summary      Get a fragment template
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Template ID"
// @Success      200 {object} dto.Response{data=fragment.Template}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /templates/{id} [get]
func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	tpl, ok := fragment.Lookup(c.Param("id"))
	if !ok {
		h.NotFound(c, "template not found")
		return
	}
	h.Success(c, tpl)
}

// ListModels handles GET /models
// @Summary      List language models
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]llm.Model}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /models [get]
func (h *CatalogHandler) ListModels(c *gin.Context) {
	h.Success(c, llm.Models())
}

// GetTheme handles GET /theme
// @Summary      Get theme tokens for every color scheme
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]theme.Tokens}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /theme [get]
func (h *CatalogHandler) GetTheme(c *gin.Context) {
	h.Success(c, theme.All())
}

// GetThemeScheme handles GET /theme/:scheme
// @Summary      Get theme tokens for one color scheme
// @Tags         catalog
// @Produce      json
// @Param        scheme path string true "Color scheme" Enums(light, dark)
// @Success      200 {object} dto.Response{data=theme.Tokens}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /theme/{scheme} [get]
func (h *CatalogHandler) GetThemeScheme(c *gin.Context) {
	tokens, ok := theme.For(theme.Scheme(c.Param("scheme")))
	if !ok {
		h.NotFound(c, "unknown color scheme")
		return
	}
	h.Success(c, tokens)
}

// ListPricing handles GET /pricing
// @Summary      List pricing tiers
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]billing.PricingTier}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pricing [get]
func (h *CatalogHandler) ListPricing(c *gin.Context) {
	h.Success(c, h.tiers())
}

// ListUpsells handles GET /upsells
// @Summary      List upsell features
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]customization.UpsellFeature}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /upsells [get]
func (h *CatalogHandler) ListUpsells(c *gin.Context) {
	h.Success(c, customization.Upsells())
}
