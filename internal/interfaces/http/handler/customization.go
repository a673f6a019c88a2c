package handler

import (
	"github.com/appforge/backend/internal/application/customization"
	"github.com/gin-gonic/gin"
)

// CustomizationHandler serves canned website customization suggestions
type CustomizationHandler struct {
	BaseHandler
	svc *customization.Service
}

// NewCustomizationHandler creates a new CustomizationHandler
func NewCustomizationHandler(svc *customization.Service) *CustomizationHandler {
	return &CustomizationHandler{svc: svc}
}

// SuggestRequest is the POST /customizations/suggest body
type SuggestRequest struct {
	WebsiteID string `json:"website_id" binding:"required,max=128"`
	Industry  string `json:"industry" binding:"max=64"`
	Count     int    `json:"count" binding:"gte=0,lte=10"`
}

// Suggest handles POST /customizations/suggest
// @Summary      Suggest website customizations
// @Tags         customization
// @Accept       json
// @Produce      json
// @Param        request body SuggestRequest true "Website and industry"
// @Success      200 {object} dto.Response{data=customization.Website}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /customizations/suggest [post]
func (h *CustomizationHandler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	website, err := h.svc.Suggest(c.Request.Context(), customization.SuggestInput{
		WebsiteID: req.WebsiteID,
		Industry:  req.Industry,
		Count:     req.Count,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, website)
}

// Get handles GET /customizations/:website_id
// @Summary      Get website customizations
// @Tags         customization
// @Produce      json
// @Param        website_id path string true "Website ID"
// @Success      200 {object} dto.Response{data=customization.Website}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /customizations/{website_id} [get]
func (h *CustomizationHandler) Get(c *gin.Context) {
	website, err := h.svc.Get(c.Request.Context(), c.Param("website_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, website)
}

// ApplyRequest is the POST /customizations/:website_id/apply body
type ApplyRequest struct {
	SuggestionID string `json:"suggestion_id" binding:"required,max=64"`
}

// Apply handles POST /customizations/:website_id/apply
// @Summary      Apply a customization suggestion
// @Tags         customization
// @Accept       json
// @Produce      json
// @Param        website_id path string true "Website ID"
// @Param        request body ApplyRequest true "Suggestion to apply"
// @Success      200 {object} dto.Response{data=customization.AppliedSuggestion}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /customizations/{website_id}/apply [post]
func (h *CustomizationHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	applied, err := h.svc.Apply(c.Request.Context(), c.Param("website_id"), req.SuggestionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, applied)
}
