package handler

import (
	"net/http"
	"time"

	"github.com/appforge/backend/internal/application/shortlink"
	"github.com/gin-gonic/gin"
)

// LinkHandler creates and resolves short links
type LinkHandler struct {
	BaseHandler
	links *shortlink.Service
}

// NewLinkHandler creates a new LinkHandler
func NewLinkHandler(svc *shortlink.Service) *LinkHandler {
	return &LinkHandler{links: svc}
}

// CreateLinkRequest is the POST /links body
type CreateLinkRequest struct {
	URL        string `json:"url" binding:"required,max=2048"`
	TTLSeconds int64  `json:"ttl_seconds" binding:"gte=0"`
}

// Create handles POST /links
// @Summary      Create a short link
// @Tags         links
// @Accept       json
// @Produce      json
// @Param        request body CreateLinkRequest true "Target URL and lifetime"
// @Success      201 {object} dto.Response{data=shortlink.CreateResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /links [post]
func (h *LinkHandler) Create(c *gin.Context) {
	var req CreateLinkRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.links.Create(c.Request.Context(), req.URL, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// Redirect handles GET /s/:code
func (h *LinkHandler) Redirect(c *gin.Context) {
	target, err := h.links.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, target)
}
