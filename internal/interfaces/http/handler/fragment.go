package handler

import (
	"github.com/appforge/backend/internal/application/sandbox"
	"github.com/appforge/backend/internal/application/share"
	"github.com/appforge/backend/internal/domain/fragment"
	"github.com/appforge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// FragmentHandler deploys fragments to sandboxes and publishes them
type FragmentHandler struct {
	BaseHandler
	sandboxes *sandbox.Service
	sharing   *share.Service
}

// NewFragmentHandler creates a new FragmentHandler
func NewFragmentHandler(sandboxes *sandbox.Service, sharing *share.Service) *FragmentHandler {
	return &FragmentHandler{sandboxes: sandboxes, sharing: sharing}
}

// DeployRequest is the POST /sandbox body
type DeployRequest struct {
	Fragment  *fragment.Fragment `json:"fragment" binding:"required"`
	SessionID string             `json:"session_id" binding:"max=128"`
}

// Deploy handles POST /sandbox
// @Summary      Deploy a fragment to a sandbox
// @Tags         generation
// @Accept       json
// @Produce      json
// @Param        request body DeployRequest true "Fragment to run"
// @Success      200 {object} dto.Response{data=sandbox.DeployResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sandbox [post]
func (h *FragmentHandler) Deploy(c *gin.Context) {
	var req DeployRequest
	if !h.bindJSON(c, &req) {
		return
	}

	in := sandbox.DeployInput{Fragment: *req.Fragment, SessionID: req.SessionID}
	if id, ok := middleware.GetAccountID(c); ok {
		in.AccountID = id.String()
	}

	res, err := h.sandboxes.Deploy(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// ShareRequest is the POST /fragments/share body
type ShareRequest struct {
	Fragment *fragment.Fragment `json:"fragment" binding:"required"`
	URL      string             `json:"url" binding:"max=2048"`
}

// Share handles POST /fragments/share
// @Summary      Share a fragment
// @Tags         generation
// @Accept       json
// @Produce      json
// @Param        request body ShareRequest true "Fragment to share"
// @Success      201 {object} dto.Response{data=share.ShareResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /fragments/share [post]
func (h *FragmentHandler) Share(c *gin.Context) {
	var req ShareRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.sharing.Share(c.Request.Context(), share.ShareInput{
		Fragment:   *req.Fragment,
		PreviewURL: req.URL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// GetShared handles GET /fragments/:id
// @Summary      Get a shared fragment
// @Tags         generation
// @Produce      json
// @Param        id path string true "Shared fragment ID"
// @Success      200 {object} dto.Response{data=share.SharedFragment}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /fragments/{id} [get]
func (h *FragmentHandler) GetShared(c *gin.Context) {
	doc, err := h.sharing.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}
