package handler

import (
	"github.com/appforge/backend/internal/application/generate"
	"github.com/appforge/backend/internal/application/refactor"
	"github.com/gin-gonic/gin"
)

// GenerateHandler serves fragment generation and the canned refactor endpoint
type GenerateHandler struct {
	BaseHandler
	generator *generate.Service
}

// NewGenerateHandler creates a new GenerateHandler
func NewGenerateHandler(svc *generate.Service) *GenerateHandler {
	return &GenerateHandler{generator: svc}
}

// GenerateRequest is the POST /generate body
type GenerateRequest struct {
	Prompt   string `json:"prompt" binding:"required,max=8000"`
	Template string `json:"template" binding:"max=64"`
	Model    string `json:"model" binding:"max=100"`
}

// Generate handles POST /generate and returns the validated fragment
// @Summary      Generate a code fragment
// @Tags         generation
// @Accept       json
// @Produce      json
// @Param        request body GenerateRequest true "Generation prompt"
// @Success      200 {object} dto.Response{data=fragment.Fragment}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      402 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	frag, err := h.generator.Generate(c.Request.Context(), generate.Input{
		Prompt:   req.Prompt,
		Template: req.Template,
		Model:    req.Model,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, frag)
}

// RefactorRequest is the POST /refactor body
type RefactorRequest struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language" binding:"required,max=32"`
}

// Refactor handles POST /refactor
// @Summary      Refactor a code snippet
// @Tags         generation
// @Accept       json
// @Produce      json
// @Param        request body RefactorRequest true "Code to refactor"
// @Success      200 {object} dto.Response{data=refactor.Result}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /refactor [post]
func (h *GenerateHandler) Refactor(c *gin.Context) {
	var req RefactorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := refactor.Refactor(req.Code, req.Language)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}
