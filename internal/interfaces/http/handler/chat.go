package handler

import (
	"errors"
	"net/http"

	"github.com/appforge/backend/internal/application/chat"
	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/llm"
	"github.com/appforge/backend/internal/infrastructure/logger"
	"github.com/appforge/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler serves the marketing chat assistant
type ChatHandler struct {
	BaseHandler
	chat *chat.Service
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{chat: svc}
}

// ChatMessage is one turn of the conversation
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,max=32000"`
}

// ChatRequest is the POST /chat body
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required,min=1,max=50,dive"`
	Model    string        `json:"model" binding:"max=100"`
	// Stream defaults to true
	Stream *bool `json:"stream"`
}

func (r ChatRequest) input() chat.Input {
	msgs := make([]llm.Message, len(r.Messages))
	for i, m := range r.Messages {
		msgs[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return chat.Input{Model: r.Model, Messages: msgs}
}

type deltaEvent struct {
	Content string `json:"content"`
}

// Chat handles POST /chat. Streaming answers are sent as delta events, then
// one upsell event and a done event. Failures before the first event are
// answered as JSON errors; later ones become an error event.
// @Summary      Chat with the assistant
// @Tags         generation
// @Accept       json
// @Produce      json,text/event-stream
// @Param        request body ChatRequest true "Conversation"
// @Success      200 {object} dto.Response{data=chat.Reply}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      402 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if req.Stream != nil && !*req.Stream {
		reply, err := h.chat.Complete(c.Request.Context(), req.input())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, reply)
		return
	}

	w := &sseWriter{c: c}
	upsells, err := h.chat.Stream(c.Request.Context(), req.input(), func(delta string) error {
		return w.send("delta", deltaEvent{Content: delta})
	})
	if err != nil {
		if !w.started {
			h.HandleError(c, err)
			return
		}
		logger.GetGinLogger(c).Warn("Chat stream interrupted", zap.Error(err))
		_ = w.send("error", streamError(err))
		return
	}

	_ = w.send("upsell", upsells)
	_ = w.send("done", struct{}{})
}

// streamError builds the body of an error event the same way HandleError
// builds a JSON error.
func streamError(err error) dto.ErrorInfo {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return dto.ErrorInfo{Code: dto.NormalizeErrorCode(de.Code), Message: de.Message}
	}
	return dto.ErrorInfo{Code: dto.ErrCodeInternal, Message: http.StatusText(http.StatusInternalServerError)}
}
