// Package generate asks the language model for a runnable fragment.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/appforge/backend/internal/domain/fragment"
	"github.com/appforge/backend/internal/domain/prompt"
	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/llm"
	"go.uber.org/zap"
)

// MaxPromptLength bounds the user prompt
const MaxPromptLength = 8000

// ErrInvalidModelOutput is returned when the reply is not a usable fragment
var ErrInvalidModelOutput = shared.ErrUpstream.WithMessage("the model returned an invalid fragment")

// Completer returns a whole model reply
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Service generates fragments
type Service struct {
	model  Completer
	logger *zap.Logger
}

// ServiceConfig contains the dependencies of Service
type ServiceConfig struct {
	Model  Completer
	Logger *zap.Logger
}

// NewService creates a generate service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{model: cfg.Model, logger: logger}
}

// Input describes what to build. An empty Template lets the model choose.
type Input struct {
	Prompt   string
	Template string
	Model    string
}

// Generate builds the system prompt, asks the model and validates its reply
func (s *Service) Generate(ctx context.Context, in Input) (*fragment.Fragment, error) {
	userPrompt := strings.TrimSpace(in.Prompt)
	if userPrompt == "" {
		return nil, shared.ErrInvalidInput.WithMessage("prompt is required")
	}
	if len(userPrompt) > MaxPromptLength {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("prompt exceeds %d characters", MaxPromptLength))
	}

	templates := fragment.Templates()
	if in.Template != "" {
		t, ok := fragment.Lookup(in.Template)
		if !ok {
			return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown template %q", in.Template))
		}
		templates = []fragment.Template{t}
	}

	reply, err := s.model.Complete(ctx, llm.Request{
		Model:    in.Model,
		System:   prompt.SystemPrompt(templates),
		Messages: []llm.Message{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return nil, err
	}

	frag, err := fragment.Parse(reply)
	if err != nil {
		s.logger.Warn("Model reply is not a valid fragment",
			zap.String("model", in.Model),
			zap.Int("reply_bytes", len(reply)),
			zap.Error(err))
		return nil, ErrInvalidModelOutput
	}
	if in.Template != "" && frag.Template != in.Template {
		s.logger.Warn("Model ignored the requested template",
			zap.String("requested", in.Template),
			zap.String("returned", frag.Template))
		return nil, ErrInvalidModelOutput
	}
	return frag, nil
}
