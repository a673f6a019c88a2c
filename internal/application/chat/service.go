// Package chat forwards marketing-site chat turns to the language model.
package chat

import (
	"context"
	"strings"

	"github.com/appforge/backend/internal/domain/customization"
	"github.com/appforge/backend/internal/domain/prompt"
	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/llm"
	"go.uber.org/zap"
)

// MaxMessages bounds the conversation history accepted per request
const MaxMessages = 50

// LanguageModel is the chat-completion client
type LanguageModel interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
	Stream(ctx context.Context, req llm.Request, onDelta func(string) error) error
}

// Service runs chat turns
type Service struct {
	model  LanguageModel
	system string
	logger *zap.Logger
}

// ServiceConfig contains the dependencies of Service
type ServiceConfig struct {
	Model  LanguageModel
	Logger *zap.Logger
}

// NewService creates a chat service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		model:  cfg.Model,
		system: prompt.ChatSystemPrompt(customization.Upsells()),
		logger: logger,
	}
}

// Input is one chat request
type Input struct {
	Model    string
	Messages []llm.Message
}

// Reply is a complete non-streamed answer
type Reply struct {
	Content string                        `json:"content"`
	Upsells []customization.UpsellFeature `json:"upsells"`
}

func (s *Service) request(in Input) (llm.Request, error) {
	if len(in.Messages) == 0 {
		return llm.Request{}, shared.ErrInvalidInput.WithMessage("messages must not be empty")
	}
	if len(in.Messages) > MaxMessages {
		return llm.Request{}, shared.ErrInvalidInput.WithMessage("too many messages")
	}
	return llm.Request{Model: in.Model, System: s.system, Messages: in.Messages}, nil
}

// Upsells returns the add-ons mentioned by the last user message
func Upsells(messages []llm.Message) []customization.UpsellFeature {
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			matched := customization.MatchUpsells(messages[i].Content)
			if matched == nil {
				return []customization.UpsellFeature{}
			}
			return matched
		}
	}
	return []customization.UpsellFeature{}
}

// Complete returns the whole answer at once
func (s *Service) Complete(ctx context.Context, in Input) (*Reply, error) {
	req, err := s.request(in)
	if err != nil {
		return nil, err
	}
	content, err := s.model.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: content, Upsells: Upsells(in.Messages)}, nil
}

// Stream forwards answer chunks to onDelta and returns the matched upsells
// once the model is done.
func (s *Service) Stream(ctx context.Context, in Input, onDelta func(string) error) ([]customization.UpsellFeature, error) {
	req, err := s.request(in)
	if err != nil {
		return nil, err
	}
	if err := s.model.Stream(ctx, req, onDelta); err != nil {
		s.logger.Debug("Chat stream ended with error", zap.Error(err))
		return nil, err
	}
	return Upsells(in.Messages), nil
}
