package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Message is one chat turn
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=32000"`
}

// Request is a chat-completion request; System is prepended as a system turn
type Request struct {
	Model    string
	System   string
	Messages []Message
}

// Observer is notified after every upstream call
type Observer func(provider Provider, model string, err error, elapsed time.Duration)

// chatAPI is the subset of the go-openai client used here
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// Client talks to every configured provider through its OpenAI-compatible
// chat-completions endpoint.
type Client struct {
	providers    map[Provider]chatAPI
	defaultModel string
	maxTokens    int
	temperature  float32
	observer     Observer
	logger       *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithObserver installs a per-call observer, typically metrics
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds one go-openai client per provider that has an API key
func NewClient(cfg config.LLMConfig, opts ...ClientOption) *Client {
	c := &Client{
		providers:    make(map[Provider]chatAPI),
		defaultModel: cfg.DefaultModel,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	add := func(p Provider, key, baseURL string) {
		if key == "" {
			return
		}
		oc := openai.DefaultConfig(key)
		oc.BaseURL = baseURL
		oc.HTTPClient = httpClient
		c.providers[p] = openai.NewClientWithConfig(oc)
	}
	add(ProviderOpenAI, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	add(ProviderAnthropic, cfg.AnthropicAPIKey, cfg.AnthropicBaseURL)
	add(ProviderDeepSeek, cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL)

	for p := range c.providers {
		c.logger.Info("LLM provider configured", zap.String("provider", string(p)))
	}
	return c
}

// DefaultModel returns the model used when a request names none
func (c *Client) DefaultModel() string {
	return c.defaultModel
}

func (c *Client) resolve(req Request) (Model, chatAPI, openai.ChatCompletionRequest, error) {
	id := req.Model
	if id == "" {
		id = c.defaultModel
	}
	model, ok := LookupModel(id)
	if !ok {
		return Model{}, nil, openai.ChatCompletionRequest{}, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown model %q", id))
	}
	api, ok := c.providers[model.Provider]
	if !ok {
		return Model{}, nil, openai.ChatCompletionRequest{}, shared.ErrUnauthorized.WithMessage(fmt.Sprintf("no API key configured for %s", model.Provider))
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	return model, api, openai.ChatCompletionRequest{
		Model:       model.ID,
		Messages:    msgs,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}, nil
}

func (c *Client) observe(model Model, err error, start time.Time) {
	if c.observer != nil {
		c.observer(model.Provider, model.ID, err, time.Since(start))
	}
}

// Complete returns the full assistant reply
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	model, api, oreq, err := c.resolve(req)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := api.CreateChatCompletion(ctx, oreq)
	c.observe(model, err, start)
	if err != nil {
		c.logger.Error("LLM completion failed",
			zap.String("provider", string(model.Provider)),
			zap.String("model", model.ID),
			zap.Error(err))
		return "", MapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", shared.ErrVendor.WithMessage("language model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream calls onDelta for every content chunk until the reply ends.
// An error from onDelta stops the stream and is returned as is.
func (c *Client) Stream(ctx context.Context, req Request, onDelta func(string) error) error {
	model, api, oreq, err := c.resolve(req)
	if err != nil {
		return err
	}
	oreq.Stream = true

	start := time.Now()
	stream, err := api.CreateChatCompletionStream(ctx, oreq)
	if err != nil {
		c.observe(model, err, start)
		c.logger.Error("LLM stream failed to start",
			zap.String("provider", string(model.Provider)),
			zap.String("model", model.ID),
			zap.Error(err))
		return MapError(err)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			c.observe(model, nil, start)
			return nil
		}
		if err != nil {
			c.observe(model, err, start)
			c.logger.Error("LLM stream interrupted",
				zap.String("provider", string(model.Provider)),
				zap.String("model", model.ID),
				zap.Error(err))
			return MapError(err)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onDelta(choice.Delta.Content); err != nil {
				c.observe(model, err, start)
				return err
			}
		}
	}
}
