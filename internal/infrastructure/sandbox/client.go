// Package sandbox talks to the hosted sandbox provider that runs fragment previews.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

// ErrNotConfigured is returned when no sandbox API key is set
var ErrNotConfigured = shared.ErrInvalidState.WithMessage("sandbox provider is not configured")

// Client is an HTTP client for the sandbox provider API
type Client struct {
	baseURL    string
	apiKey     string
	lifetime   time.Duration
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a sandbox client from configuration
func NewClient(cfg config.SandboxConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		lifetime:   cfg.Timeout,
		timeout:    cfg.RequestTimeout,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Create starts a sandbox from a template
func (c *Client) Create(ctx context.Context, template string, metadata map[string]string) (*Sandbox, error) {
	var sbx Sandbox
	err := c.do(ctx, http.MethodPost, "/sandboxes", CreateRequest{
		Template:  template,
		TimeoutMs: c.lifetime.Milliseconds(),
		Metadata:  metadata,
	}, &sbx)
	if err != nil {
		return nil, err
	}
	if sbx.Template == "" {
		sbx.Template = template
	}
	c.logger.Debug("Sandbox created",
		zap.String("sandbox_id", sbx.ID),
		zap.String("template", sbx.Template))
	return &sbx, nil
}

// WriteFile writes content to path inside the sandbox
func (c *Client) WriteFile(ctx context.Context, sandboxID, path, content string) error {
	return c.do(ctx, http.MethodPost, "/sandboxes/"+url.PathEscape(sandboxID)+"/files",
		writeFileRequest{Path: path, Content: content}, nil)
}

// RunCommand runs a shell command and waits for it
func (c *Client) RunCommand(ctx context.Context, sandboxID, cmd string) (*CommandResult, error) {
	var res CommandResult
	err := c.do(ctx, http.MethodPost, "/sandboxes/"+url.PathEscape(sandboxID)+"/commands",
		commandRequest{Cmd: cmd, TimeoutMs: c.timeout.Milliseconds()}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Execute runs code in the code interpreter kernel
func (c *Client) Execute(ctx context.Context, sandboxID, code string) (*Execution, error) {
	var res Execution
	err := c.do(ctx, http.MethodPost, "/sandboxes/"+url.PathEscape(sandboxID)+"/execute",
		executeRequest{Code: code, TimeoutMs: c.timeout.Milliseconds()}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Host returns the public host of the sandbox
func (c *Client) Host(ctx context.Context, sandboxID string) (string, error) {
	var res hostResponse
	if err := c.do(ctx, http.MethodGet, "/sandboxes/"+url.PathEscape(sandboxID)+"/host", nil, &res); err != nil {
		return "", err
	}
	if res.Host == "" {
		return "", shared.ErrVendor.WithMessage("sandbox provider returned no host")
	}
	return res.Host, nil
}

// PreviewURL is where a server listening on port inside the sandbox is reachable
func PreviewURL(host string, port int) string {
	return fmt.Sprintf("https://%d-%s", port, host)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("sandbox: failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("sandbox: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Sandbox request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return shared.ErrVendor.WithMessage("sandbox provider timed out")
		}
		return shared.ErrVendor.WithMessage("sandbox provider unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("sandbox: failed to read response: %w", err)
	}

	c.logger.Debug("Sandbox request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode >= 400 {
		return mapStatus(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return shared.ErrVendor.WithMessage("sandbox provider returned an invalid response")
	}
	return nil
}

func mapStatus(status int, body []byte) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)

	switch status {
	case http.StatusUnauthorized:
		return shared.ErrUnauthorized.WithMessage("sandbox provider rejected the API key")
	case http.StatusPaymentRequired:
		return shared.ErrPaymentRequired.WithMessage("sandbox provider quota exhausted")
	case http.StatusForbidden:
		return shared.ErrForbidden.WithMessage("sandbox provider denied access")
	case http.StatusNotFound:
		return shared.ErrNotFound.WithMessage("sandbox not found")
	case http.StatusTooManyRequests:
		return shared.ErrRateLimited.WithMessage("sandbox provider rate limit reached")
	}
	if status < 500 && er.Message != "" {
		return shared.ErrInvalidInput.WithMessage("sandbox provider: " + er.Message)
	}
	return shared.ErrVendor.WithMessage(fmt.Sprintf("sandbox provider error (HTTP %d)", status))
}
