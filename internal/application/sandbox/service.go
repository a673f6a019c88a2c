// Package sandbox deploys generated fragments to preview sandboxes.
package sandbox

import (
	"context"
	"strings"

	"github.com/appforge/backend/internal/domain/fragment"
	"github.com/appforge/backend/internal/domain/shared"
	infra "github.com/appforge/backend/internal/infrastructure/sandbox"
	"github.com/appforge/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Provider is the sandbox API used to deploy a fragment
type Provider interface {
	Create(ctx context.Context, template string, metadata map[string]string) (*infra.Sandbox, error)
	WriteFile(ctx context.Context, sandboxID, path, content string) error
	RunCommand(ctx context.Context, sandboxID, cmd string) (*infra.CommandResult, error)
	Execute(ctx context.Context, sandboxID, code string) (*infra.Execution, error)
	Host(ctx context.Context, sandboxID string) (string, error)
}

// DeployInput is a fragment to deploy
type DeployInput struct {
	Fragment  fragment.Fragment
	SessionID string
	AccountID string
}

// RuntimeError is an error raised by interpreted code
type RuntimeError struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Traceback string `json:"traceback"`
}

// DeployResult is either an interpreter execution or a web preview URL
type DeployResult struct {
	SandboxID    string           `json:"sbx_id"`
	Template     string           `json:"template"`
	URL          string           `json:"url,omitempty"`
	Stdout       []string         `json:"stdout,omitempty"`
	Stderr       []string         `json:"stderr,omitempty"`
	RuntimeError *RuntimeError    `json:"runtime_error,omitempty"`
	Results      []map[string]any `json:"results,omitempty"`
}

// IsInterpreter reports whether the result came from code execution
func (r *DeployResult) IsInterpreter() bool {
	return r.Template == fragment.CodeInterpreterID
}

// Service deploys fragments
type Service struct {
	provider Provider
	observe  func(template string, err error)
	logger   *zap.Logger
}

// ServiceConfig contains the dependencies of Service
type ServiceConfig struct {
	Provider Provider
	// OnDeploy is told the outcome of every deployment
	OnDeploy func(template string, err error)
	Logger   *zap.Logger
}

// NewService creates a sandbox service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observe := cfg.OnDeploy
	if observe == nil {
		observe = func(string, error) {}
	}
	return &Service{provider: cfg.Provider, observe: observe, logger: logger}
}

// Deploy creates a sandbox for the fragment template, installs extra
// dependencies, writes the code and either runs it or returns the preview URL.
func (s *Service) Deploy(ctx context.Context, in DeployInput) (res *DeployResult, err error) {
	frag := in.Fragment
	if err := frag.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "sandbox", "Deploy",
		telemetry.WithAttribute(telemetry.SpanAttrTemplate, frag.Template))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
		s.observe(frag.Template, err)
	}()

	return s.deploy(ctx, in)
}

func (s *Service) deploy(ctx context.Context, in DeployInput) (*DeployResult, error) {
	frag := in.Fragment
	tmpl, _ := fragment.Lookup(frag.Template)

	metadata := map[string]string{"template": frag.Template}
	if in.SessionID != "" {
		metadata["session_id"] = in.SessionID
	}
	if in.AccountID != "" {
		metadata["account_id"] = in.AccountID
	}

	sbx, err := s.provider.Create(ctx, frag.Template, metadata)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("sandbox_id", sbx.ID), zap.String("template", frag.Template))
	span := trace.SpanFromContext(ctx)
	telemetry.SetAttributes(span, telemetry.SpanAttrSandboxID, sbx.ID)

	if frag.HasAdditionalDependencies && len(frag.AdditionalDependencies) > 0 {
		cmd := strings.TrimSpace(frag.InstallDependenciesCommand)
		if cmd == "" {
			cmd = fragment.InstallCommand(frag.Template, frag.AdditionalDependencies)
		}
		res, err := s.provider.RunCommand(ctx, sbx.ID, cmd)
		if err != nil {
			return nil, err
		}
		telemetry.AddEvent(span, "dependencies_installed", "exit_code", res.ExitCode)
		if res.ExitCode != 0 {
			log.Warn("Dependency install exited non-zero",
				zap.Int("exit_code", res.ExitCode),
				zap.String("stderr", res.Stderr))
		} else {
			log.Info("Installed additional dependencies", zap.Strings("deps", frag.AdditionalDependencies))
		}
	}

	if err := s.provider.WriteFile(ctx, sbx.ID, frag.FilePath, frag.Code); err != nil {
		return nil, err
	}

	result := &DeployResult{SandboxID: sbx.ID, Template: frag.Template}

	if frag.Template == fragment.CodeInterpreterID {
		exec, err := s.provider.Execute(ctx, sbx.ID, frag.Code)
		if err != nil {
			return nil, err
		}
		result.Stdout = exec.Stdout
		result.Stderr = exec.Stderr
		result.Results = exec.Results
		if exec.Error != nil {
			result.RuntimeError = &RuntimeError{
				Name:      exec.Error.Name,
				Value:     exec.Error.Value,
				Traceback: exec.Error.Traceback,
			}
		}
		log.Info("Executed fragment", zap.Bool("runtime_error", exec.Error != nil))
		return result, nil
	}

	port := frag.Port
	if port == nil {
		port = tmpl.Port
	}
	if port == nil {
		return nil, shared.ErrInvalidInput.WithMessage("fragment has no port to preview")
	}
	host, err := s.provider.Host(ctx, sbx.ID)
	if err != nil {
		return nil, err
	}
	result.URL = infra.PreviewURL(host, *port)
	log.Info("Fragment deployed", zap.String("url", result.URL))
	return result, nil
}
