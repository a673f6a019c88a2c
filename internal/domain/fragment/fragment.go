package fragment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// Fragment is one generated application: the code plus what is needed to run it
type Fragment struct {
	Commentary                 string   `json:"commentary" validate:"max=4000"`
	Template                   string   `json:"template" validate:"required"`
	Title                      string   `json:"title" validate:"required,max=200"`
	Description                string   `json:"description" validate:"max=1000"`
	AdditionalDependencies     []string `json:"additional_dependencies" validate:"dive,required,max=200"`
	HasAdditionalDependencies  bool     `json:"has_additional_dependencies"`
	InstallDependenciesCommand string   `json:"install_dependencies_command" validate:"required_if=HasAdditionalDependencies true,max=500"`
	Port                       *int     `json:"port" validate:"omitempty,min=1,max=65535"`
	FilePath                   string   `json:"file_path" validate:"required,max=255"`
	Code                       string   `json:"code" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that Template names a catalog entry
func (f *Fragment) Validate() error {
	if err := validate.Struct(f); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range verrs {
				fields = append(fields, e.Field())
			}
		}
		return shared.ErrInvalidInput.WithMessage("invalid fragment: " + strings.Join(fields, ", "))
	}
	if _, ok := Lookup(f.Template); !ok {
		return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown template %q", f.Template))
	}
	if strings.Contains(f.FilePath, "..") || strings.HasPrefix(f.FilePath, "/") {
		return shared.ErrInvalidInput.WithMessage("file_path must be relative to the project root")
	}
	return nil
}

// Parse decodes a model reply into a Fragment. The reply may be wrapped in a
// markdown code fence and surrounded by prose.
func Parse(reply string) (*Fragment, error) {
	body := stripFence(reply)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var f Fragment
	if err := json.Unmarshal([]byte(body[start:end+1]), &f); err != nil {
		return nil, fmt.Errorf("decode fragment: %w", err)
	}
	f.HasAdditionalDependencies = len(f.AdditionalDependencies) > 0
	if f.HasAdditionalDependencies && f.InstallDependenciesCommand == "" {
		f.InstallDependenciesCommand = InstallCommand(f.Template, f.AdditionalDependencies)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "```")
	if open < 0 {
		return s
	}
	rest := s[open+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// InstallCommand returns the package-manager command that installs deps for a template
func InstallCommand(templateID string, deps []string) string {
	switch templateID {
	case "nextjs-developer", "vue-developer":
		return "npm install " + strings.Join(deps, " ")
	default:
		return "pip install " + strings.Join(deps, " ")
	}
}
