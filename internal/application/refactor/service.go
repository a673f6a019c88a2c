// Package refactor returns canned refactoring advice. No analysis of the
// submitted code is performed.
package refactor

import (
	"strings"

	"github.com/appforge/backend/internal/domain/shared"
)

// MaxCodeLength bounds the submitted code
const MaxCodeLength = 100_000

// Suggestion is one piece of advice
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Result is the canned response
type Result struct {
	Language       string       `json:"language"`
	Suggestions    []Suggestion `json:"suggestions"`
	RefactoredCode string       `json:"refactored_code"`
}

var generic = []Suggestion{
	{Title: "Extract small functions", Description: "Split long functions so each does one thing and can be named for it.", Severity: "info"},
	{Title: "Name magic values", Description: "Replace unexplained literals with named constants.", Severity: "info"},
	{Title: "Handle errors where they occur", Description: "Check and report failures close to the call that produced them.", Severity: "warning"},
}

var byLanguage = map[string][]Suggestion{
	"javascript": {
		{Title: "Prefer const and let", Description: "Replace var declarations with block-scoped bindings.", Severity: "warning"},
		{Title: "Use async/await", Description: "Flatten promise chains into sequential async code.", Severity: "info"},
		{Title: "Strict equality", Description: "Use === and !== to avoid implicit coercion.", Severity: "warning"},
	},
	"typescript": {
		{Title: "Avoid any", Description: "Give parameters and return values precise types.", Severity: "warning"},
		{Title: "Use discriminated unions", Description: "Model variants with a shared literal tag instead of optional fields.", Severity: "info"},
		{Title: "Enable strict mode", Description: "Turn on strict in tsconfig to catch null and undefined mistakes.", Severity: "info"},
	},
	"python": {
		{Title: "Add type hints", Description: "Annotate function signatures so tools can check call sites.", Severity: "info"},
		{Title: "Use context managers", Description: "Open files and connections with a with block.", Severity: "warning"},
		{Title: "Prefer comprehensions", Description: "Replace append loops with list or dict comprehensions where it reads better.", Severity: "info"},
	},
	"go": {
		{Title: "Wrap errors with context", Description: "Use fmt.Errorf with %w so callers can inspect the cause.", Severity: "warning"},
		{Title: "Accept interfaces", Description: "Take small interfaces as parameters and return concrete types.", Severity: "info"},
		{Title: "Pass context.Context", Description: "Thread a context through blocking calls for cancellation.", Severity: "info"},
	},
}

var aliases = map[string]string{
	"js":     "javascript",
	"jsx":    "javascript",
	"ts":     "typescript",
	"tsx":    "typescript",
	"py":     "python",
	"golang": "go",
}

// Refactor returns the canned suggestions for language and code with a banner
func Refactor(code, language string) (*Result, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("code is required")
	}
	if len(code) > MaxCodeLength {
		return nil, shared.ErrInvalidInput.WithMessage("code is too long")
	}

	lang := strings.ToLower(strings.TrimSpace(language))
	if alias, ok := aliases[lang]; ok {
		lang = alias
	}
	picked, ok := byLanguage[lang]
	if !ok {
		picked = generic
	}
	out := make([]Suggestion, len(picked))
	copy(out, picked)

	return &Result{
		Language:       lang,
		Suggestions:    out,
		RefactoredCode: banner(lang) + "\n" + code,
	}, nil
}

func banner(lang string) string {
	const text = "Reviewed by AI refactoring assistant"
	switch lang {
	case "python", "ruby", "shell", "bash", "yaml":
		return "# " + text
	case "html", "xml", "vue":
		return "<!-- " + text + " -->"
	case "css":
		return "/* " + text + " */"
	case "sql", "lua":
		return "-- " + text
	default:
		return "// " + text
	}
}
