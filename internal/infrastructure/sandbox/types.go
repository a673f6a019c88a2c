package sandbox

// Sandbox is a created sandbox instance
type Sandbox struct {
	ID       string `json:"sandbox_id"`
	Template string `json:"template"`
	ClientID string `json:"client_id,omitempty"`
}

// CreateRequest asks the provider for a new sandbox
type CreateRequest struct {
	Template  string            `json:"template"`
	TimeoutMs int64             `json:"timeout_ms"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// CommandResult is the outcome of a shell command inside a sandbox
type CommandResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// ExecutionError is a runtime error raised by executed code
type ExecutionError struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Traceback string `json:"traceback"`
}

// Execution is the outcome of running code in the interpreter template
type Execution struct {
	Stdout  []string         `json:"stdout"`
	Stderr  []string         `json:"stderr"`
	Error   *ExecutionError  `json:"error,omitempty"`
	Results []map[string]any `json:"results"`
}

type writeFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type commandRequest struct {
	Cmd       string `json:"cmd"`
	TimeoutMs int64  `json:"timeout_ms"`
}

type executeRequest struct {
	Code      string `json:"code"`
	TimeoutMs int64  `json:"timeout_ms"`
}

type hostResponse struct {
	Host string `json:"host"`
}

type errorResponse struct {
	Message string `json:"message"`
}
