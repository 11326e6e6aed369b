package chi

import (
	"encoding/json"

	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is returned by POST /api/chat when the pipeline succeeds.
type ChatResponse struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Answer    string         `json:"answer"`
	Intent    string         `json:"intent"`
	ToolsUsed []domtool.Name `json:"tools_used"`
	Timestamp string         `json:"timestamp"`
}

// ChatFailure is returned by POST /api/chat when the pipeline fails.
type ChatFailure struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// LoadRequest is the body of POST /api/documents/load.
// Texts stays raw so a non-array value can be told apart from a decode failure.
type LoadRequest struct {
	Texts    json.RawMessage  `json:"texts"`
	Metadata []map[string]any `json:"metadata"`
}

// LoadResponse is returned by POST /api/documents/load.
type LoadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Loaded  int    `json:"loaded,omitempty"`
	Total   int    `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	AgentType string            `json:"agent_type"`
	Documents int               `json:"documents"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// ErrorResponse is the body of every non-pipeline error.
type ErrorResponse struct {
	Status  string         `json:"status,omitempty"`
	Error   string         `json:"error"`
	Details string         `json:"details,omitempty"`
	Usage   map[string]any `json:"usage,omitempty"`
}

// Endpoint describes one route in GET /api/info.
type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// InfoResponse is returned by GET /api/info.
type InfoResponse struct {
	Service          string              `json:"service"`
	Version          string              `json:"version"`
	AgentPattern     string              `json:"agent_pattern"`
	Description      string              `json:"description"`
	Endpoints        map[string]Endpoint `json:"endpoints"`
	Features         []string            `json:"features"`
	SupportedIntents []string            `json:"supported_intents"`
	Tools            []domtool.Name      `json:"tools,omitempty"`
}
