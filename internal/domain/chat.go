package domain

import "context"

// Chat message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is a single turn sent to the chat model.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest describes one chat completion call.
// Purpose labels the call for metrics and logs (classify, summarize, compare, fuse).
type ChatRequest struct {
	Purpose     string
	Messages    []ChatMessage
	Temperature float32
	JSON        bool
}

// ChatCompleter issues chat completion requests and returns the first choice's content.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
