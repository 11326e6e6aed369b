package intent

import (
	"context"

	"github.com/kailas-cloud/ragrouter/internal/domain"
)

// Completer issues a single chat completion.
type Completer interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}
