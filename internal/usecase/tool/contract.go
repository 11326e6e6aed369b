package tool

import (
	"context"

	"github.com/kailas-cloud/ragrouter/internal/domain"
)

// DocumentSearcher finds documents similar to a query in the document store.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, k int, threshold *float64) ([]domain.ScoredDocument, error)
}

// KeywordSearcher runs a full-text query against an external search service.
type KeywordSearcher interface {
	Search(ctx context.Context, text string, top int) ([]domain.KeywordHit, error)
}

// Completer issues a single chat completion.
type Completer interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}
