package docstore

import (
	"context"

	"github.com/kailas-cloud/ragrouter/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// SizeObserver receives the document count after every successful Add.
type SizeObserver interface {
	Set(float64)
}

// Mirror receives newly added documents, e.g. to keep a full-text index in sync.
type Mirror interface {
	Index(ctx context.Context, docs []domain.Document) error
}
