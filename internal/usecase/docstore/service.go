package docstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragrouter/internal/domain"
	"github.com/kailas-cloud/ragrouter/internal/index"
)

// snapshot is an immutable view: docs[i] is indexed at position i.
type snapshot struct {
	docs []domain.Document
	idx  *index.Flat
}

// Service is the in-memory document store.
// Readers load the current snapshot without locking; Add builds a new snapshot
// under writeMu and publishes it with a single pointer swap.
type Service struct {
	embed   Embedder
	dim     int
	logger  *zap.Logger
	size    SizeObserver
	mirror  Mirror
	writeMu sync.Mutex
	current atomic.Pointer[snapshot]
}

// New creates a document store. dim <= 0 means the width is taken from the first embedding.
func New(embed Embedder, dim int, logger *zap.Logger) *Service {
	s := &Service{embed: embed, dim: dim, logger: logger}
	s.current.Store(&snapshot{})
	return s
}

// WithSizeObserver reports the document count (e.g. to a Prometheus gauge).
func (s *Service) WithSizeObserver(o SizeObserver) *Service {
	s.size = o
	return s
}

// WithMirror forwards every added batch to a secondary text index.
// Mirror failures are logged and do not fail Add.
func (s *Service) WithMirror(m Mirror) *Service {
	s.mirror = m
	return s
}

// Count returns the number of stored documents.
func (s *Service) Count() int {
	return len(s.current.Load().docs)
}

// Add embeds texts and appends them as documents, then rebuilds the index over all documents.
// All embeddings are obtained before any state changes, so a failed call leaves the store untouched.
// metadata may be nil or shorter than texts; missing entries become empty maps.
func (s *Service) Add(ctx context.Context, texts []string, metadata []map[string]any) error {
	if len(texts) == 0 {
		return nil
	}
	if len(metadata) > len(texts) {
		return fmt.Errorf("%w: %d metadata entries for %d texts", domain.ErrInvalidInput, len(metadata), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		res, err := s.embed.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed text %d: %w", i, err)
		}
		vectors[i] = res.Embedding
	}

	added, total, err := s.commit(texts, metadata, vectors)
	if err != nil {
		return err
	}

	s.logger.Info("Indexed documents",
		zap.Int("added", len(added)),
		zap.Int("total", total),
	)

	if s.mirror != nil {
		if err := s.mirror.Index(ctx, added); err != nil {
			s.logger.Warn("Failed to mirror documents to keyword index", zap.Error(err))
		}
	}
	return nil
}

// commit appends the embedded texts and publishes a new snapshot.
func (s *Service) commit(
	texts []string, metadata []map[string]any, vectors [][]float32,
) ([]domain.Document, int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.current.Load()
	dim := s.dim
	if dim <= 0 {
		if len(old.docs) > 0 {
			dim = len(old.docs[0].Embedding)
		} else {
			dim = len(vectors[0])
		}
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, 0, fmt.Errorf("%w: text %d has %d dimensions, want %d",
				domain.ErrVectorDimMismatch, i, len(v), dim)
		}
	}

	docs := make([]domain.Document, len(old.docs), len(old.docs)+len(texts))
	copy(docs, old.docs)
	for i, text := range texts {
		meta := map[string]any{}
		if i < len(metadata) && metadata[i] != nil {
			meta = metadata[i]
		}
		docs = append(docs, domain.Document{
			ID:        len(docs),
			Content:   text,
			Metadata:  meta,
			Embedding: vectors[i],
		})
	}

	all := make([][]float32, len(docs))
	for i := range docs {
		all[i] = docs[i].Embedding
	}
	idx, err := index.Build(dim, all)
	if err != nil {
		return nil, 0, fmt.Errorf("rebuild index: %w", err)
	}

	s.current.Store(&snapshot{docs: docs, idx: idx})
	if s.size != nil {
		s.size.Set(float64(len(docs)))
	}
	return docs[len(old.docs):], len(docs), nil
}

// Search returns up to k documents closest to query by L2 distance, ascending.
// Hits farther than threshold (when set) are dropped. An empty store returns no
// results without calling the embedder.
func (s *Service) Search(
	ctx context.Context, query string, k int, threshold *float64,
) ([]domain.ScoredDocument, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidInput, k)
	}

	snap := s.current.Load()
	if len(snap.docs) == 0 || snap.idx == nil {
		return []domain.ScoredDocument{}, nil
	}

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := snap.idx.Search(res.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorDimMismatch, err)
	}

	out := make([]domain.ScoredDocument, 0, len(hits))
	for _, h := range hits {
		if threshold != nil && h.Distance > *threshold {
			continue
		}
		out = append(out, domain.ScoredDocument{Document: snap.docs[h.Pos], Score: h.Distance})
	}
	return out, nil
}
