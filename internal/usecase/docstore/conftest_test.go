package docstore

import (
	"context"
	"errors"
	"sync"

	"github.com/kailas-cloud/ragrouter/internal/domain"
)

const testDim = 8

// hashEmbedder is a deterministic embedder: each byte lands in bucket i%testDim.
type hashEmbedder struct {
	mu     sync.Mutex
	calls  int
	failOn string
}

func (h *hashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	if h.failOn != "" && text == h.failOn {
		return domain.EmbeddingResult{}, errors.New("provider down")
	}
	return domain.EmbeddingResult{Embedding: hashVector(text)}, nil
}

func (h *hashEmbedder) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func hashVector(text string) []float32 {
	v := make([]float32, testDim)
	for i := 0; i < len(text); i++ {
		v[i%testDim] += float32(text[i]) / 255
	}
	return v
}

// fixedEmbedder returns the same vector for every text.
type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: f.vec}, nil
}

type gauge struct {
	v float64
}

func (g *gauge) Set(v float64) { g.v = v }

type recordingMirror struct {
	batches [][]domain.Document
	err     error
}

func (m *recordingMirror) Index(_ context.Context, docs []domain.Document) error {
	m.batches = append(m.batches, docs)
	return m.err
}
