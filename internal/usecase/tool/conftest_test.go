package tool

import (
	"context"

	"github.com/kailas-cloud/ragrouter/internal/domain"
)

type mockStore struct {
	docs   []domain.ScoredDocument
	err    error
	lastK  int
	calls  int
	panics bool
}

func (m *mockStore) Search(_ context.Context, _ string, k int, _ *float64) ([]domain.ScoredDocument, error) {
	m.calls++
	m.lastK = k
	if m.panics {
		panic("index corrupted")
	}
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.docs) {
		return m.docs[:k], nil
	}
	return m.docs, nil
}

type mockKeyword struct {
	hits    []domain.KeywordHit
	err     error
	lastTop int
}

func (m *mockKeyword) Search(_ context.Context, _ string, top int) ([]domain.KeywordHit, error) {
	m.lastTop = top
	return m.hits, m.err
}

type mockCompleter struct {
	reply string
	err   error
	reqs  []domain.ChatRequest
}

func (m *mockCompleter) Complete(_ context.Context, req domain.ChatRequest) (string, error) {
	m.reqs = append(m.reqs, req)
	return m.reply, m.err
}

func scored(contents ...string) []domain.ScoredDocument {
	out := make([]domain.ScoredDocument, len(contents))
	for i, c := range contents {
		out[i] = domain.ScoredDocument{
			Document: domain.Document{ID: i, Content: c, Metadata: map[string]any{"n": i}},
			Score:    float64(i),
		}
	}
	return out
}
