package router

import (
	"context"
	"sync"

	"github.com/kailas-cloud/ragrouter/internal/domain"
	domintent "github.com/kailas-cloud/ragrouter/internal/domain/intent"
	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
)

// --- Mock Classifier ---

type mockClassifier struct {
	intent domintent.Intent
	panics bool
}

func (m *mockClassifier) Classify(_ context.Context, _ string) domintent.Intent {
	if m.panics {
		panic("classifier exploded")
	}
	return m.intent
}

// --- Mock Tools ---

type mockTools struct {
	mu       sync.Mutex
	absent   map[domtool.Name]bool
	results  map[domtool.Name]domtool.Result
	executed []domtool.Name
	onExec   func(name domtool.Name)
}

func newMockTools() *mockTools {
	return &mockTools{
		absent:  map[domtool.Name]bool{},
		results: map[domtool.Name]domtool.Result{},
	}
}

func (m *mockTools) Has(name domtool.Name) bool {
	return !m.absent[name]
}

func (m *mockTools) Execute(_ context.Context, name domtool.Name, _ string, _ domtool.Context) domtool.Result {
	m.mu.Lock()
	m.executed = append(m.executed, name)
	m.mu.Unlock()
	if m.onExec != nil {
		m.onExec(name)
	}
	if r, ok := m.results[name]; ok {
		return r
	}
	return domtool.Failure("no result configured")
}

func docsResult(contents ...string) domtool.Result {
	docs := make([]domtool.Document, len(contents))
	for i, c := range contents {
		docs[i] = domtool.Document{Content: c, Metadata: map[string]any{}}
	}
	return domtool.Result{Success: true, Documents: docs, Payload: domtool.PayloadDocuments}
}

// --- Mock Completer ---

type mockCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	reqs  []domain.ChatRequest
}

func (m *mockCompleter) Complete(_ context.Context, req domain.ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockCompleter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reqs)
}
