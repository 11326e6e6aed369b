package chi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	chirouter "github.com/go-chi/chi/v5"

	healthuc "github.com/kailas-cloud/ragrouter/internal/usecase/health"
	routeruc "github.com/kailas-cloud/ragrouter/internal/usecase/router"
)

type mockAgent struct {
	mu      sync.Mutex
	resp    routeruc.Response
	queries []string
}

func (m *mockAgent) Query(_ context.Context, query string) routeruc.Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	return m.resp
}

type mockLoader struct {
	mu       sync.Mutex
	err      error
	texts    []string
	metadata []map[string]any
	count    int
}

func (m *mockLoader) Add(_ context.Context, texts []string, metadata []map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.texts = append(m.texts, texts...)
	m.metadata = metadata
	m.count += len(texts)
	return nil
}

func (m *mockLoader) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestServer(agent *mockAgent, docs *mockLoader, health *mockHealth) http.Handler {
	if agent == nil {
		agent = &mockAgent{}
	}
	if docs == nil {
		docs = &mockLoader{}
	}
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	s := NewServer(agent, docs, health, nil)
	s.now = func() time.Time { return fixedNow }

	r := chirouter.NewRouter()
	s.Register(r)
	return r
}

func jsonBody(s string) *strings.Reader { return strings.NewReader(s) }
