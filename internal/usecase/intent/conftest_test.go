package intent

import (
	"context"

	"github.com/kailas-cloud/ragrouter/internal/domain"
)

type mockCompleter struct {
	reply   string
	err     error
	lastReq domain.ChatRequest
	calls   int
}

func (m *mockCompleter) Complete(_ context.Context, req domain.ChatRequest) (string, error) {
	m.calls++
	m.lastReq = req
	return m.reply, m.err
}
