package router

import (
	"context"

	"github.com/kailas-cloud/ragrouter/internal/domain"
	domintent "github.com/kailas-cloud/ragrouter/internal/domain/intent"
	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
)

// Classifier maps a query to an intent. It must not fail.
type Classifier interface {
	Classify(ctx context.Context, query string) domintent.Intent
}

// Tools is the live tool set. Execute never returns an error.
type Tools interface {
	Has(name domtool.Name) bool
	Execute(ctx context.Context, name domtool.Name, query string, tc domtool.Context) domtool.Result
}

// Completer issues a single chat completion.
type Completer interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}
