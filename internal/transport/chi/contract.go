package chi

import (
	"context"

	healthuc "github.com/kailas-cloud/ragrouter/internal/usecase/health"
	routeruc "github.com/kailas-cloud/ragrouter/internal/usecase/router"
)

// Agent answers a user question through the router pipeline.
type Agent interface {
	Query(ctx context.Context, query string) routeruc.Response
}

// DocumentLoader adds raw texts to the document store.
type DocumentLoader interface {
	Add(ctx context.Context, texts []string, metadata []map[string]any) error
	Count() int
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}
