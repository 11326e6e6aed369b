package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragrouter/internal/domain"
	domintent "github.com/kailas-cloud/ragrouter/internal/domain/intent"
	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
	logpkg "github.com/kailas-cloud/ragrouter/internal/logger"
)

// DefaultFuseTemperature is the sampling temperature of the final answer.
const DefaultFuseTemperature = 0.7

// Response is the routed answer together with the trail that produced it.
type Response struct {
	Success     bool                 `json:"success"`
	Query       string               `json:"query,omitempty"`
	Intent      domintent.Intent     `json:"intent,omitempty"`
	ToolsUsed   []domtool.Name       `json:"tools_used,omitempty"`
	ToolResults []domtool.Invocation `json:"tool_results,omitempty"`
	Answer      string               `json:"answer,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Agent is the router: classify, pick tools, run them in order, fuse.
type Agent struct {
	classifier  Classifier
	tools       Tools
	chat        Completer
	table       Table
	temperature float32
	logger      *zap.Logger
	duration    *prometheus.HistogramVec
}

// New creates an agent with the default routing table.
func New(classifier Classifier, tools Tools, chat Completer, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		classifier:  classifier,
		tools:       tools,
		chat:        chat,
		table:       DefaultTable(),
		temperature: DefaultFuseTemperature,
		logger:      logger,
	}
}

// WithTable replaces the routing table.
func (a *Agent) WithTable(t Table) *Agent {
	a.table = t
	return a
}

// WithTemperature overrides the fusion temperature.
func (a *Agent) WithTemperature(t float32) *Agent {
	if t > 0 {
		a.temperature = t
	}
	return a
}

// WithDuration attaches a histogram labelled {intent}.
func (a *Agent) WithDuration(h *prometheus.HistogramVec) *Agent {
	a.duration = h
	return a
}

// Route runs the full pipeline. Tool failures and fusion failures are
// reported inside the Response; only a cancelled context surfaces as an error.
// ToolsUsed is the full routing-table row, while ToolResults holds only the
// tools that were actually dispatched.
func (a *Agent) Route(ctx context.Context, query string) (Response, error) {
	ctx, logger := logpkg.With(ctx, a.logger, zap.String("trace_id", uuid.NewString()))
	start := time.Now()

	in := a.classifier.Classify(ctx, query)
	defer func() {
		if a.duration != nil {
			a.duration.WithLabelValues(in.String()).Observe(time.Since(start).Seconds())
		}
	}()

	wanted := a.table.Lookup(in)
	logger.Info("Tools selected",
		zap.String("intent", in.String()),
		zap.Strings("tools", names(wanted)),
	)

	trail := make([]domtool.Invocation, 0, len(wanted))
	for _, name := range wanted {
		if !a.tools.Has(name) {
			logger.Debug("Tool not configured, skipping", zap.String("tool", string(name)))
			continue
		}
		if err := ctx.Err(); err != nil {
			return Response{}, fmt.Errorf("route: %w", err)
		}
		res := a.tools.Execute(ctx, name, query, domtool.Context{})
		trail = append(trail, domtool.Invocation{Tool: name, Result: res})
	}
	if err := ctx.Err(); err != nil {
		return Response{}, fmt.Errorf("route: %w", err)
	}

	answer := a.fuse(ctx, query, in, trail)

	logger.Info("Query routed",
		zap.String("intent", in.String()),
		zap.Int("tools", len(trail)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return Response{
		Success:     true,
		Query:       query,
		Intent:      in,
		ToolsUsed:   wanted,
		ToolResults: trail,
		Answer:      answer,
	}, nil
}

// Query is the outer entry point: it never returns an error and never
// panics; failures come back as {success:false, error}.
func (a *Agent) Query(ctx context.Context, query string) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			logpkg.FromContext(ctx).Error("Router panicked", zap.Any("panic", r))
			resp = Response{Success: false, Error: fmt.Sprint(r)}
		}
	}()

	resp, err := a.Route(ctx, query)
	if err != nil {
		a.logger.Error("Route failed", zap.Error(err))
		return Response{Success: false, Error: err.Error()}
	}
	return resp
}

func (a *Agent) fuse(ctx context.Context, query string, in domintent.Intent, trail []domtool.Invocation) string {
	text := buildContext(trail)
	if text == "" {
		return NoInformationAnswer
	}

	answer, err := a.chat.Complete(ctx, domain.ChatRequest{
		Purpose: "fuse",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: answerPrompt(in)},
			{Role: domain.RoleUser, Content: "情報:\n" + text + "\n\n質問: " + query},
		},
		Temperature: a.temperature,
	})
	if err != nil {
		logpkg.FromContext(ctx).Error("Answer fusion failed", zap.Error(err))
		return fusionErrorPrefix + err.Error()
	}
	return answer
}

// buildContext projects successful results into labelled blocks joined by a blank line.
func buildContext(trail []domtool.Invocation) string {
	parts := make([]string, 0, len(trail))
	for _, inv := range trail {
		res := inv.Result
		if !res.Success {
			continue
		}
		switch res.Payload {
		case domtool.PayloadDocuments:
			if len(res.Documents) == 0 {
				continue
			}
			var b strings.Builder
			fmt.Fprintf(&b, "[%sの結果]", inv.Tool)
			for i, d := range res.Documents {
				if i == maxDocumentsPerTool {
					break
				}
				b.WriteString("\n- ")
				b.WriteString(d.Content)
			}
			parts = append(parts, b.String())
		case domtool.PayloadSummary:
			if res.Summary != "" {
				parts = append(parts, labelSummary+"\n"+res.Summary)
			}
		case domtool.PayloadComparison:
			if res.Comparison != "" {
				parts = append(parts, labelComparison+"\n"+res.Comparison)
			}
		case domtool.PayloadNone:
		}
	}
	return strings.Join(parts, "\n\n")
}

func names(ns []domtool.Name) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = string(n)
	}
	return out
}
