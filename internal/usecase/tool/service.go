package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragrouter/internal/domain"
	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
	logpkg "github.com/kailas-cloud/ragrouter/internal/logger"
)

const (
	summarizePrompt = "以下のテキストを簡潔に要約してください。重要なポイントを3-5個の箇条書きにまとめてください。"
	comparePrompt   = "以下の情報を基に、ユーザーの質問に答えてください。比較分析を行い、違いや共通点を明確にしてください。"
)

// Config holds per-tool defaults.
type Config struct {
	SemanticK             int
	KeywordTop            int
	ComparisonK           int
	SummaryTemperature    float32
	ComparisonTemperature float32
}

// DefaultConfig returns the stock tool parameters.
func DefaultConfig() Config {
	return Config{
		SemanticK:             3,
		KeywordTop:            3,
		ComparisonK:           5,
		SummaryTemperature:    0.3,
		ComparisonTemperature: 0.5,
	}
}

// Set is the closed set of tools available to the router.
// keyword_search is present only when a keyword backend was supplied.
type Set struct {
	store   DocumentSearcher
	keyword KeywordSearcher
	chat    Completer
	cfg     Config
	total   *prometheus.CounterVec
}

// New creates a tool set. keyword may be nil; total (labels {tool, status}) may be nil.
func New(store DocumentSearcher, chat Completer, keyword KeywordSearcher, total *prometheus.CounterVec) *Set {
	return &Set{store: store, keyword: keyword, chat: chat, cfg: DefaultConfig(), total: total}
}

// WithConfig overrides the tool defaults. Zero values keep the defaults.
func (s *Set) WithConfig(cfg Config) *Set {
	def := DefaultConfig()
	if cfg.SemanticK <= 0 {
		cfg.SemanticK = def.SemanticK
	}
	if cfg.KeywordTop <= 0 {
		cfg.KeywordTop = def.KeywordTop
	}
	if cfg.ComparisonK <= 0 {
		cfg.ComparisonK = def.ComparisonK
	}
	if cfg.SummaryTemperature <= 0 {
		cfg.SummaryTemperature = def.SummaryTemperature
	}
	if cfg.ComparisonTemperature <= 0 {
		cfg.ComparisonTemperature = def.ComparisonTemperature
	}
	s.cfg = cfg
	return s
}

// Has reports whether the tool is part of the set.
func (s *Set) Has(name domtool.Name) bool {
	switch name {
	case domtool.SemanticSearch, domtool.Summarization, domtool.Comparison:
		return true
	case domtool.KeywordSearch:
		return s.keyword != nil
	}
	return false
}

// Names lists the tools present in the set.
func (s *Set) Names() []domtool.Name {
	names := []domtool.Name{domtool.SemanticSearch}
	if s.keyword != nil {
		names = append(names, domtool.KeywordSearch)
	}
	return append(names, domtool.Summarization, domtool.Comparison)
}

// Execute runs one tool. It never returns an error: downstream failures
// (and panics) become a Result with Success=false and a message.
func (s *Set) Execute(ctx context.Context, name domtool.Name, query string, tc domtool.Context) (res domtool.Result) {
	logger := logpkg.FromContext(ctx).With(zap.String("tool", string(name)))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Tool panicked", zap.Any("panic", r), zap.Stack("stacktrace"))
			res = domtool.Failure(fmt.Sprintf("ツール実行エラー: %v", r))
		}
		s.inc(name, res.Success)
	}()

	logger.Info("Executing tool")

	switch {
	case !s.Has(name):
		return domtool.Failure(fmt.Sprintf("ツール %s は利用できません。", name))
	case name == domtool.SemanticSearch:
		return s.semanticSearch(ctx, logger, query, tc)
	case name == domtool.KeywordSearch:
		return s.keywordSearch(ctx, logger, query, tc)
	case name == domtool.Summarization:
		return s.summarize(ctx, logger, query, tc)
	case name == domtool.Comparison:
		return s.compare(ctx, logger, query)
	}
	return domtool.Failure(fmt.Sprintf("ツール %s は利用できません。", name))
}

func (s *Set) semanticSearch(ctx context.Context, logger *zap.Logger, query string, tc domtool.Context) domtool.Result {
	k := tc.K
	if k <= 0 {
		k = s.cfg.SemanticK
	}

	docs, err := s.store.Search(ctx, query, k, nil)
	if err != nil {
		logger.Error("Semantic search error", zap.Error(err))
		return domtool.Failure("検索エラー: " + err.Error())
	}
	if len(docs) == 0 {
		return domtool.Result{
			Success:   false,
			Message:   "関連するドキュメントが見つかりませんでした。",
			Documents: []domtool.Document{},
			Payload:   domtool.PayloadDocuments,
		}
	}

	out := make([]domtool.Document, len(docs))
	for i, d := range docs {
		score := d.Score
		out[i] = domtool.Document{Content: d.Content, Metadata: d.Metadata, Score: &score}
	}
	return domtool.Result{
		Success:   true,
		Message:   fmt.Sprintf("%d件のドキュメントを見つけました。", len(out)),
		Documents: out,
		Payload:   domtool.PayloadDocuments,
	}
}

func (s *Set) keywordSearch(ctx context.Context, logger *zap.Logger, query string, tc domtool.Context) domtool.Result {
	top := tc.Top
	if top <= 0 {
		top = s.cfg.KeywordTop
	}

	hits, err := s.keyword.Search(ctx, query, top)
	if err != nil {
		logger.Error("Keyword search error", zap.Error(err))
		return domtool.Failure("検索エラー: " + err.Error())
	}
	if len(hits) == 0 {
		return domtool.Failure("該当するドキュメントが見つかりませんでした。")
	}

	out := make([]domtool.Document, len(hits))
	for i, h := range hits {
		meta := h.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		out[i] = domtool.Document{Content: h.Content, Metadata: meta}
	}
	return domtool.Result{
		Success:   true,
		Message:   fmt.Sprintf("%d件のドキュメントを見つけました。", len(out)),
		Documents: out,
		Payload:   domtool.PayloadDocuments,
	}
}

func (s *Set) summarize(ctx context.Context, logger *zap.Logger, query string, tc domtool.Context) domtool.Result {
	text := tc.Text
	if text == "" {
		text = query
	}

	summary, err := s.chat.Complete(ctx, domain.ChatRequest{
		Purpose: "summarize",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: summarizePrompt},
			{Role: domain.RoleUser, Content: text},
		},
		Temperature: s.cfg.SummaryTemperature,
	})
	if err != nil {
		logger.Error("Summarization error", zap.Error(err))
		return domtool.Failure("要約エラー: " + err.Error())
	}

	return domtool.Result{Success: true, Summary: summary, Payload: domtool.PayloadSummary}
}

func (s *Set) compare(ctx context.Context, logger *zap.Logger, query string) domtool.Result {
	docs, err := s.store.Search(ctx, query, s.cfg.ComparisonK, nil)
	if err != nil {
		logger.Error("Comparison search error", zap.Error(err))
		return domtool.Failure("比較エラー: " + err.Error())
	}
	if len(docs) == 0 {
		return domtool.Failure("比較するための情報が見つかりませんでした。")
	}

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}

	comparison, err := s.chat.Complete(ctx, domain.ChatRequest{
		Purpose: "compare",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: comparePrompt},
			{Role: domain.RoleUser, Content: "情報:\n" + strings.Join(contents, "\n\n") + "\n\n質問: " + query},
		},
		Temperature: s.cfg.ComparisonTemperature,
	})
	if err != nil {
		logger.Error("Comparison error", zap.Error(err))
		return domtool.Failure("比較エラー: " + err.Error())
	}

	return domtool.Result{
		Success:    true,
		Comparison: comparison,
		Sources:    len(docs),
		Payload:    domtool.PayloadComparison,
	}
}

func (s *Set) inc(name domtool.Name, ok bool) {
	if s.total == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	s.total.WithLabelValues(string(name), status).Inc()
}
