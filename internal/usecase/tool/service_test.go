package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/ragrouter/internal/domain"
	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
)

func TestHasAndNames_KeywordGatedByConfiguration(t *testing.T) {
	without := New(&mockStore{}, &mockCompleter{}, nil, nil)
	if without.Has(domtool.KeywordSearch) {
		t.Error("keyword_search should be absent without a backend")
	}
	if len(without.Names()) != 3 {
		t.Errorf("expected 3 tools, got %v", without.Names())
	}

	with := New(&mockStore{}, &mockCompleter{}, &mockKeyword{}, nil)
	if !with.Has(domtool.KeywordSearch) {
		t.Error("keyword_search should be present with a backend")
	}
	if len(with.Names()) != 4 {
		t.Errorf("expected 4 tools, got %v", with.Names())
	}
	if with.Has("translate") {
		t.Error("unknown tool should be absent")
	}
}

func TestSemanticSearch(t *testing.T) {
	store := &mockStore{docs: scored("a", "b", "c", "d")}
	set := New(store, &mockCompleter{}, nil, nil)

	res := set.Execute(context.Background(), domtool.SemanticSearch, "q", domtool.Context{})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if store.lastK != 3 {
		t.Errorf("expected default k=3, got %d", store.lastK)
	}
	if len(res.Documents) != 3 || res.Payload != domtool.PayloadDocuments {
		t.Fatalf("unexpected payload: %+v", res)
	}
	if res.Documents[1].Score == nil || *res.Documents[1].Score != 1 {
		t.Errorf("expected score 1 on second doc, got %v", res.Documents[1].Score)
	}
	if res.Message != "3件のドキュメントを見つけました。" {
		t.Errorf("unexpected message %q", res.Message)
	}

	set.Execute(context.Background(), domtool.SemanticSearch, "q", domtool.Context{K: 1})
	if store.lastK != 1 {
		t.Errorf("expected context k=1, got %d", store.lastK)
	}
}

func TestSemanticSearch_NoDocuments(t *testing.T) {
	set := New(&mockStore{}, &mockCompleter{}, nil, nil)
	res := set.Execute(context.Background(), domtool.SemanticSearch, "test", domtool.Context{})
	if res.Success {
		t.Fatal("expected failure on empty store")
	}
	if res.Message == "" {
		t.Error("expected a message")
	}
}

func TestSemanticSearch_StoreError(t *testing.T) {
	set := New(&mockStore{err: errors.New("embed down")}, &mockCompleter{}, nil, nil)
	res := set.Execute(context.Background(), domtool.SemanticSearch, "q", domtool.Context{})
	if res.Success || !strings.Contains(res.Message, "embed down") {
		t.Fatalf("expected failure carrying error, got %+v", res)
	}
}

func TestKeywordSearch(t *testing.T) {
	kw := &mockKeyword{hits: []domain.KeywordHit{
		{Content: "price list", Metadata: map[string]any{"id": "1"}},
		{Content: "catalog"},
	}}
	set := New(&mockStore{}, &mockCompleter{}, kw, nil)

	res := set.Execute(context.Background(), domtool.KeywordSearch, "price", domtool.Context{Top: 5})
	if !res.Success || len(res.Documents) != 2 {
		t.Fatalf("expected 2 docs, got %+v", res)
	}
	if kw.lastTop != 5 {
		t.Errorf("expected top=5, got %d", kw.lastTop)
	}
	if res.Documents[1].Metadata == nil {
		t.Error("metadata should default to an empty map")
	}
	if res.Documents[0].Score != nil {
		t.Error("keyword hits carry no distance score")
	}
}

func TestKeywordSearch_Failures(t *testing.T) {
	empty := New(&mockStore{}, &mockCompleter{}, &mockKeyword{}, nil)
	if res := empty.Execute(context.Background(), domtool.KeywordSearch, "q", domtool.Context{}); res.Success {
		t.Error("expected failure on empty results")
	}

	broken := New(&mockStore{}, &mockCompleter{}, &mockKeyword{err: errors.New("403 forbidden")}, nil)
	res := broken.Execute(context.Background(), domtool.KeywordSearch, "q", domtool.Context{})
	if res.Success || !strings.Contains(res.Message, "403 forbidden") {
		t.Fatalf("expected failure with service error, got %+v", res)
	}

	absent := New(&mockStore{}, &mockCompleter{}, nil, nil)
	if res := absent.Execute(context.Background(), domtool.KeywordSearch, "q", domtool.Context{}); res.Success {
		t.Error("expected failure when keyword search is not configured")
	}
}

func TestSummarization(t *testing.T) {
	chat := &mockCompleter{reply: "- point one\n- point two"}
	set := New(&mockStore{}, chat, nil, nil)

	res := set.Execute(context.Background(), domtool.Summarization, "the query", domtool.Context{})
	if !res.Success || res.Summary != chat.reply || res.Payload != domtool.PayloadSummary {
		t.Fatalf("unexpected result: %+v", res)
	}
	req := chat.reqs[0]
	if req.Messages[1].Content != "the query" {
		t.Errorf("expected query as text, got %q", req.Messages[1].Content)
	}
	if req.Temperature != 0.3 {
		t.Errorf("expected temperature 0.3, got %v", req.Temperature)
	}
	if !strings.Contains(req.Messages[0].Content, "3-5") {
		t.Error("expected bullet-point instruction")
	}

	set.Execute(context.Background(), domtool.Summarization, "q", domtool.Context{Text: "long text"})
	if chat.reqs[1].Messages[1].Content != "long text" {
		t.Errorf("expected context text, got %q", chat.reqs[1].Messages[1].Content)
	}
}

func TestSummarization_Error(t *testing.T) {
	set := New(&mockStore{}, &mockCompleter{err: errors.New("429")}, nil, nil)
	res := set.Execute(context.Background(), domtool.Summarization, "q", domtool.Context{})
	if res.Success || !strings.Contains(res.Message, "429") {
		t.Fatalf("expected failure, got %+v", res)
	}
}

func TestComparison(t *testing.T) {
	store := &mockStore{docs: scored("A is fast", "B is cheap", "C", "D", "E", "F")}
	chat := &mockCompleter{reply: "A is faster, B is cheaper"}
	set := New(store, chat, nil, nil)

	res := set.Execute(context.Background(), domtool.Comparison, "AとBの違いは?", domtool.Context{})
	if !res.Success || res.Comparison != chat.reply || res.Payload != domtool.PayloadComparison {
		t.Fatalf("unexpected result: %+v", res)
	}
	if store.lastK != 5 {
		t.Errorf("expected k=5, got %d", store.lastK)
	}
	if res.Sources != 5 {
		t.Errorf("expected 5 sources, got %d", res.Sources)
	}
	if len(chat.reqs) != 1 {
		t.Fatalf("expected one chat call, got %d", len(chat.reqs))
	}
	user := chat.reqs[0].Messages[1].Content
	if !strings.HasPrefix(user, "情報:\nA is fast\n\nB is cheap") || !strings.HasSuffix(user, "質問: AとBの違いは?") {
		t.Errorf("unexpected user content %q", user)
	}
	if chat.reqs[0].Temperature != 0.5 {
		t.Errorf("expected temperature 0.5, got %v", chat.reqs[0].Temperature)
	}
}

func TestComparison_NoSupportSkipsLLM(t *testing.T) {
	chat := &mockCompleter{reply: "x"}
	set := New(&mockStore{}, chat, nil, nil)

	res := set.Execute(context.Background(), domtool.Comparison, "q", domtool.Context{})
	if res.Success {
		t.Fatal("expected failure without supporting documents")
	}
	if len(chat.reqs) != 0 {
		t.Errorf("expected no chat call, got %d", len(chat.reqs))
	}
}

func TestComparison_LLMError(t *testing.T) {
	set := New(&mockStore{docs: scored("a")}, &mockCompleter{err: errors.New("boom")}, nil, nil)
	res := set.Execute(context.Background(), domtool.Comparison, "q", domtool.Context{})
	if res.Success || !strings.Contains(res.Message, "boom") {
		t.Fatalf("expected failure, got %+v", res)
	}
}

func TestExecute_RecoversPanics(t *testing.T) {
	set := New(&mockStore{panics: true}, &mockCompleter{}, nil, nil)
	res := set.Execute(context.Background(), domtool.SemanticSearch, "q", domtool.Context{})
	if res.Success || !strings.Contains(res.Message, "index corrupted") {
		t.Fatalf("expected recovered failure, got %+v", res)
	}
}

func TestWithConfig(t *testing.T) {
	store := &mockStore{docs: scored("a", "b", "c", "d", "e", "f", "g", "h")}
	set := New(store, &mockCompleter{reply: "ok"}, nil, nil).WithConfig(Config{SemanticK: 7, ComparisonK: 2})

	set.Execute(context.Background(), domtool.SemanticSearch, "q", domtool.Context{})
	if store.lastK != 7 {
		t.Errorf("expected k=7, got %d", store.lastK)
	}
	res := set.Execute(context.Background(), domtool.Comparison, "q", domtool.Context{})
	if store.lastK != 2 || res.Sources != 2 {
		t.Errorf("expected comparison k=2, got k=%d sources=%d", store.lastK, res.Sources)
	}
	if set.cfg.KeywordTop != 3 || set.cfg.SummaryTemperature != 0.3 {
		t.Errorf("zero values should keep defaults, got %+v", set.cfg)
	}
}

func TestExecute_Metrics(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_tool_total"}, []string{"tool", "status"})
	set := New(&mockStore{docs: scored("a")}, &mockCompleter{err: errors.New("x")}, nil, total)

	set.Execute(context.Background(), domtool.SemanticSearch, "q", domtool.Context{})
	set.Execute(context.Background(), domtool.Summarization, "q", domtool.Context{})

	if v := testutil.ToFloat64(total.WithLabelValues("semantic_search", "success")); v != 1 {
		t.Errorf("semantic_search/success = %f", v)
	}
	if v := testutil.ToFloat64(total.WithLabelValues("summarization", "failure")); v != 1 {
		t.Errorf("summarization/failure = %f", v)
	}
}
