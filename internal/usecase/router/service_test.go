package router

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	domintent "github.com/kailas-cloud/ragrouter/internal/domain/intent"
	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
)

func TestRoute_RoutingTable(t *testing.T) {
	tests := []struct {
		intent domintent.Intent
		want   []domtool.Name
	}{
		{domintent.FactualSearch, []domtool.Name{domtool.KeywordSearch, domtool.SemanticSearch}},
		{domintent.SemanticSearch, []domtool.Name{domtool.SemanticSearch}},
		{domintent.Summarization, []domtool.Name{domtool.SemanticSearch, domtool.Summarization}},
		{domintent.Comparison, []domtool.Name{domtool.Comparison}},
		{domintent.Analysis, []domtool.Name{domtool.SemanticSearch}},
		{domintent.MultiHop, []domtool.Name{domtool.SemanticSearch, domtool.Comparison}},
		{domintent.Unknown, []domtool.Name{domtool.SemanticSearch}},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			tools := newMockTools()
			agent := New(&mockClassifier{intent: tt.intent}, tools, &mockCompleter{reply: "ok"}, nil)

			resp, err := agent.Route(context.Background(), "質問")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(resp.ToolsUsed, tt.want) {
				t.Errorf("tools_used = %v, want %v", resp.ToolsUsed, tt.want)
			}
			if !slices.Equal(tools.executed, tt.want) {
				t.Errorf("executed = %v, want %v", tools.executed, tt.want)
			}
			if len(resp.ToolResults) != len(tt.want) {
				t.Fatalf("expected %d tool results, got %d", len(tt.want), len(resp.ToolResults))
			}
			for i, inv := range resp.ToolResults {
				if inv.Tool != tt.want[i] {
					t.Errorf("tool_results[%d].tool = %s, want %s", i, inv.Tool, tt.want[i])
				}
			}
		})
	}
}

func TestTable_LookupMissFallsBack(t *testing.T) {
	table := NewTable(map[domintent.Intent][]domtool.Name{})
	got := table.Lookup(domintent.Analysis)
	if !slices.Equal(got, []domtool.Name{domtool.SemanticSearch}) {
		t.Errorf("expected fallback to semantic_search, got %v", got)
	}
}

func TestTable_LookupReturnsCopy(t *testing.T) {
	table := DefaultTable()
	got := table.Lookup(domintent.FactualSearch)
	got[0] = domtool.Comparison

	again := table.Lookup(domintent.FactualSearch)
	if again[0] != domtool.KeywordSearch {
		t.Errorf("table mutated through Lookup result: %v", again)
	}
}

func TestRoute_KeywordAbsent(t *testing.T) {
	tools := newMockTools()
	tools.absent[domtool.KeywordSearch] = true
	tools.results[domtool.SemanticSearch] = docsResult("doc")
	agent := New(&mockClassifier{intent: domintent.FactualSearch}, tools, &mockCompleter{reply: "answer"}, nil)

	resp, err := agent.Route(context.Background(), "価格は?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantUsed := []domtool.Name{domtool.KeywordSearch, domtool.SemanticSearch}
	if !slices.Equal(resp.ToolsUsed, wantUsed) {
		t.Errorf("tools_used = %v, want %v", resp.ToolsUsed, wantUsed)
	}
	wantRun := []domtool.Name{domtool.SemanticSearch}
	if !slices.Equal(tools.executed, wantRun) {
		t.Errorf("executed = %v, want %v", tools.executed, wantRun)
	}
	if len(resp.ToolResults) != 1 || resp.ToolResults[0].Tool != domtool.SemanticSearch {
		t.Errorf("tool_results = %+v, want only semantic_search", resp.ToolResults)
	}
}

func TestRoute_FusesDocuments(t *testing.T) {
	tools := newMockTools()
	tools.results[domtool.KeywordSearch] = docsResult("k1", "k2", "k3", "k4")
	tools.results[domtool.SemanticSearch] = docsResult("s1")
	chat := &mockCompleter{reply: "final"}
	agent := New(&mockClassifier{intent: domintent.FactualSearch}, tools, chat, nil)

	resp, err := agent.Route(context.Background(), "Q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.Answer != "final" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Query != "Q" || resp.Intent != domintent.FactualSearch {
		t.Errorf("query/intent not echoed: %+v", resp)
	}
	if chat.calls() != 1 {
		t.Fatalf("expected 1 fusion call, got %d", chat.calls())
	}

	req := chat.reqs[0]
	if req.Purpose != "fuse" {
		t.Errorf("purpose = %q, want fuse", req.Purpose)
	}
	if req.Temperature != DefaultFuseTemperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, DefaultFuseTemperature)
	}
	if req.Messages[0].Content != answerPrompts[domintent.FactualSearch] {
		t.Errorf("unexpected system prompt: %q", req.Messages[0].Content)
	}

	wantCtx := "[keyword_searchの結果]\n- k1\n- k2\n- k3\n\n[semantic_searchの結果]\n- s1"
	wantUser := "情報:\n" + wantCtx + "\n\n質問: Q"
	if req.Messages[1].Content != wantUser {
		t.Errorf("user message =\n%q\nwant\n%q", req.Messages[1].Content, wantUser)
	}
}

func TestRoute_SummaryAndComparisonLabels(t *testing.T) {
	tools := newMockTools()
	tools.results[domtool.SemanticSearch] = docsResult("d")
	tools.results[domtool.Summarization] = domtool.Result{
		Success: true, Summary: "- point", Payload: domtool.PayloadSummary,
	}
	chat := &mockCompleter{reply: "ok"}
	agent := New(&mockClassifier{intent: domintent.Summarization}, tools, chat, nil)

	if _, err := agent.Route(context.Background(), "まとめて"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user := chat.reqs[0].Messages[1].Content
	if !strings.Contains(user, "[要約]\n- point") {
		t.Errorf("summary block missing: %q", user)
	}

	tools = newMockTools()
	tools.results[domtool.Comparison] = domtool.Result{
		Success: true, Comparison: "A is faster", Sources: 2, Payload: domtool.PayloadComparison,
	}
	chat = &mockCompleter{reply: "ok"}
	agent = New(&mockClassifier{intent: domintent.Comparison}, tools, chat, nil)

	resp, err := agent.Route(context.Background(), "AとBの違いは?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(resp.ToolsUsed, []domtool.Name{domtool.Comparison}) {
		t.Errorf("tools_used = %v", resp.ToolsUsed)
	}
	user = chat.reqs[0].Messages[1].Content
	if !strings.HasPrefix(user, "情報:\n[比較分析]\nA is faster") {
		t.Errorf("comparison block missing: %q", user)
	}
	if chat.reqs[0].Messages[0].Content != answerPrompts[domintent.Comparison] {
		t.Errorf("unexpected system prompt: %q", chat.reqs[0].Messages[0].Content)
	}
}

func TestRoute_AllToolsFailedSkipsFusion(t *testing.T) {
	tools := newMockTools()
	tools.results[domtool.SemanticSearch] = domtool.Result{
		Success:   false,
		Message:   "関連するドキュメントが見つかりませんでした。",
		Documents: []domtool.Document{},
		Payload:   domtool.PayloadDocuments,
	}
	chat := &mockCompleter{reply: "should not be used"}
	agent := New(&mockClassifier{intent: domintent.SemanticSearch}, tools, chat, nil)

	resp, err := agent.Route(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != NoInformationAnswer {
		t.Errorf("answer = %q, want no-information answer", resp.Answer)
	}
	if chat.calls() != 0 {
		t.Errorf("expected no chat call, got %d", chat.calls())
	}
	if len(resp.ToolResults) != 1 || resp.ToolResults[0].Result.Success {
		t.Errorf("expected one failed tool result, got %+v", resp.ToolResults)
	}
}

func TestRoute_SuccessWithEmptyPayloadIsNotContext(t *testing.T) {
	tools := newMockTools()
	tools.results[domtool.SemanticSearch] = domtool.Result{Success: true, Payload: domtool.PayloadDocuments}
	chat := &mockCompleter{reply: "x"}
	agent := New(&mockClassifier{intent: domintent.Unknown}, tools, chat, nil)

	resp, err := agent.Route(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != NoInformationAnswer || chat.calls() != 0 {
		t.Errorf("expected no-information answer without chat, got %q (%d calls)", resp.Answer, chat.calls())
	}
}

func TestRoute_FusionErrorEmbeddedInAnswer(t *testing.T) {
	tools := newMockTools()
	tools.results[domtool.SemanticSearch] = docsResult("doc")
	chat := &mockCompleter{err: errors.New("rate limited")}
	agent := New(&mockClassifier{intent: domintent.Analysis}, tools, chat, nil)

	resp, err := agent.Route(context.Background(), "なぜ?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Error("fusion failure must keep success=true")
	}
	if resp.Answer != "回答生成中にエラーが発生しました: rate limited" {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
}

func TestRoute_UnknownUsesGenericPrompt(t *testing.T) {
	tools := newMockTools()
	tools.results[domtool.SemanticSearch] = docsResult("doc")
	chat := &mockCompleter{reply: "ok"}
	agent := New(&mockClassifier{intent: domintent.Unknown}, tools, chat, nil)

	if _, err := agent.Route(context.Background(), "?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat.reqs[0].Messages[0].Content != genericPrompt {
		t.Errorf("unexpected system prompt: %q", chat.reqs[0].Messages[0].Content)
	}
}

func TestRoute_BlankQueryIsRouted(t *testing.T) {
	tools := newMockTools()
	agent := New(&mockClassifier{intent: domintent.Unknown}, tools, &mockCompleter{}, nil)

	resp, err := agent.Route(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.Answer != NoInformationAnswer {
		t.Errorf("response = %+v", resp)
	}
	if !slices.Equal(tools.executed, []domtool.Name{domtool.SemanticSearch}) {
		t.Errorf("executed = %v", tools.executed)
	}
}

func TestRoute_CancelledBetweenTools(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tools := newMockTools()
	tools.results[domtool.KeywordSearch] = docsResult("k")
	tools.onExec = func(domtool.Name) { cancel() }
	chat := &mockCompleter{reply: "x"}
	agent := New(&mockClassifier{intent: domintent.FactualSearch}, tools, chat, nil)

	_, err := agent.Route(ctx, "q")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(tools.executed) != 1 {
		t.Errorf("expected dispatch to stop after first tool, got %v", tools.executed)
	}
	if chat.calls() != 0 {
		t.Errorf("expected no fusion call, got %d", chat.calls())
	}
}

func TestQuery_ErrorShape(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	agent := New(&mockClassifier{intent: domintent.Unknown}, newMockTools(), &mockCompleter{}, nil)

	resp := agent.Query(ctx, "q")
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error == "" {
		t.Error("expected error message")
	}
	if resp.Answer != "" || resp.ToolsUsed != nil {
		t.Errorf("failure response should carry only the error: %+v", resp)
	}
}

func TestQuery_RecoversPanic(t *testing.T) {
	agent := New(&mockClassifier{panics: true}, newMockTools(), &mockCompleter{}, nil)

	resp := agent.Query(context.Background(), "q")
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "classifier exploded" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestQuery_PassesThroughSuccess(t *testing.T) {
	tools := newMockTools()
	tools.results[domtool.SemanticSearch] = docsResult("doc")
	agent := New(&mockClassifier{intent: domintent.SemanticSearch}, tools, &mockCompleter{reply: "hi"}, nil)

	resp := agent.Query(context.Background(), "q")
	if !resp.Success || resp.Answer != "hi" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRoute_ObservesDuration(t *testing.T) {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_route_seconds"}, []string{"intent"})
	tools := newMockTools()
	agent := New(&mockClassifier{intent: domintent.Analysis}, tools, &mockCompleter{}, nil).WithDuration(h)

	if _, err := agent.Route(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := testutil.CollectAndCount(h); n != 1 {
		t.Errorf("expected 1 observed series, got %d", n)
	}
}

func TestWithTemperature(t *testing.T) {
	tools := newMockTools()
	tools.results[domtool.SemanticSearch] = docsResult("doc")
	chat := &mockCompleter{reply: "ok"}
	agent := New(&mockClassifier{intent: domintent.SemanticSearch}, tools, chat, nil).WithTemperature(0.2)

	if _, err := agent.Route(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat.reqs[0].Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", chat.reqs[0].Temperature)
	}
}
