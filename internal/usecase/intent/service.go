package intent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragrouter/internal/domain"
	domintent "github.com/kailas-cloud/ragrouter/internal/domain/intent"
	logpkg "github.com/kailas-cloud/ragrouter/internal/logger"
)

// DefaultTemperature keeps classification close to deterministic.
const DefaultTemperature = 0.1

const systemPrompt = `あなたは質問の意図を分類するエキスパートです。
以下の質問を分析し、最も適切なカテゴリを1つ選んでください：

1. factual_search: 特定の事実や情報を探している（「〜とは何ですか」「〜の価格は」）
2. semantic_search: 概念や意味的な検索（「〜に関する情報」「〜について教えて」）
3. summarization: 要約を求めている（「まとめて」「要約して」）
4. comparison: 複数のものを比較（「AとBの違いは」「どちらが良い」）
5. analysis: 分析や考察を求めている（「なぜ」「どう思うか」「評価して」）
6. multi_hop: 複数ステップの推論が必要（「〜を調べてから、その情報を使って〜」）
7. unknown: 上記に当てはまらない

JSON形式で回答してください：{"intent": "カテゴリ名", "reasoning": "理由"}`

type verdict struct {
	Intent    string `json:"intent"`
	Reasoning string `json:"reasoning"`
}

// Classifier maps a free-text query to one of the seven intents.
type Classifier struct {
	chat        Completer
	temperature float32
	total       *prometheus.CounterVec
}

// New creates a classifier. total is a counter vec labelled {intent, outcome}; it may be nil.
func New(chat Completer, total *prometheus.CounterVec) *Classifier {
	return &Classifier{chat: chat, temperature: DefaultTemperature, total: total}
}

// WithTemperature overrides the sampling temperature.
func (c *Classifier) WithTemperature(t float32) *Classifier {
	c.temperature = t
	return c
}

// Classify never fails: call errors, malformed JSON and labels outside the
// taxonomy all degrade to intent.Unknown.
func (c *Classifier) Classify(ctx context.Context, query string) domintent.Intent {
	logger := logpkg.FromContext(ctx)

	raw, err := c.chat.Complete(ctx, domain.ChatRequest{
		Purpose: "classify",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: systemPrompt},
			{Role: domain.RoleUser, Content: "質問: " + query},
		},
		Temperature: c.temperature,
		JSON:        true,
	})
	if err != nil {
		logger.Error("Intent classification failed", zap.Error(err))
		return c.fallback()
	}

	var v verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		logger.Warn("Intent classification returned malformed JSON",
			zap.String("raw", raw),
			zap.Error(err),
		)
		return c.fallback()
	}
	if v.Intent == "" {
		v.Intent = string(domintent.Unknown)
	}

	got := domintent.Parse(v.Intent)
	if string(got) != v.Intent {
		logger.Warn("Intent label outside taxonomy", zap.String("label", v.Intent))
		return c.fallback()
	}

	logger.Info("Intent classified",
		zap.String("intent", got.String()),
		zap.String("reasoning", v.Reasoning),
	)
	c.inc(got, "ok")
	return got
}

func (c *Classifier) fallback() domintent.Intent {
	c.inc(domintent.Unknown, "fallback")
	return domintent.Unknown
}

func (c *Classifier) inc(i domintent.Intent, outcome string) {
	if c.total != nil {
		c.total.WithLabelValues(i.String(), outcome).Inc()
	}
}
