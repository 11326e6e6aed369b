package chi

import (
	"net/http"

	domintent "github.com/kailas-cloud/ragrouter/internal/domain/intent"
)

// Service identity reported by /api/health and /api/info.
const (
	ServiceName    = "GPTlike Router Agent RAG"
	ServiceVersion = "3.0.0"
	AgentType      = "Router Agent Pattern"
)

var intentLabels = map[domintent.Intent]string{
	domintent.FactualSearch:  "事実検索",
	domintent.SemanticSearch: "意味検索",
	domintent.Summarization:  "要約",
	domintent.Comparison:     "比較",
	domintent.Analysis:       "分析",
	domintent.MultiHop:       "複数ステップ推論",
	domintent.Unknown:        "その他",
}

var features = []string{
	"Router Agent Pattern - 真のエージェンティックRAG",
	"質問意図の自動分類（7種類）",
	"複数の専門ツール（意味検索、キーワード検索、要約、比較）",
	"意図に応じた最適なツール選択",
	"Azure OpenAI統合",
	"Azure AI Search / Redis 全文検索対応",
	"インメモリL2ベクトル検索",
	"Bearer APIキー認証",
}

// Info handles GET /api/info.
func (s *Server) Info(w http.ResponseWriter, _ *http.Request) {
	intents := make([]string, 0, len(domintent.All))
	for _, i := range domintent.All {
		intents = append(intents, string(i)+" - "+intentLabels[i])
	}

	writeJSON(w, http.StatusOK, InfoResponse{
		Service:      ServiceName,
		Version:      ServiceVersion,
		AgentPattern: "Router Agent",
		Description:  "質問の意図を自動分類し、最適なツールを選択して回答するエージェンティックRAG",
		Endpoints: map[string]Endpoint{
			"chat":           {Path: "/api/chat", Method: http.MethodPost, Description: "Router Agentでチャット（意図自動分類）"},
			"documents_load": {Path: "/api/documents/load", Method: http.MethodPost, Description: "ドキュメントをロード"},
			"health":         {Path: "/api/health", Method: http.MethodGet, Description: "ヘルスチェック"},
			"info":           {Path: "/api/info", Method: http.MethodGet, Description: "API情報"},
		},
		Features:         features,
		SupportedIntents: intents,
		Tools:            s.tools,
	})
}
