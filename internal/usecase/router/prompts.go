package router

import domintent "github.com/kailas-cloud/ragrouter/internal/domain/intent"

// NoInformationAnswer is returned when no tool produced usable context.
const NoInformationAnswer = "申し訳ございません。関連する情報が見つかりませんでした。"

const (
	genericPrompt     = "以下の情報を基に、ユーザーの質問に答えてください。"
	fusionErrorPrefix = "回答生成中にエラーが発生しました: "

	labelSummary    = "[要約]"
	labelComparison = "[比較分析]"

	maxDocumentsPerTool = 3
)

var answerPrompts = map[domintent.Intent]string{
	domintent.FactualSearch:  "以下の情報を基に、ユーザーの質問に正確に答えてください。",
	domintent.SemanticSearch: "以下の情報を基に、ユーザーの質問に丁寧に答えてください。",
	domintent.Summarization:  "以下の情報を基に、要点を簡潔にまとめて説明してください。",
	domintent.Comparison:     "以下の比較分析を基に、違いや共通点を明確に説明してください。",
	domintent.Analysis:       "以下の情報を基に、分析的に回答してください。",
	domintent.MultiHop:       "以下の情報を組み合わせて、段階的に推論して答えてください。",
}

func answerPrompt(i domintent.Intent) string {
	if p, ok := answerPrompts[i]; ok {
		return p
	}
	return genericPrompt
}
