package tool

// Name identifies one of the fixed tool kinds.
type Name string

// Tool kinds known to the router.
const (
	SemanticSearch Name = "semantic_search"
	KeywordSearch  Name = "keyword_search"
	Summarization  Name = "summarization"
	Comparison     Name = "comparison"
)

// IsValid checks if the name is one of the supported tool kinds.
func (n Name) IsValid() bool {
	return n == SemanticSearch || n == KeywordSearch || n == Summarization || n == Comparison
}

// Payload tells the fusion step which field of a Result carries content.
type Payload int

// Payload kinds.
const (
	PayloadNone Payload = iota
	PayloadDocuments
	PayloadSummary
	PayloadComparison
)

// Document is a retrieved passage inside a tool result.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    *float64       `json:"score,omitempty"`
}

// Context carries optional per-call parameters (k, top, text).
type Context struct {
	K    int
	Top  int
	Text string
}

// Result is the structured outcome of one tool execution.
type Result struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	Documents  []Document `json:"documents,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	Comparison string     `json:"comparison,omitempty"`
	Sources    int        `json:"sources,omitempty"`
	Payload    Payload    `json:"-"`
}

// Failure builds an unsuccessful result with a human-readable message.
func Failure(message string) Result {
	return Result{Success: false, Message: message}
}

// Invocation pairs a dispatched tool with its result, in dispatch order.
type Invocation struct {
	Tool   Name   `json:"tool"`
	Result Result `json:"result"`
}
