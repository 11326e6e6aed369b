package intent

// Intent is the answer strategy a query requires.
type Intent string

// Intent labels produced by the classifier.
const (
	FactualSearch  Intent = "factual_search"
	SemanticSearch Intent = "semantic_search"
	Summarization  Intent = "summarization"
	Comparison     Intent = "comparison"
	Analysis       Intent = "analysis"
	MultiHop       Intent = "multi_hop"
	Unknown        Intent = "unknown"
)

// All lists every intent in taxonomy order.
var All = []Intent{
	FactualSearch, SemanticSearch, Summarization, Comparison, Analysis, MultiHop, Unknown,
}

// IsValid checks if the intent is one of the seven labels.
func (i Intent) IsValid() bool {
	switch i {
	case FactualSearch, SemanticSearch, Summarization, Comparison, Analysis, MultiHop, Unknown:
		return true
	}
	return false
}

// Parse maps a raw label to an Intent. Anything outside the taxonomy becomes Unknown.
func Parse(s string) Intent {
	if i := Intent(s); i.IsValid() {
		return i
	}
	return Unknown
}

// String implements fmt.Stringer.
func (i Intent) String() string { return string(i) }
