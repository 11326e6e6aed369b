package router

import (
	"slices"

	domintent "github.com/kailas-cloud/ragrouter/internal/domain/intent"
	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
)

// fallbackTools is used for any intent missing from the table.
var fallbackTools = []domtool.Name{domtool.SemanticSearch}

// Table maps each intent to the ordered tools that serve it. It is read-only after construction.
type Table struct {
	routes map[domintent.Intent][]domtool.Name
}

// DefaultTable returns the stock routing table.
func DefaultTable() Table {
	return NewTable(map[domintent.Intent][]domtool.Name{
		domintent.FactualSearch:  {domtool.KeywordSearch, domtool.SemanticSearch},
		domintent.SemanticSearch: {domtool.SemanticSearch},
		domintent.Summarization:  {domtool.SemanticSearch, domtool.Summarization},
		domintent.Comparison:     {domtool.Comparison},
		domintent.Analysis:       {domtool.SemanticSearch},
		domintent.MultiHop:       {domtool.SemanticSearch, domtool.Comparison},
		domintent.Unknown:        {domtool.SemanticSearch},
	})
}

// NewTable copies routes so later changes to the argument do not leak in.
func NewTable(routes map[domintent.Intent][]domtool.Name) Table {
	cp := make(map[domintent.Intent][]domtool.Name, len(routes))
	for k, v := range routes {
		cp[k] = slices.Clone(v)
	}
	return Table{routes: cp}
}

// Lookup returns a copy of the tools for an intent, or [semantic_search] when the intent is absent.
func (t Table) Lookup(i domintent.Intent) []domtool.Name {
	if names, ok := t.routes[i]; ok {
		return slices.Clone(names)
	}
	return slices.Clone(fallbackTools)
}
