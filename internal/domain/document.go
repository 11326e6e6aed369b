package domain

// DefaultDimensions is the embedding width of text-embedding-ada-002.
const DefaultDimensions = 1536

// Document is an immutable record held by the document store.
// ID is index-local and equals the document's position in the store.
type Document struct {
	ID        int
	Content   string
	Metadata  map[string]any
	Embedding []float32
}

// ScoredDocument is a search hit annotated with its raw L2 distance (lower is closer).
type ScoredDocument struct {
	Document
	Score float64
}

// KeywordHit is a single result returned by a full-text search backend.
type KeywordHit struct {
	Content  string
	Metadata map[string]any
	Score    float64
}
