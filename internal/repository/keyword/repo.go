// Package keyword keeps a Redis full-text index of loaded documents and
// answers BM25 queries against it.
package keyword

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/ragrouter/internal/db"
	"github.com/kailas-cloud/ragrouter/internal/domain"
)

// DefaultIndex is the FT index name used when none is configured.
const DefaultIndex = "ragrouter:keyword"

const (
	fieldContent  = "content"
	fieldMetadata = "metadata"
	fieldSource   = "source"
	fieldDocID    = "doc_id"
)

// store is the consumer interface for the keyword index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements the keyword_search backend over Redis FT.
type Repo struct {
	store    store
	index    string
	prefix   string
	language string
}

// New creates a keyword repository. An empty index name selects DefaultIndex.
func New(s store, index, language string) *Repo {
	if index == "" {
		index = DefaultIndex
	}
	return &Repo{
		store:    s,
		index:    index,
		prefix:   index + ":doc:",
		language: language,
	}
}

// EnsureIndex creates the FT index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.index)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.index, err)
	}
	if exists {
		return nil
	}

	b := db.NewIndex(r.index).
		Prefix(r.prefix).
		TextWeighted(fieldContent, 1, true).
		Tag(fieldSource).
		Numeric(fieldDocID)
	if r.language != "" {
		b = b.Language(r.language)
	}
	def, err := b.Build()
	if err != nil {
		return fmt.Errorf("build index %s: %w", r.index, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.index, err)
	}
	return nil
}

// Index stores documents as hashes keyed by content hash, so reloading the
// same text overwrites instead of duplicating.
func (r *Repo) Index(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		fields := map[string]string{
			fieldContent: d.Content,
			fieldDocID:   strconv.Itoa(d.ID),
		}
		if len(d.Metadata) > 0 {
			meta, err := json.Marshal(d.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata of document %d: %w", d.ID, err)
			}
			fields[fieldMetadata] = string(meta)
		}
		if src, ok := d.Metadata[fieldSource].(string); ok && src != "" {
			fields[fieldSource] = src
		}
		items = append(items, db.HashSetItem{Key: r.docKey(d.Content), Fields: fields})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("index %d documents: %w", len(items), err)
	}
	return nil
}

// Search runs a BM25 query and returns at most top hits, best first.
func (r *Repo) Search(ctx context.Context, text string, top int) ([]domain.KeywordHit, error) {
	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.index,
		Field:        fieldContent,
		Query:        text,
		TopK:         top,
		ReturnFields: []string{fieldContent, fieldMetadata},
	})
	if err != nil {
		return nil, fmt.Errorf("bm25 search: %v: %w", err, domain.ErrKeywordSearchFailed)
	}

	hits := make([]domain.KeywordHit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		meta := map[string]any{}
		if raw := e.Fields[fieldMetadata]; raw != "" {
			if err := json.Unmarshal([]byte(raw), &meta); err != nil {
				meta = map[string]any{fieldMetadata: raw}
			}
		}
		hits = append(hits, domain.KeywordHit{
			Content:  e.Fields[fieldContent],
			Metadata: meta,
			Score:    e.Score,
		})
	}
	return hits, nil
}

func (r *Repo) docKey(content string) string {
	h := sha256.Sum256([]byte(content))
	return r.prefix + hex.EncodeToString(h[:16])
}
