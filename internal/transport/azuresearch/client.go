// Package azuresearch is a minimal Azure AI Search client for full-text queries.
package azuresearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragrouter/internal/domain"
)

const (
	// DefaultAPIVersion is the data-plane API version used when none is configured.
	DefaultAPIVersion = "2023-11-01"
	// DefaultContentField is the index field treated as document text.
	DefaultContentField = "content"

	scoreField     = "@search.score"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 1 << 10
)

// Config holds the search service settings.
type Config struct {
	Endpoint     string
	APIKey       string
	Index        string
	APIVersion   string
	ContentField string
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Client queries one index of an Azure AI Search service.
type Client struct {
	http         *http.Client
	searchURL    string
	countURL     string
	apiKey       string
	contentField string
	logger       *zap.Logger
}

// New creates a search client.
func New(cfg *Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.Index == "" {
		return nil, fmt.Errorf("%w: azure search endpoint and index are required", domain.ErrInvalidInput)
	}

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	field := cfg.ContentField
	if field == "" {
		field = DefaultContentField
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	docsURL := fmt.Sprintf("%s/indexes/%s/docs", strings.TrimRight(cfg.Endpoint, "/"), url.PathEscape(cfg.Index))
	query := "?api-version=" + url.QueryEscape(version)

	return &Client{
		http:         hc,
		searchURL:    docsURL + "/search" + query,
		countURL:     docsURL + "/$count" + query,
		apiKey:       cfg.APIKey,
		contentField: field,
		logger:       logger,
	}, nil
}

type searchRequest struct {
	Search string `json:"search"`
	Top    int    `json:"top"`
	Count  bool   `json:"count"`
}

type searchResponse struct {
	Count *int             `json:"@odata.count,omitempty"`
	Value []map[string]any `json:"value"`
}

// Search runs a simple full-text query and returns at most top hits.
// The content field becomes the hit content; every other field is metadata.
func (c *Client) Search(ctx context.Context, text string, top int) ([]domain.KeywordHit, error) {
	body, err := json.Marshal(searchRequest{Search: text, Top: top, Count: true})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %v: %w", err, domain.ErrKeywordSearchFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("search API error %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(msg)), domain.ErrKeywordSearchFailed)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %v: %w", err, domain.ErrKeywordSearchFailed)
	}

	hits := make([]domain.KeywordHit, 0, len(parsed.Value))
	for _, doc := range parsed.Value {
		hits = append(hits, c.toHit(doc))
	}

	c.logger.Debug("Keyword search",
		zap.Int("hits", len(hits)),
		zap.Intp("total", parsed.Count),
	)
	return hits, nil
}

// HealthCheck verifies the index is reachable by requesting its document count.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.countURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build count request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("azure search health check: %v: %w", err, domain.ErrKeywordSearchFailed)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("azure search health check: status %d: %w", resp.StatusCode, domain.ErrKeywordSearchFailed)
	}
	return nil
}

func (c *Client) toHit(doc map[string]any) domain.KeywordHit {
	var hit domain.KeywordHit
	if s, ok := doc[scoreField].(float64); ok {
		hit.Score = s
	}

	meta := make(map[string]any, len(doc))
	for k, v := range doc {
		if k != c.contentField {
			meta[k] = v
		}
	}
	hit.Metadata = meta

	switch v := doc[c.contentField].(type) {
	case string:
		hit.Content = v
	case nil:
		raw, _ := json.Marshal(doc)
		hit.Content = string(raw)
	default:
		hit.Content = fmt.Sprint(v)
	}
	return hit
}
