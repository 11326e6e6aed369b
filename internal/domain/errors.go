package domain

import "errors"

var (
	// ErrInvalidInput signals a malformed request (empty query, bad k, mismatched metadata).
	ErrInvalidInput = errors.New("invalid input")
	// ErrVectorDimMismatch signals an embedding whose length differs from the configured dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrKeywordSearchFailed signals a full-text search backend failure.
	ErrKeywordSearchFailed = errors.New("keyword search failed")
)
