package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragrouter/internal/domain"
	"github.com/kailas-cloud/ragrouter/internal/metrics"
)

// ChatCompleter issues chat completions against a single model or deployment.
type ChatCompleter struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewChatCompleter creates a chat completion provider. Dimensions is ignored.
func NewChatCompleter(cfg *Config) *ChatCompleter {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatCompleter{
		client: newClient(cfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Complete implements domain.ChatCompleter and returns the first choice's content.
func (c *ChatCompleter) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	purpose := req.Purpose
	if purpose == "" {
		purpose = "other"
	}

	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	creq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
	}
	if req.JSON {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, creq)

	duration := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(purpose, "error").Inc()
		return "", parseAPIError("chat", err, domain.ErrChatProviderError)
	}

	if len(resp.Choices) == 0 {
		metrics.ChatRequestsTotal.WithLabelValues(purpose, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrChatProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues(purpose, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(purpose).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ChatTokensTotal.WithLabelValues(purpose, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ChatTokensTotal.WithLabelValues(purpose, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	c.logger.Debug("Chat completion",
		zap.String("purpose", purpose),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *ChatCompleter) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
