package openai

import (
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultAzureAPIVersion is used when the config leaves api_version empty.
const DefaultAzureAPIVersion = "2024-02-15-preview"

// Config holds the provider settings shared by the embedder and the chat completer.
type Config struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	// Azure switches to api-key auth and /openai/deployments/<Model>/... routing.
	Azure bool
	// Model is the model name, or the deployment name when Azure is set.
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	if !cfg.Azure {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		return openai.NewClientWithConfig(clientCfg)
	}

	clientCfg := openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
	clientCfg.APIVersion = cfg.APIVersion
	if clientCfg.APIVersion == "" {
		clientCfg.APIVersion = DefaultAzureAPIVersion
	}
	// Deployment names are used verbatim.
	clientCfg.AzureModelMapperFunc = func(model string) string { return model }
	return openai.NewClientWithConfig(clientCfg)
}

// parseAPIError extracts a human-readable error from the API response
// and wraps it with the given sentinel so the HTTP layer maps it to 502.
func parseAPIError(kind string, err, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w", kind, reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", kind, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s request failed: %v: %w", kind, err, wrap)
}

// extractDetail reads the "detail" field some OpenAI-compatible gateways return.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
