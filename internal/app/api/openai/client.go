package openai

import (
	"net/http"

	"github.com/sashabaranov/go-openai"

	"voicenote/internal/config"
)

// NewClient builds an OpenAI client from configuration. httpClient may be nil.
func NewClient(cfg config.OpenAIConfig, httpClient *http.Client) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(clientConfig)
}
