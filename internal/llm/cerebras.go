package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/Harshitk-cp/distiller/internal/domain"
)

const (
	cerebrasAPIURL = "https://api.cerebras.ai/v1/chat/completions"
	cerebrasModel  = "llama-3.3-70b"
)

// CerebrasClient talks to Cerebras' OpenAI-compatible chat endpoint.
type CerebrasClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewCerebrasClient(apiKey string) *CerebrasClient {
	return &CerebrasClient{
		apiKey:     apiKey,
		baseURL:    cerebrasAPIURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *CerebrasClient) Generate(ctx context.Context, prompt string) domain.GenerationResult {
	return generate(ctx, c, prompt)
}

func (c *CerebrasClient) Classify(ctx context.Context, text string) (domain.Category, error) {
	return classify(ctx, c, text)
}

func (c *CerebrasClient) complete(ctx context.Context, prompt string) (string, error) {
	return completeChat(ctx, c.httpClient, c.baseURL, c.apiKey, cerebrasModel, prompt)
}
