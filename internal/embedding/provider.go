package embedding

import (
	"fmt"

	"github.com/Harshitk-cp/distiller/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// NewClient picks the vector source for signals. A missing key or an
// unknown provider means no embeddings can be produced, so both errors wrap
// domain.ErrEmbeddingUnavailable.
func NewClient(provider, apiKey string) (domain.EmbeddingClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is required for the openai provider", domain.ErrEmbeddingUnavailable)
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("%w: unknown provider %q (valid options: openai, mock)", domain.ErrEmbeddingUnavailable, provider)
	}
}
