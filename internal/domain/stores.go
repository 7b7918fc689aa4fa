package domain

import (
	"context"

	"github.com/google/uuid"
)

type SignalStore interface {
	Create(ctx context.Context, s *Signal) error
	// List returns every signal in creation order.
	List(ctx context.Context) ([]Signal, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Signal, error)
	Count(ctx context.Context) (int, error)
}

type RunStore interface {
	Create(ctx context.Context, r *Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)
	List(ctx context.Context, limit int) ([]Run, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type GenerationStatus string

const (
	GenerationOK          GenerationStatus = "ok"
	GenerationMalformed   GenerationStatus = "malformed"
	GenerationUnavailable GenerationStatus = "unavailable"
)

// GenerationResult is the tagged outcome of a text generation call.
// Text is only meaningful when Status is GenerationOK.
type GenerationResult struct {
	Status GenerationStatus `json:"status"`
	Text   string           `json:"text,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

func (r GenerationResult) OK() bool {
	return r.Status == GenerationOK
}

type Generator interface {
	Generate(ctx context.Context, prompt string) GenerationResult
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Category, error)
}

type LLMClient interface {
	Generator
	Classifier
}
