package service

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/llm"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Labeler attaches a short generated label and a category to each axiom.
type Labeler struct {
	llmClient domain.LLMClient
	maxLength int
	logger    *zap.Logger
}

func NewLabeler(lc domain.LLMClient, logger *zap.Logger) *Labeler {
	return &Labeler{
		llmClient: lc,
		maxLength: llm.DefaultLabelLength,
		logger:    logger,
	}
}

// Apply labels and classifies every axiom of run in place. A label that
// stays malformed after its retry falls back to the principle text. An
// unavailable backend stops labeling with domain.ErrGenerationUnavailable.
func (l *Labeler) Apply(ctx context.Context, run *domain.Run, signals map[uuid.UUID]domain.Signal) error {
	for i := range run.Axioms {
		if err := ctx.Err(); err != nil {
			return err
		}
		a := &run.Axioms[i]

		res := llm.Label(ctx, l.llmClient, a.Text, supportingTexts(a, signals), l.maxLength)
		switch res.Status {
		case domain.GenerationOK:
			a.Label = res.Text
		case domain.GenerationMalformed:
			l.logger.Warn("label malformed, using principle text",
				zap.String("axiom_id", a.ID.String()),
				zap.String("reason", res.Reason),
			)
			a.Label = a.Text
		default:
			return fmt.Errorf("%w: label axiom %s: %s", domain.ErrGenerationUnavailable, a.ID, res.Reason)
		}

		category, err := l.llmClient.Classify(ctx, a.Label)
		if err != nil {
			return fmt.Errorf("classify axiom %s: %w", a.ID, err)
		}
		a.Category = category
	}
	return nil
}

// supportingTexts returns the content of every contributor except the one
// that founded the principle.
func supportingTexts(a *domain.Axiom, signals map[uuid.UUID]domain.Signal) []string {
	var out []string
	for _, id := range a.Contributors {
		sig, ok := signals[id]
		if !ok || sig.Content == a.Text {
			continue
		}
		out = append(out, sig.Content)
	}
	return out
}
