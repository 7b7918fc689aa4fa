// Package llm wraps the text generation backends used to label and classify
// axioms. Every backend exposes one prompt-in, text-out call; the helpers
// here turn its outcome into a domain.GenerationResult.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/distiller/internal/domain"
)

var (
	errUnavailable = errors.New("backend unavailable")
	errMalformed   = errors.New("malformed response")
)

type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUnavailable, fmt.Sprintf(format, args...))
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errMalformed, fmt.Sprintf(format, args...))
}

func generate(ctx context.Context, c completer, prompt string) domain.GenerationResult {
	text, err := c.complete(ctx, prompt)
	switch {
	case err == nil && text == "":
		return domain.GenerationResult{Status: domain.GenerationMalformed, Reason: "empty response"}
	case err == nil:
		return domain.GenerationResult{Status: domain.GenerationOK, Text: text}
	case errors.Is(err, errMalformed):
		return domain.GenerationResult{Status: domain.GenerationMalformed, Reason: err.Error()}
	default:
		return domain.GenerationResult{Status: domain.GenerationUnavailable, Reason: err.Error()}
	}
}

// classify asks the backend for a category. An unparseable answer falls
// back to CategoryIdentity; an unreachable backend is an error.
func classify(ctx context.Context, c completer, text string) (domain.Category, error) {
	res := generate(ctx, c, fmt.Sprintf(classifyPrompt, text))
	switch res.Status {
	case domain.GenerationOK:
		return ParseCategory(res.Text), nil
	case domain.GenerationMalformed:
		return domain.CategoryIdentity, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrGenerationUnavailable, res.Reason)
	}
}

// ParseCategory extracts the first known category word from a response.
func ParseCategory(response string) domain.Category {
	words := strings.FieldsFunc(strings.ToLower(response), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	for _, w := range words {
		if domain.ValidCategory(w) {
			return domain.Category(w)
		}
	}
	return domain.CategoryIdentity
}
