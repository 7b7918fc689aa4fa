package domain

import (
	"time"

	"github.com/google/uuid"
)

// Signal is an atomic observation extracted from memory text.
// It is never mutated once created.
type Signal struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
