package domain

import (
	"time"

	"github.com/google/uuid"
)

// Principle is a cluster of signals expressing one recurring idea.
// EvidenceCount always equals len(Contributors).
type Principle struct {
	ID            uuid.UUID   `json:"id"`
	Seq           int         `json:"seq"`
	Text          string      `json:"text"`
	Centroid      []float32   `json:"-"`
	EvidenceCount int         `json:"evidence_count"`
	Contributors  []uuid.UUID `json:"contributors"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Clone returns a deep copy so callers can hold snapshots across passes.
func (p Principle) Clone() Principle {
	c := p
	c.Centroid = append([]float32(nil), p.Centroid...)
	c.Contributors = append([]uuid.UUID(nil), p.Contributors...)
	return c
}

// Axiom is a promoted principle.
type Axiom struct {
	Principle
	Tier       Tier     `json:"tier"`
	TierReason string   `json:"tier_reason"`
	Label      string   `json:"label,omitempty"`
	Category   Category `json:"category,omitempty"`
}

type Category string

const (
	CategoryIdentity Category = "identity"
	CategoryValue    Category = "value"
	CategoryBehavior Category = "behavior"
	CategoryBoundary Category = "boundary"
	CategoryVoice    Category = "voice"
)

func AllCategories() []Category {
	return []Category{CategoryIdentity, CategoryValue, CategoryBehavior, CategoryBoundary, CategoryVoice}
}

func ValidCategory(c string) bool {
	switch Category(c) {
	case CategoryIdentity, CategoryValue, CategoryBehavior, CategoryBoundary, CategoryVoice:
		return true
	}
	return false
}
