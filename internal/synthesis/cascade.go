package synthesis

import (
	"sort"

	"github.com/Harshitk-cp/distiller/internal/domain"
)

// Promotion is the outcome of running the evidence cascade.
type Promotion struct {
	Axioms             []domain.Axiom
	Attempts           []domain.CascadeAttempt
	EffectiveThreshold int
}

// Promote walks cfg.CascadeThresholds from strictest to loosest and stops at
// the first level admitting at least cfg.MinOutputs principles, or at the
// last level. It makes at most len(cfg.CascadeThresholds) attempts.
//
// Tiers are assigned from each principle's own evidence count, independent
// of the level that admitted it.
func Promote(principles []domain.Principle, cfg domain.SynthesisConfig) Promotion {
	var out Promotion
	if len(cfg.CascadeThresholds) == 0 {
		return out
	}

	ranked := rankPrinciples(principles)
	last := len(cfg.CascadeThresholds) - 1

	var selected []domain.Principle
	for i, k := range cfg.CascadeThresholds {
		candidates := atLeast(ranked, k)
		attempt := domain.CascadeAttempt{Threshold: k, Count: len(candidates)}

		if len(candidates) >= cfg.MinOutputs || i == last {
			attempt.Selected = true
			out.Attempts = append(out.Attempts, attempt)
			out.EffectiveThreshold = k
			selected = candidates
			break
		}
		out.Attempts = append(out.Attempts, attempt)
	}

	out.Axioms = make([]domain.Axiom, 0, len(selected))
	for _, p := range selected {
		out.Axioms = append(out.Axioms, domain.Axiom{
			Principle:  p.Clone(),
			Tier:       domain.ComputeTier(p.EvidenceCount, cfg.Tiers),
			TierReason: domain.TierReason(p.EvidenceCount, cfg.Tiers),
		})
	}
	return out
}

// rankPrinciples orders by evidence descending, then sequence ascending.
func rankPrinciples(principles []domain.Principle) []domain.Principle {
	ranked := make([]domain.Principle, len(principles))
	copy(ranked, principles)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EvidenceCount != ranked[j].EvidenceCount {
			return ranked[i].EvidenceCount > ranked[j].EvidenceCount
		}
		return ranked[i].Seq < ranked[j].Seq
	})
	return ranked
}

func atLeast(ranked []domain.Principle, k int) []domain.Principle {
	var out []domain.Principle
	for _, p := range ranked {
		if p.EvidenceCount >= k {
			out = append(out, p)
		}
	}
	return out
}
