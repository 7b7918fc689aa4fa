package synthesis

import (
	"context"
	"sort"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/google/uuid"
)

// cancelCheckInterval is how many matches run between context checks inside
// a pass.
const cancelCheckInterval = 64

// Convergence summarizes a finished convergence loop.
type Convergence struct {
	Passes    []domain.PassStats
	Converged bool
}

// Converge replays every signal through store once per pass, raising the
// similarity threshold by cfg.ThresholdStep each time, until a pass neither
// creates a principle nor changes an evidence count, or cfg.MaxPasses is hit.
//
// Passes are strictly sequential. A pass interrupted by ctx is rolled back
// to its starting state before the context error is returned.
func Converge(ctx context.Context, store *EvidenceStore, signals []domain.Signal, cfg domain.SynthesisConfig) (Convergence, error) {
	var res Convergence
	if len(signals) == 0 {
		res.Converged = true
		return res, nil
	}

	ordered := orderSignals(signals)

	for pass := 0; pass < cfg.MaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		cp := store.checkpoint()
		before := store.evidenceCounts()
		store.SetThreshold(cfg.ThresholdAt(pass))

		created := 0
		for i, sig := range ordered {
			if i > 0 && i%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					store.restore(cp)
					return res, err
				}
			}
			if _, isNew := store.Match(sig); isNew {
				created++
			}
		}

		stats := domain.PassStats{
			Pass:          pass,
			Threshold:     store.Threshold(),
			Principles:    store.Len(),
			TotalEvidence: store.TotalEvidence(),
			Created:       created,
			Changed:       changedCount(before, store.evidenceCounts()),
		}
		res.Passes = append(res.Passes, stats)

		if stats.Stable() {
			res.Converged = true
			break
		}
	}

	return res, nil
}

// orderSignals returns signals in creation order, ties broken by id, so that
// reruns see the same match sequence.
func orderSignals(signals []domain.Signal) []domain.Signal {
	ordered := make([]domain.Signal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return ordered
}

// changedCount counts principles that existed before the pass and whose
// evidence count moved during it.
func changedCount(before, after map[uuid.UUID]int) int {
	changed := 0
	for id, n := range before {
		if after[id] != n {
			changed++
		}
	}
	return changed
}
