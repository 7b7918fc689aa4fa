package synthesis

import (
	"fmt"
	"time"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/vector"
	"github.com/google/uuid"
)

// TieEpsilon is the tolerance used both for threshold comparisons and for
// treating two similarities as equal.
const TieEpsilon = 1e-9

// principleNamespace seeds deterministic principle ids.
var principleNamespace = uuid.MustParse("6f1c2a4e-8b0d-4c55-9a37-2d1e5b7f9c01")

// EvidenceStore owns the candidate principles of a single synthesis run.
// One store lives for the whole run; rebuilding it between passes resets
// every evidence count.
//
// Not safe for concurrent use.
type EvidenceStore struct {
	threshold  float64
	policy     domain.ReplayPolicy
	principles []*domain.Principle
	// vectors holds the embedding of every signal seen so far.
	vectors map[uuid.UUID][]float32
	// owners maps a signal to the indexes of the principles it contributes to.
	owners map[uuid.UUID][]int
	now    func() time.Time
}

func NewEvidenceStore(threshold float64, policy domain.ReplayPolicy) *EvidenceStore {
	if policy == "" {
		policy = domain.ReplayAccumulate
	}
	return &EvidenceStore{
		threshold: threshold,
		policy:    policy,
		vectors:   make(map[uuid.UUID][]float32),
		owners:    make(map[uuid.UUID][]int),
		now:       time.Now,
	}
}

// SetThreshold changes the similarity bar for subsequent Match calls.
// Existing attributions are not re-evaluated.
func (s *EvidenceStore) SetThreshold(v float64) {
	s.threshold = v
}

func (s *EvidenceStore) Threshold() float64 {
	return s.threshold
}

// Len returns the number of principles.
func (s *EvidenceStore) Len() int {
	return len(s.principles)
}

// TotalEvidence sums the evidence count over all principles.
func (s *EvidenceStore) TotalEvidence() int {
	total := 0
	for _, p := range s.principles {
		total += p.EvidenceCount
	}
	return total
}

// Match attributes sig to the most similar principle whose centroid meets
// the current threshold, or founds a new principle when none does.
//
// A signal that already contributes to a principle still meeting the
// threshold is settled and changes nothing. Otherwise the replay policy
// decides whether its old attributions are kept.
func (s *EvidenceStore) Match(sig domain.Signal) (uuid.UUID, bool) {
	s.vectors[sig.ID] = sig.Embedding

	if owned := s.owners[sig.ID]; len(owned) > 0 {
		for _, idx := range owned {
			p := s.principles[idx]
			if s.meets(vector.Cosine(sig.Embedding, p.Centroid)) {
				return p.ID, false
			}
		}
		if s.policy == domain.ReplayReassign {
			s.detach(sig.ID)
		}
	}

	if idx, ok := s.best(sig.Embedding); ok {
		s.attach(idx, sig.ID)
		return s.principles[idx].ID, false
	}

	return s.found(sig), true
}

// Snapshot returns deep copies of all principles ordered by sequence.
func (s *EvidenceStore) Snapshot() []domain.Principle {
	out := make([]domain.Principle, len(s.principles))
	for i, p := range s.principles {
		out[i] = p.Clone()
	}
	return out
}

func (s *EvidenceStore) meets(sim float64) bool {
	return sim >= s.threshold-TieEpsilon
}

// best scans principles in sequence order so the lowest sequence wins ties.
func (s *EvidenceStore) best(v []float32) (int, bool) {
	bestIdx := -1
	bestSim := 0.0
	for i, p := range s.principles {
		if p.EvidenceCount == 0 {
			continue
		}
		sim := vector.Cosine(v, p.Centroid)
		if !s.meets(sim) {
			continue
		}
		if bestIdx < 0 || sim > bestSim+TieEpsilon {
			bestIdx, bestSim = i, sim
		}
	}
	return bestIdx, bestIdx >= 0
}

func (s *EvidenceStore) found(sig domain.Signal) uuid.UUID {
	seq := len(s.principles) + 1
	p := &domain.Principle{
		ID:            uuid.NewSHA1(principleNamespace, []byte(fmt.Sprintf("%d:%s", seq, sig.ID))),
		Seq:           seq,
		Text:          sig.Content,
		Centroid:      vector.Clone(sig.Embedding),
		EvidenceCount: 1,
		Contributors:  []uuid.UUID{sig.ID},
		UpdatedAt:     s.now(),
	}
	s.principles = append(s.principles, p)
	s.owners[sig.ID] = append(s.owners[sig.ID], seq-1)
	return p.ID
}

func (s *EvidenceStore) attach(idx int, sigID uuid.UUID) {
	p := s.principles[idx]
	for _, id := range p.Contributors {
		if id == sigID {
			return
		}
	}
	p.Contributors = append(p.Contributors, sigID)
	s.owners[sigID] = append(s.owners[sigID], idx)
	s.recompute(p)
}

// detach removes sigID from every principle it contributes to. Principles
// left without contributors are kept with their last centroid but no longer
// accept matches.
func (s *EvidenceStore) detach(sigID uuid.UUID) {
	for _, idx := range s.owners[sigID] {
		p := s.principles[idx]
		kept := p.Contributors[:0]
		for _, id := range p.Contributors {
			if id != sigID {
				kept = append(kept, id)
			}
		}
		p.Contributors = kept
		s.recompute(p)
	}
	delete(s.owners, sigID)
}

func (s *EvidenceStore) recompute(p *domain.Principle) {
	p.EvidenceCount = len(p.Contributors)
	p.UpdatedAt = s.now()
	if len(p.Contributors) == 0 {
		return
	}
	vectors := make([][]float32, 0, len(p.Contributors))
	for _, id := range p.Contributors {
		vectors = append(vectors, s.vectors[id])
	}
	p.Centroid = vector.Mean(vectors)
}

// checkpoint captures enough state to undo a partially applied pass.
type checkpoint struct {
	threshold  float64
	principles []domain.Principle
	owners     map[uuid.UUID][]int
	vectors    map[uuid.UUID][]float32
}

func (s *EvidenceStore) checkpoint() *checkpoint {
	cp := &checkpoint{
		threshold:  s.threshold,
		principles: s.Snapshot(),
		owners:     make(map[uuid.UUID][]int, len(s.owners)),
		vectors:    make(map[uuid.UUID][]float32, len(s.vectors)),
	}
	for id, idx := range s.owners {
		cp.owners[id] = append([]int(nil), idx...)
	}
	for id, v := range s.vectors {
		cp.vectors[id] = v
	}
	return cp
}

func (s *EvidenceStore) restore(cp *checkpoint) {
	s.threshold = cp.threshold
	s.principles = make([]*domain.Principle, len(cp.principles))
	for i := range cp.principles {
		p := cp.principles[i].Clone()
		s.principles[i] = &p
	}
	s.owners = cp.owners
	s.vectors = cp.vectors
}

// evidenceCounts maps principle ids to their current evidence count.
func (s *EvidenceStore) evidenceCounts() map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int, len(s.principles))
	for _, p := range s.principles {
		counts[p.ID] = p.EvidenceCount
	}
	return counts
}
