package domain

import (
	"time"

	"github.com/google/uuid"
)

type FindingCode string

const (
	FindingNoInput          FindingCode = "no_input"
	FindingExpansion        FindingCode = "expansion"
	FindingLoadCeiling      FindingCode = "load_ceiling"
	FindingWeakCascade      FindingCode = "weak_cascade"
	FindingNoConvergence    FindingCode = "no_convergence"
	FindingMalformedSignals FindingCode = "malformed_signals"
)

// Finding is an advisory attached to a run. Findings never block output.
type Finding struct {
	Code    FindingCode `json:"code"`
	Message string      `json:"message"`
}

// PassStats describes the evidence store after one convergence pass.
type PassStats struct {
	Pass          int     `json:"pass"`
	Threshold     float64 `json:"threshold"`
	Principles    int     `json:"principles"`
	TotalEvidence int     `json:"total_evidence"`
	Created       int     `json:"created"`
	Changed       int     `json:"changed"`
}

// Stable reports whether the pass left the store unchanged.
func (p PassStats) Stable() bool {
	return p.Created == 0 && p.Changed == 0
}

// CascadeAttempt records one evidence threshold tried by the promoter.
type CascadeAttempt struct {
	Threshold int  `json:"threshold"`
	Count     int  `json:"count"`
	Selected  bool `json:"selected"`
}

// Run is the result of one synthesis.
type Run struct {
	ID                 uuid.UUID        `json:"id"`
	Axioms             []Axiom          `json:"axioms"`
	EffectiveThreshold int              `json:"effective_threshold"`
	Cascade            []CascadeAttempt `json:"cascade"`
	Findings           []Finding        `json:"findings"`
	Passes             []PassStats      `json:"passes"`
	Converged          bool             `json:"converged"`
	SignalCount        int              `json:"signal_count"`
	PrincipleCount     int              `json:"principle_count"`
	Rejected           []uuid.UUID      `json:"rejected,omitempty"`
	Config             SynthesisConfig  `json:"config"`
	CreatedAt          time.Time        `json:"created_at"`
}

// HasFinding reports whether the run carries a finding with the given code.
func (r *Run) HasFinding(code FindingCode) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// Axiom returns the axiom with the given id, or nil.
func (r *Run) Axiom(id uuid.UUID) *Axiom {
	for i := range r.Axioms {
		if r.Axioms[i].ID == id {
			return &r.Axioms[i]
		}
	}
	return nil
}
