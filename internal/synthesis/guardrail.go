package synthesis

import (
	"fmt"

	"github.com/Harshitk-cp/distiller/internal/domain"
)

// CheckGuardrails inspects a promoted run for structural problems. It only
// reports; the run is never altered.
func CheckGuardrails(run *domain.Run, cfg domain.SynthesisConfig) []domain.Finding {
	var findings []domain.Finding
	outputs := len(run.Axioms)

	if len(run.Rejected) > 0 {
		findings = append(findings, domain.Finding{
			Code:    domain.FindingMalformedSignals,
			Message: fmt.Sprintf("%d signal(s) rejected for malformed embeddings", len(run.Rejected)),
		})
	}

	if run.SignalCount == 0 {
		findings = append(findings, domain.Finding{
			Code:    domain.FindingNoInput,
			Message: "no signals to synthesize",
		})
		return findings
	}

	if !run.Converged {
		findings = append(findings, domain.Finding{
			Code:    domain.FindingNoConvergence,
			Message: fmt.Sprintf("principle set still changing after %d passes", len(run.Passes)),
		})
	}

	if outputs > run.SignalCount {
		findings = append(findings, domain.Finding{
			Code:    domain.FindingExpansion,
			Message: fmt.Sprintf("expansion instead of compression: %d axioms from %d signals", outputs, run.SignalCount),
		})
	}

	if ceiling := cfg.LoadCeiling(run.SignalCount); float64(outputs) > ceiling {
		findings = append(findings, domain.Finding{
			Code:    domain.FindingLoadCeiling,
			Message: fmt.Sprintf("load ceiling exceeded: %d axioms, ceiling %.1f", outputs, ceiling),
		})
	}

	if n := len(cfg.CascadeThresholds); n > 0 && outputs > 0 && run.EffectiveThreshold == cfg.CascadeThresholds[n-1] {
		findings = append(findings, domain.Finding{
			Code:    domain.FindingWeakCascade,
			Message: fmt.Sprintf("fell back to minimum evidence threshold %d", run.EffectiveThreshold),
		})
	}

	return findings
}
