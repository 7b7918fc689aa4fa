package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/google/uuid"
)

type renderFunc func(w io.Writer, run *domain.Run, signals []domain.Signal) error

func rendererFor(format string) (renderFunc, error) {
	switch format {
	case "markdown", "md", "":
		return renderMarkdown, nil
	case "json":
		return renderJSON, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (valid: markdown, json)", format)
	}
}

func renderJSON(w io.Writer, run *domain.Run, _ []domain.Signal) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

var tierTitles = map[domain.Tier]string{
	domain.TierCore:     "Core",
	domain.TierDomain:   "Domain",
	domain.TierEmerging: "Emerging",
}

func renderMarkdown(w io.Writer, run *domain.Run, signals []domain.Signal) error {
	sources := make(map[uuid.UUID]string, len(signals))
	for _, s := range signals {
		sources[s.ID] = s.Source
	}

	var b strings.Builder
	b.WriteString("# Axioms\n\n")
	fmt.Fprintf(&b, "%d signals, %d principles, %d axioms (evidence >= %d).\n",
		run.SignalCount, run.PrincipleCount, len(run.Axioms), run.EffectiveThreshold)

	for _, tier := range domain.AllTiers() {
		var axioms []domain.Axiom
		for _, a := range run.Axioms {
			if a.Tier == tier {
				axioms = append(axioms, a)
			}
		}
		if len(axioms) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n\n", tierTitles[tier])
		for _, a := range axioms {
			text := a.Text
			if a.Label != "" {
				text = a.Label
			}
			fmt.Fprintf(&b, "- %s", text)
			if a.Category != "" {
				fmt.Fprintf(&b, " _(%s)_", a.Category)
			}
			fmt.Fprintf(&b, "\n  - evidence: %d (%s)\n", a.EvidenceCount, a.TierReason)

			refs := make([]string, 0, len(a.Contributors))
			for _, id := range a.Contributors {
				if src, ok := sources[id]; ok {
					refs = append(refs, src)
				}
			}
			if len(refs) > 0 {
				fmt.Fprintf(&b, "  - sources: %s\n", strings.Join(refs, ", "))
			}
		}
	}

	if len(run.Findings) > 0 {
		b.WriteString("\n## Findings\n\n")
		for _, f := range run.Findings {
			fmt.Fprintf(&b, "- `%s`: %s\n", f.Code, f.Message)
		}
	}

	if len(run.Passes) > 0 {
		b.WriteString("\n## Passes\n\n| pass | threshold | principles | evidence | created | changed |\n|---|---|---|---|---|---|\n")
		for _, p := range run.Passes {
			fmt.Fprintf(&b, "| %d | %.2f | %d | %d | %d | %d |\n",
				p.Pass, p.Threshold, p.Principles, p.TotalEvidence, p.Created, p.Changed)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
