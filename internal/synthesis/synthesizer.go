// Package synthesis distills signals into tiered axioms.
//
// A run owns a single EvidenceStore for its whole lifetime. Converge replays
// the signal set through the store with a tightening similarity threshold,
// Promote selects axioms through the evidence cascade, and CheckGuardrails
// attaches advisory findings. Nothing in this package performs I/O.
package synthesis

import (
	"context"
	"fmt"
	"time"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/vector"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Synthesizer struct {
	cfg    domain.SynthesisConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewSynthesizer(cfg domain.SynthesisConfig, logger *zap.Logger) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{cfg: cfg, logger: logger, now: time.Now}, nil
}

func (s *Synthesizer) Config() domain.SynthesisConfig {
	return s.cfg
}

// Run distills signals into a tiered axiom set. Malformed signals are
// dropped and reported; the only errors returned come from ctx.
func (s *Synthesizer) Run(ctx context.Context, signals []domain.Signal) (*domain.Run, error) {
	valid, rejected := s.screen(signals)

	store := NewEvidenceStore(s.cfg.InitialThreshold, s.cfg.Replay)
	store.now = s.now

	conv, err := Converge(ctx, store, valid, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("converge: %w", err)
	}

	principles := store.Snapshot()
	promo := Promote(principles, s.cfg)

	run := &domain.Run{
		ID:                 uuid.New(),
		Axioms:             promo.Axioms,
		EffectiveThreshold: promo.EffectiveThreshold,
		Cascade:            promo.Attempts,
		Passes:             conv.Passes,
		Converged:          conv.Converged,
		SignalCount:        len(valid),
		PrincipleCount:     len(principles),
		Rejected:           rejected,
		Config:             s.cfg,
		CreatedAt:          s.now(),
	}
	run.Findings = CheckGuardrails(run, s.cfg)

	s.logger.Info("synthesis complete",
		zap.String("run_id", run.ID.String()),
		zap.Int("signals", run.SignalCount),
		zap.Int("rejected", len(rejected)),
		zap.Int("passes", len(run.Passes)),
		zap.Bool("converged", run.Converged),
		zap.Int("principles", run.PrincipleCount),
		zap.Int("axioms", len(run.Axioms)),
		zap.Int("effective_threshold", run.EffectiveThreshold),
		zap.Int("findings", len(run.Findings)),
	)

	return run, nil
}

// screen splits signals into those safe for centroid math and the ids of
// those that are not.
func (s *Synthesizer) screen(signals []domain.Signal) ([]domain.Signal, []uuid.UUID) {
	dim := s.cfg.Dimension
	seen := make(map[uuid.UUID]bool, len(signals))
	valid := make([]domain.Signal, 0, len(signals))
	var rejected []uuid.UUID

	for _, sig := range signals {
		err := validateSignal(sig, dim, seen)
		if err != nil {
			s.logger.Warn("rejecting signal",
				zap.String("signal_id", sig.ID.String()),
				zap.String("source", sig.Source),
				zap.Error(err),
			)
			rejected = append(rejected, sig.ID)
			continue
		}
		if dim == 0 {
			dim = len(sig.Embedding)
		}
		seen[sig.ID] = true
		valid = append(valid, sig)
	}
	return valid, rejected
}

func validateSignal(sig domain.Signal, dim int, seen map[uuid.UUID]bool) error {
	if sig.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", domain.ErrMalformedSignal)
	}
	if seen[sig.ID] {
		return fmt.Errorf("%w: duplicate id", domain.ErrMalformedSignal)
	}
	if err := vector.Validate(sig.Embedding, dim); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedSignal, err)
	}
	return nil
}
