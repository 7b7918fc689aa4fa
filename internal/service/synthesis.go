package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/extract"
	"github.com/Harshitk-cp/distiller/internal/store"
	"github.com/Harshitk-cp/distiller/internal/synthesis"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSignalContentEmpty = errors.New("content is required")
	ErrNoSignalsExtracted = errors.New("no signals could be extracted from text")
	ErrRunNotFound        = errors.New("run not found")
	ErrAxiomNotFound      = errors.New("axiom not found")
)

// DefaultRunListLimit bounds ListRuns when the caller gives no limit.
const DefaultRunListLimit = 20

type SynthesisService struct {
	signalStore     domain.SignalStore
	runStore        domain.RunStore
	embeddingClient domain.EmbeddingClient
	labeler         *Labeler
	config          domain.SynthesisConfig
	logger          *zap.Logger
}

func NewSynthesisService(ss domain.SignalStore, rs domain.RunStore, ec domain.EmbeddingClient, cfg domain.SynthesisConfig, logger *zap.Logger) *SynthesisService {
	return &SynthesisService{
		signalStore:     ss,
		runStore:        rs,
		embeddingClient: ec,
		config:          cfg,
		logger:          logger,
	}
}

// SetLabeler enables labeling and classification of promoted axioms.
func (s *SynthesisService) SetLabeler(l *Labeler) {
	s.labeler = l
}

func (s *SynthesisService) Config() domain.SynthesisConfig {
	return s.config
}

// CreateSignal embeds and stores a single observation.
func (s *SynthesisService) CreateSignal(ctx context.Context, content, source string) (*domain.Signal, error) {
	if content == "" {
		return nil, ErrSignalContentEmpty
	}

	emb, err := s.embed(ctx, content)
	if err != nil {
		return nil, err
	}

	sig := &domain.Signal{Content: content, Embedding: emb, Source: source}
	if err := s.signalStore.Create(ctx, sig); err != nil {
		return nil, err
	}
	return sig, nil
}

// IngestText splits a block of memory text into signals, embeds every one
// and stores them in extraction order. Nothing is stored unless every
// draft embeds. Signals are stored one at a time, so a store failure
// returns the signals already written alongside the error.
func (s *SynthesisService) IngestText(ctx context.Context, text, source string) ([]domain.Signal, error) {
	drafts := extract.Lines(text, source, extract.Options{})
	if len(drafts) == 0 {
		return nil, ErrNoSignalsExtracted
	}

	signals := make([]domain.Signal, len(drafts))
	for i, d := range drafts {
		emb, err := s.embed(ctx, d.Content)
		if err != nil {
			return nil, err
		}
		signals[i] = domain.Signal{Content: d.Content, Embedding: emb, Source: d.Source}
	}

	for i := range signals {
		if err := s.signalStore.Create(ctx, &signals[i]); err != nil {
			return signals[:i], fmt.Errorf("store signal %d: %w", i, err)
		}
	}

	s.logger.Info("ingested text",
		zap.String("source", source),
		zap.Int("signals", len(signals)),
	)
	return signals, nil
}

func (s *SynthesisService) ListSignals(ctx context.Context) ([]domain.Signal, error) {
	return s.signalStore.List(ctx)
}

// Synthesize runs a synthesis over every stored signal and persists the
// result. A nil cfg uses the service defaults. Labeling failures caused by
// an unavailable backend abort the run before anything is persisted.
func (s *SynthesisService) Synthesize(ctx context.Context, cfg *domain.SynthesisConfig) (*domain.Run, error) {
	params := s.config
	if cfg != nil {
		params = *cfg
	}

	synth, err := synthesis.NewSynthesizer(params, s.logger)
	if err != nil {
		return nil, err
	}

	signals, err := s.signalStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}

	run, err := synth.Run(ctx, signals)
	if err != nil {
		return nil, err
	}

	if s.labeler != nil && len(run.Axioms) > 0 {
		if err := s.labeler.Apply(ctx, run, indexSignals(signals)); err != nil {
			return nil, err
		}
	}

	if err := s.runStore.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("store run: %w", err)
	}
	return run, nil
}

func (s *SynthesisService) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	run, err := s.runStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *SynthesisService) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = DefaultRunListLimit
	}
	return s.runStore.List(ctx, limit)
}

// Provenance lists the signals behind one axiom of a run.
type Provenance struct {
	RunID   uuid.UUID       `json:"run_id"`
	Axiom   domain.Axiom    `json:"axiom"`
	Signals []domain.Signal `json:"signals"`
	// Missing holds contributor ids whose signal no longer exists.
	Missing []uuid.UUID `json:"missing,omitempty"`
}

// Provenance returns the contributing signals of an axiom in the order they
// were attributed to it.
func (s *SynthesisService) Provenance(ctx context.Context, runID, axiomID uuid.UUID) (*Provenance, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	axiom := run.Axiom(axiomID)
	if axiom == nil {
		return nil, ErrAxiomNotFound
	}

	found, err := s.signalStore.GetByIDs(ctx, axiom.Contributors)
	if err != nil {
		return nil, fmt.Errorf("load contributors: %w", err)
	}
	byID := indexSignals(found)

	p := &Provenance{RunID: run.ID, Axiom: *axiom, Signals: make([]domain.Signal, 0, len(axiom.Contributors))}
	for _, id := range axiom.Contributors {
		sig, ok := byID[id]
		if !ok {
			p.Missing = append(p.Missing, id)
			continue
		}
		p.Signals = append(p.Signals, sig)
	}
	return p, nil
}

func (s *SynthesisService) embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := s.embeddingClient.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(emb) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrEmbeddingUnavailable)
	}
	return emb, nil
}

func indexSignals(signals []domain.Signal) map[uuid.UUID]domain.Signal {
	m := make(map[uuid.UUID]domain.Signal, len(signals))
	for _, sig := range signals {
		m[sig.ID] = sig
	}
	return m
}
