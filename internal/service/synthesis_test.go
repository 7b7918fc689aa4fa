package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	signals  *mockSignalStore
	runs     *mockRunStore
	embedder *vectorEmbedder
	llm      *llm.MockClient
	svc      *SynthesisService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		signals:  newMockSignalStore(),
		runs:     newMockRunStore(),
		embedder: &vectorEmbedder{vectors: make(map[string][]float32)},
		llm:      llm.NewMockClient(),
	}
	f.svc = NewSynthesisService(f.signals, f.runs, f.embedder, domain.DefaultSynthesisConfig(), zap.NewNop())
	f.svc.SetLabeler(NewLabeler(f.llm, zap.NewNop()))
	return f
}

// seedCluster stores count near-identical signals and returns them in order.
func (f *fixture) seedCluster(t *testing.T, count int) []*domain.Signal {
	t.Helper()
	var out []*domain.Signal
	for i := 0; i < count; i++ {
		text := fmt.Sprintf("I write tests before shipping, take %d", i)
		f.embedder.vectors[text] = []float32{1, 0, 0.01 * float32(i), 0}
		sig, err := f.svc.CreateSignal(context.Background(), text, "notes.md")
		require.NoError(t, err)
		out = append(out, sig)
	}
	return out
}

func TestCreateSignal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSignal(ctx, "", "x")
	assert.True(t, errors.Is(err, ErrSignalContentEmpty))

	f.embedder.vectors["I prefer small pull requests"] = []float32{1, 0}
	sig, err := f.svc.CreateSignal(ctx, "I prefer small pull requests", "notes.md")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sig.ID)
	assert.Equal(t, []float32{1, 0}, sig.Embedding)

	n, _ := f.signals.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestCreateSignalEmbeddingUnavailable(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateSignal(context.Background(), "unknown text", "")
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
	assert.Empty(t, f.signals.signals)
}

func TestIngestText(t *testing.T) {
	f := newFixture(t)
	text := "# Notes\n\n- I review every diff twice\n- ok\n- I keep functions short and focused\n"
	f.embedder.vectors["I review every diff twice"] = []float32{1, 0}
	f.embedder.vectors["I keep functions short and focused"] = []float32{0, 1}

	signals, err := f.svc.IngestText(context.Background(), text, "notes.md")
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, "I review every diff twice", signals[0].Content)
	assert.Equal(t, "notes.md:3", signals[0].Source)
	assert.Equal(t, "notes.md:5", signals[1].Source)

	listed, err := f.svc.ListSignals(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, signals[0].ID, listed[0].ID)
}

func TestIngestTextAbortsOnEmbeddingFailure(t *testing.T) {
	ec := &mockEmbeddingClient{}
	ec.On("Embed", mock.Anything, "I review every diff twice").Return([]float32{1, 0}, nil)
	ec.On("Embed", mock.Anything, "I keep functions short and focused").
		Return(nil, fmt.Errorf("%w: timeout", domain.ErrEmbeddingUnavailable))

	signals := newMockSignalStore()
	svc := NewSynthesisService(signals, newMockRunStore(), ec, domain.DefaultSynthesisConfig(), zap.NewNop())

	_, err := svc.IngestText(context.Background(), "I review every diff twice\nI keep functions short and focused", "")
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
	assert.Empty(t, signals.signals)
	ec.AssertNumberOfCalls(t, "Embed", 2)
}

func TestIngestTextStoreFailureReturnsWrittenSignals(t *testing.T) {
	f := newFixture(t)
	f.signals.failAt = 2
	text := "I review every diff twice\nI keep functions short and focused\nI write the test first"
	for i, line := range []string{"I review every diff twice", "I keep functions short and focused", "I write the test first"} {
		f.embedder.vectors[line] = []float32{1, float32(i)}
	}

	written, err := f.svc.IngestText(context.Background(), text, "notes.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store signal 1")
	require.Len(t, written, 1)
	assert.Equal(t, "I review every diff twice", written[0].Content)

	count, _ := f.signals.Count(context.Background())
	assert.Equal(t, 1, count)
}

func TestIngestTextNothingExtracted(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.IngestText(context.Background(), "# Heading\n\nshort\n", "")
	assert.True(t, errors.Is(err, ErrNoSignalsExtracted))
}

func TestSynthesize(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedCluster(t, 5)

	run, err := f.svc.Synthesize(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, run.Axioms, 1)
	a := run.Axioms[0]
	assert.Equal(t, domain.TierCore, a.Tier)
	assert.Equal(t, 5, a.EvidenceCount)
	assert.Equal(t, seeded[0].Content, a.Text)
	assert.Equal(t, seeded[0].Content, a.Label)
	assert.Equal(t, domain.CategoryIdentity, a.Category)
	assert.True(t, run.Converged)
	assert.True(t, run.HasFinding(domain.FindingWeakCascade))

	stored, err := f.svc.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, stored.ID)

	require.Len(t, f.llm.GenerateCalls, 1)
	assert.Contains(t, f.llm.GenerateCalls[0], seeded[1].Content)
	assert.Equal(t, []string{seeded[0].Content}, f.llm.ClassifyCalls)
}

func TestSynthesizeWithoutLabeler(t *testing.T) {
	f := newFixture(t)
	f.svc.SetLabeler(nil)
	f.seedCluster(t, 3)

	run, err := f.svc.Synthesize(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, run.Axioms, 1)
	assert.Empty(t, run.Axioms[0].Label)
	assert.Empty(t, f.llm.GenerateCalls)
}

func TestSynthesizeEmptyStore(t *testing.T) {
	f := newFixture(t)

	run, err := f.svc.Synthesize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, run.Axioms)
	assert.True(t, run.HasFinding(domain.FindingNoInput))
	assert.Len(t, f.runs.runs, 1)
}

func TestSynthesizeOverrides(t *testing.T) {
	f := newFixture(t)
	f.seedCluster(t, 5)

	cfg := domain.DefaultSynthesisConfig()
	cfg.Tiers = domain.TierBoundaries{CoreMin: 10, DomainMin: 4}

	run, err := f.svc.Synthesize(context.Background(), &cfg)
	require.NoError(t, err)
	require.Len(t, run.Axioms, 1)
	assert.Equal(t, domain.TierDomain, run.Axioms[0].Tier)
	assert.Equal(t, 10, run.Config.Tiers.CoreMin)

	cfg.MaxPasses = 0
	_, err = f.svc.Synthesize(context.Background(), &cfg)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestSynthesizeGenerationUnavailable(t *testing.T) {
	f := newFixture(t)
	f.seedCluster(t, 3)
	f.llm.GenerateResults = []domain.GenerationResult{{Status: domain.GenerationUnavailable, Reason: "503"}}

	_, err := f.svc.Synthesize(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrGenerationUnavailable))
	assert.Empty(t, f.runs.runs)
}

func TestSynthesizeMalformedLabelFallsBack(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedCluster(t, 3)
	f.llm.GenerateResults = []domain.GenerationResult{{Status: domain.GenerationOK, Text: "```\nnope\n```"}}

	run, err := f.svc.Synthesize(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, run.Axioms, 1)
	assert.Equal(t, seeded[0].Content, run.Axioms[0].Label)
	assert.Len(t, f.llm.GenerateCalls, 2)
}

func TestSynthesizeClassifyUnavailable(t *testing.T) {
	f := newFixture(t)
	f.seedCluster(t, 3)
	f.llm.ClassifyError = fmt.Errorf("%w: down", domain.ErrGenerationUnavailable)

	_, err := f.svc.Synthesize(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrGenerationUnavailable))
	assert.Empty(t, f.runs.runs)
}

func TestSynthesizeCancelled(t *testing.T) {
	f := newFixture(t)
	f.seedCluster(t, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Synthesize(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, f.runs.runs)
}

func TestGetRunNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetRun(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestListRuns(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Synthesize(context.Background(), nil)
		require.NoError(t, err)
	}

	runs, err := f.svc.ListRuns(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = f.svc.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestProvenance(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedCluster(t, 4)

	run, err := f.svc.Synthesize(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, run.Axioms, 1)
	axiomID := run.Axioms[0].ID

	delete(f.signals.signals, seeded[2].ID)

	prov, err := f.svc.Provenance(context.Background(), run.ID, axiomID)
	require.NoError(t, err)
	require.Len(t, prov.Signals, 3)
	assert.Equal(t, seeded[0].ID, prov.Signals[0].ID)
	assert.Equal(t, seeded[1].ID, prov.Signals[1].ID)
	assert.Equal(t, seeded[3].ID, prov.Signals[2].ID)
	assert.Equal(t, []uuid.UUID{seeded[2].ID}, prov.Missing)

	_, err = f.svc.Provenance(context.Background(), run.ID, uuid.New())
	assert.True(t, errors.Is(err, ErrAxiomNotFound))

	_, err = f.svc.Provenance(context.Background(), uuid.New(), axiomID)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}
