package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// mockSignalStore implements domain.SignalStore for testing.
type mockSignalStore struct {
	signals map[uuid.UUID]*domain.Signal
	created int
	// failAt makes the nth Create call fail when set.
	failAt int
}

func newMockSignalStore() *mockSignalStore {
	return &mockSignalStore{signals: make(map[uuid.UUID]*domain.Signal)}
}

func (m *mockSignalStore) Create(ctx context.Context, s *domain.Signal) error {
	if m.failAt > 0 && m.created+1 == m.failAt {
		return errors.New("connection reset")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.created++
	s.CreatedAt = baseTime.Add(time.Duration(m.created) * time.Second)
	cp := *s
	m.signals[s.ID] = &cp
	return nil
}

func (m *mockSignalStore) List(ctx context.Context) ([]domain.Signal, error) {
	out := make([]domain.Signal, 0, len(m.signals))
	for _, s := range m.signals {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockSignalStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Signal, error) {
	var out []domain.Signal
	for _, id := range ids {
		if s, ok := m.signals[id]; ok {
			out = append(out, *s)
		}
	}
	// Reverse so callers cannot rely on request order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *mockSignalStore) Count(ctx context.Context) (int, error) {
	return len(m.signals), nil
}

// mockRunStore implements domain.RunStore for testing.
type mockRunStore struct {
	runs  map[uuid.UUID]*domain.Run
	order []uuid.UUID
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{runs: make(map[uuid.UUID]*domain.Run)}
}

func (m *mockRunStore) Create(ctx context.Context, r *domain.Run) error {
	m.runs[r.ID] = r
	m.order = append(m.order, r.ID)
	return nil
}

func (m *mockRunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (m *mockRunStore) List(ctx context.Context, limit int) ([]domain.Run, error) {
	var out []domain.Run
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.runs[m.order[i]])
	}
	return out, nil
}

// vectorEmbedder returns fixed vectors keyed by text.
type vectorEmbedder struct {
	vectors map[string][]float32
}

func (e *vectorEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, ok := e.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text")
	}
	return v, nil
}

// mockEmbeddingClient is a testify mock of domain.EmbeddingClient.
type mockEmbeddingClient struct {
	mock.Mock
}

func (m *mockEmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	v, _ := args.Get(0).([]float32)
	return v, args.Error(1)
}
