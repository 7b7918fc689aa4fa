package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/embedding"
	"github.com/Harshitk-cp/distiller/internal/service"
	"github.com/Harshitk-cp/distiller/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memSignalStore struct {
	signals []domain.Signal
}

func (m *memSignalStore) Create(ctx context.Context, s *domain.Signal) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Unix(int64(len(m.signals)), 0).UTC()
	m.signals = append(m.signals, *s)
	return nil
}

func (m *memSignalStore) List(ctx context.Context) ([]domain.Signal, error) {
	return append([]domain.Signal(nil), m.signals...), nil
}

func (m *memSignalStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Signal, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Signal
	for _, s := range m.signals {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSignalStore) Count(ctx context.Context) (int, error) {
	return len(m.signals), nil
}

type memRunStore struct {
	runs map[uuid.UUID]*domain.Run
}

func (m *memRunStore) Create(ctx context.Context, r *domain.Run) error {
	m.runs[r.ID] = r
	return nil
}

func (m *memRunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (m *memRunStore) List(ctx context.Context, limit int) ([]domain.Run, error) {
	out := make([]domain.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

const testAPIKey = "test-key"

func newTestApp(t *testing.T, db Pinger) (*App, *embedding.MockClient) {
	t.Helper()
	ec := embedding.NewMockClient()
	svc := service.NewSynthesisService(&memSignalStore{}, &memRunStore{runs: map[uuid.UUID]*domain.Run{}}, ec, domain.DefaultSynthesisConfig(), zap.NewNop())
	app := NewAppWithService(svc, Options{DB: db, APIKey: testAPIKey}, zap.NewNop())
	return app, ec
}

func do(t *testing.T, app *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, fakePinger{})
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)

	app, _ = newTestApp(t, fakePinger{err: errors.New("down")})
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetrics(t *testing.T) {
	app, _ := newTestApp(t, nil)
	do(t, app, http.MethodGet, "/v1/signals", nil)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["request_count"])
}

func TestV1RequiresAPIKey(t *testing.T) {
	app, _ := newTestApp(t, nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/signals", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSignal(t *testing.T) {
	app, _ := newTestApp(t, nil)

	rec := do(t, app, http.MethodPost, "/v1/signals", map[string]string{"content": "I value honest feedback"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var sig domain.Signal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sig))
	assert.Equal(t, "I value honest feedback", sig.Content)
	assert.NotEqual(t, uuid.Nil, sig.ID)

	rec = do(t, app, http.MethodPost, "/v1/signals", map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSignalEmbeddingDown(t *testing.T) {
	app, ec := newTestApp(t, nil)
	ec.Err = errors.New("connection refused")

	rec := do(t, app, http.MethodPost, "/v1/signals", map[string]string{"content": "I value honest feedback"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIngestAndList(t *testing.T) {
	app, _ := newTestApp(t, nil)

	text := "## Work\n- I write tests before code\n- I refactor in small steps\n"
	rec := do(t, app, http.MethodPost, "/v1/signals/ingest", map[string]string{"text": text, "source": "work.md"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	rec = do(t, app, http.MethodGet, "/v1/signals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "work.md:2")

	rec = do(t, app, http.MethodPost, "/v1/signals/ingest", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSynthesizeAndFetch(t *testing.T) {
	app, _ := newTestApp(t, nil)
	for i := 0; i < 3; i++ {
		rec := do(t, app, http.MethodPost, "/v1/signals", map[string]string{"content": "I always write tests first"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, app, http.MethodPost, "/v1/synthesize", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var run domain.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.Len(t, run.Axioms, 1)
	assert.Equal(t, domain.TierDomain, run.Axioms[0].Tier)
	assert.Equal(t, 3, run.Axioms[0].EvidenceCount)

	rec = do(t, app, http.MethodGet, "/v1/runs/"+run.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, app, http.MethodGet, "/v1/runs", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	path := fmt.Sprintf("/v1/runs/%s/axioms/%s/provenance", run.ID, run.Axioms[0].ID)
	rec = do(t, app, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var prov service.Provenance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prov))
	assert.Len(t, prov.Signals, 3)
	assert.Empty(t, prov.Missing)
}

func TestSynthesizeOverrides(t *testing.T) {
	app, _ := newTestApp(t, nil)

	rec := do(t, app, http.MethodPost, "/v1/synthesize", map[string]any{"max_passes": 2, "replay": "reassign"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var run domain.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, 2, run.Config.MaxPasses)
	assert.Equal(t, domain.ReplayReassign, run.Config.Replay)

	rec = do(t, app, http.MethodPost, "/v1/synthesize", map[string]any{"cascade_thresholds": []int{1, 2}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, app, http.MethodPost, "/v1/synthesize", map[string]any{"replay": "sometimes"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunNotFound(t *testing.T) {
	app, _ := newTestApp(t, nil)

	rec := do(t, app, http.MethodGet, "/v1/runs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, app, http.MethodGet, "/v1/runs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, app, http.MethodGet, "/v1/runs?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
