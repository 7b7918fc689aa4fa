package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// RunStore persists synthesis runs together with their axioms.
type RunStore struct {
	db *pgxpool.Pool
}

func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{db: db}
}

// runDetails is the jsonb payload of a run row.
type runDetails struct {
	Cascade  []domain.CascadeAttempt `json:"cascade"`
	Findings []domain.Finding        `json:"findings"`
	Passes   []domain.PassStats      `json:"passes"`
	Rejected []uuid.UUID             `json:"rejected"`
}

// Create writes the run and all of its axioms in one transaction.
func (s *RunStore) Create(ctx context.Context, r *domain.Run) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	details, err := json.Marshal(runDetails{
		Cascade:  r.Cascade,
		Findings: r.Findings,
		Passes:   r.Passes,
		Rejected: r.Rejected,
	})
	if err != nil {
		return fmt.Errorf("marshal run details: %w", err)
	}
	cfg, err := json.Marshal(r.Config)
	if err != nil {
		return fmt.Errorf("marshal run config: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO runs (id, effective_threshold, converged, signal_count, principle_count, details, config, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING created_at`,
		r.ID, r.EffectiveThreshold, r.Converged, r.SignalCount, r.PrincipleCount, details, cfg,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for i, a := range r.Axioms {
		batch.Queue(
			`INSERT INTO axioms (run_id, id, position, seq, text, centroid, evidence_count, contributors, tier, tier_reason, label, category, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			r.ID, a.ID, i, a.Seq, a.Text, pgvector.NewVector(a.Centroid), a.EvidenceCount, a.Contributors,
			string(a.Tier), a.TierReason, a.Label, string(a.Category), a.UpdatedAt,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert axioms: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID loads a run and its axioms in promotion order.
func (s *RunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	r, err := scanRun(s.db.QueryRow(ctx,
		`SELECT id, effective_threshold, converged, signal_count, principle_count, details, config, created_at
		 FROM runs WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, seq, text, centroid, evidence_count, contributors, tier, tier_reason, label, category, updated_at
		 FROM axioms WHERE run_id = $1 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	r.Axioms = []domain.Axiom{}
	for rows.Next() {
		var (
			a        domain.Axiom
			centroid pgvector.Vector
			tier     string
			category string
		)
		if err := rows.Scan(&a.ID, &a.Seq, &a.Text, &centroid, &a.EvidenceCount, &a.Contributors,
			&tier, &a.TierReason, &a.Label, &category, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan axiom: %w", err)
		}
		a.Centroid = centroid.Slice()
		a.Tier = domain.Tier(tier)
		a.Category = domain.Category(category)
		r.Axioms = append(r.Axioms, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// List returns the most recent runs without their axioms.
func (s *RunStore) List(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, effective_threshold, converged, signal_count, principle_count, details, config, created_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanRun(row pgx.Row) (*domain.Run, error) {
	var (
		r       domain.Run
		details []byte
		cfg     []byte
	)
	if err := row.Scan(&r.ID, &r.EffectiveThreshold, &r.Converged, &r.SignalCount, &r.PrincipleCount, &details, &cfg, &r.CreatedAt); err != nil {
		return nil, err
	}

	var d runDetails
	if err := json.Unmarshal(details, &d); err != nil {
		return nil, fmt.Errorf("unmarshal run details: %w", err)
	}
	r.Cascade = d.Cascade
	r.Findings = d.Findings
	r.Passes = d.Passes
	r.Rejected = d.Rejected

	if err := json.Unmarshal(cfg, &r.Config); err != nil {
		return nil, fmt.Errorf("unmarshal run config: %w", err)
	}
	return &r, nil
}
