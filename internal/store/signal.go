package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

type SignalStore struct {
	db *pgxpool.Pool
}

func NewSignalStore(db *pgxpool.Pool) *SignalStore {
	return &SignalStore{db: db}
}

// Create inserts a signal. clock_timestamp keeps creation order distinct
// for signals written within one request.
func (s *SignalStore) Create(ctx context.Context, sig *domain.Signal) error {
	if sig.ID == uuid.Nil {
		sig.ID = uuid.New()
	}

	var embedding *pgvector.Vector
	if len(sig.Embedding) > 0 {
		v := pgvector.NewVector(sig.Embedding)
		embedding = &v
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO signals (id, content, embedding, source, created_at)
		 VALUES ($1, $2, $3, $4, clock_timestamp())
		 RETURNING created_at`,
		sig.ID, sig.Content, embedding, sig.Source,
	).Scan(&sig.CreatedAt)
}

// List returns every signal in creation order.
func (s *SignalStore) List(ctx context.Context) ([]domain.Signal, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, content, embedding, source, created_at
		 FROM signals ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	return scanSignals(rows)
}

func (s *SignalStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Signal, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, content, embedding, source, created_at
		 FROM signals WHERE id = ANY($1) ORDER BY created_at, id`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	return scanSignals(rows)
}

func (s *SignalStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM signals`).Scan(&n)
	return n, err
}

func scanSignals(rows pgx.Rows) ([]domain.Signal, error) {
	defer rows.Close()

	var out []domain.Signal
	for rows.Next() {
		var (
			sig       domain.Signal
			embedding *pgvector.Vector
			createdAt time.Time
		)
		if err := rows.Scan(&sig.ID, &sig.Content, &embedding, &sig.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		if embedding != nil {
			sig.Embedding = embedding.Slice()
		}
		sig.CreatedAt = createdAt
		out = append(out, sig)
	}
	return out, rows.Err()
}
