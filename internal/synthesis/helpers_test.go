package synthesis

import (
	"fmt"
	"time"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/google/uuid"
)

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func signalID(n int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("signal-%d", n)))
}

func newSignal(n int, v ...float32) domain.Signal {
	return domain.Signal{
		ID:        signalID(n),
		Content:   fmt.Sprintf("signal %d", n),
		Embedding: v,
		Source:    fmt.Sprintf("memory.md:%d", n),
		CreatedAt: baseTime.Add(time.Duration(n) * time.Second),
	}
}

// nearIdentical returns count signals whose pairwise similarity is ~0.99.
func nearIdentical(start, count int) []domain.Signal {
	out := make([]domain.Signal, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, newSignal(start+i, 1, 0, 0.01*float32(i), 0))
	}
	return out
}

// twoClusters returns 2*size signals split between two orthogonal directions.
func twoClusters(size int) []domain.Signal {
	out := make([]domain.Signal, 0, 2*size)
	for i := 0; i < size; i++ {
		out = append(out, newSignal(i, 1, 0, 0.01*float32(i), 0))
	}
	for i := 0; i < size; i++ {
		out = append(out, newSignal(size+i, 0, 1, 0, 0.01*float32(i)))
	}
	return out
}

func principleByContributor(ps []domain.Principle, id uuid.UUID) *domain.Principle {
	for i := range ps {
		for _, c := range ps[i].Contributors {
			if c == id {
				return &ps[i]
			}
		}
	}
	return nil
}
