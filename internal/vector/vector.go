// Package vector holds the pure vector math shared by the evidence store and
// its callers.
package vector

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmpty             = errors.New("vector is empty")
	ErrNonFinite         = errors.New("vector has a non-finite component")
	ErrZero              = errors.New("vector has zero norm")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Cosine returns the cosine similarity of a and b clamped to [0, 1].
// Mismatched, empty or zero-norm inputs score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}

// Mean computes the element-wise mean of equally weighted vectors.
// Vectors whose length differs from the first are skipped.
func Mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	n := 0
	for _, v := range vectors {
		if len(v) != dim {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		n++
	}

	result := make([]float32, dim)
	for i := range sum {
		result[i] = float32(sum[i] / float64(n))
	}
	return result
}

// Validate rejects vectors that would corrupt centroid math.
// A dim of zero skips the length check.
func Validate(v []float32, dim int) error {
	if len(v) == 0 {
		return ErrEmpty
	}
	if dim > 0 && len(v) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), dim)
	}

	var norm float64
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrNonFinite
		}
		norm += f * f
	}
	if norm == 0 {
		return ErrZero
	}
	return nil
}

// Clone returns a copy of v.
func Clone(v []float32) []float32 {
	return append([]float32(nil), v...)
}
