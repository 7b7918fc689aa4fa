package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/Harshitk-cp/distiller/internal/domain"
)

// MockDimension is the vector length produced by MockClient.
const MockDimension = 256

// MockClient embeds text offline as a normalized hashed bag of words, so
// texts sharing vocabulary land close together. The same text always yields
// the same vector. It holds no mutable state and is safe for concurrent use.
type MockClient struct {
	Dimension int
	// Err, when set, is returned wrapped in domain.ErrEmbeddingUnavailable.
	Err error
}

func NewMockClient() *MockClient {
	return &MockClient{Dimension: MockDimension}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.Err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, c.Err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dim := c.Dimension
	if dim <= 0 {
		dim = MockDimension
	}
	v := make([]float32, dim)

	tokens := tokenize(text)
	if len(tokens) == 0 {
		tokens = []string{text}
	}
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(dim))
		if sum&(1<<63) != 0 {
			v[idx] -= 1
		} else {
			v[idx] += 1
		}
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		v[0] = 1
		return v, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
