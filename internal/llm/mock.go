package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Harshitk-cp/distiller/internal/domain"
)

// maxTrackedCalls bounds call tracking when the mock backs a long-lived
// process. Older calls are dropped first.
const maxTrackedCalls = 256

// MockClient is a configurable LLM client for testing.
// GenerateResults is consumed in order; once one result is left it is
// returned for every further call. With no results configured, Generate
// echoes the first observation line of the prompt.
//
// Generate and Classify are safe for concurrent use. Configure the fields
// and read the tracked calls only while no call is in flight.
type MockClient struct {
	GenerateResults  []domain.GenerationResult
	ClassifyResponse domain.Category
	ClassifyError    error

	// Call tracking for assertions
	GenerateCalls []string
	ClassifyCalls []string

	mu sync.Mutex
}

func NewMockClient() *MockClient {
	return &MockClient{
		ClassifyResponse: domain.CategoryIdentity,
	}
}

func (m *MockClient) Generate(ctx context.Context, prompt string) domain.GenerationResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = track(m.GenerateCalls, prompt)
	if err := ctx.Err(); err != nil {
		return domain.GenerationResult{Status: domain.GenerationUnavailable, Reason: err.Error()}
	}
	if len(m.GenerateResults) == 0 {
		return domain.GenerationResult{Status: domain.GenerationOK, Text: echoRepresentative(prompt)}
	}
	res := m.GenerateResults[0]
	if len(m.GenerateResults) > 1 {
		m.GenerateResults = m.GenerateResults[1:]
	}
	return res
}

func (m *MockClient) Classify(ctx context.Context, text string) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ClassifyCalls = track(m.ClassifyCalls, text)
	if m.ClassifyError != nil {
		return "", m.ClassifyError
	}
	return m.ClassifyResponse, nil
}

// Reset clears call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = nil
	m.ClassifyCalls = nil
}

func track(calls []string, call string) []string {
	if len(calls) >= maxTrackedCalls {
		calls = append(calls[:0], calls[len(calls)-maxTrackedCalls+1:]...)
	}
	return append(calls, call)
}

func echoRepresentative(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "Representative observation:") && i+1 < len(lines) {
			if text := strings.TrimSpace(lines[i+1]); text != "" {
				return text
			}
		}
	}
	return fmt.Sprintf("mock label %d", len(prompt))
}
