package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockCompletion is a canned completion for the MockClient.
type MockCompletion struct {
	Text string
	Err  error
}

// MockClient is a deterministic Client for testing. It returns canned
// completions in FIFO order and records every prompt it receives.
type MockClient struct {
	mu          sync.Mutex
	completions []MockCompletion
	Prompts     []string
}

// NewMockClient creates a MockClient with the given canned completions
func NewMockClient(completions ...MockCompletion) *MockClient {
	return &MockClient{completions: completions}
}

// Complete returns the next canned completion or an error if the queue is empty
func (m *MockClient) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	if len(m.completions) == 0 {
		return "", fmt.Errorf("mock client: no completions queued")
	}

	next := m.completions[0]
	m.completions = m.completions[1:]

	if next.Err != nil {
		return "", next.Err
	}
	return next.Text, nil
}

// AddCompletion appends a canned completion to the queue
func (m *MockClient) AddCompletion(c MockCompletion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions = append(m.completions, c)
}

// CallCount returns the number of Complete calls made
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
