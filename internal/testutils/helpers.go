package testutils

import (
	"context"
	"errors"
	"sync"
)

// ErrStubFailure is returned by a StubModel configured to fail.
var ErrStubFailure = errors.New("stub model failure")

// StubModel is a deterministic ports.Model for tests.
// It records every prompt it receives and is safe for concurrent use.
type StubModel struct {
	// Reply is returned for every prompt unless Respond is set.
	Reply string
	// Respond, when set, computes the reply for a prompt.
	Respond func(ctx context.Context, prompt string) (string, error)
	// Fail makes every call return ErrStubFailure.
	Fail bool

	mu      sync.Mutex
	prompts []string
}

// NewStubModel returns a model that always answers with reply.
func NewStubModel(reply string) *StubModel {
	return &StubModel{Reply: reply}
}

// NewFailingModel returns a model whose every call fails.
func NewFailingModel() *StubModel {
	return &StubModel{Fail: true}
}

// Generate implements ports.Model.
func (m *StubModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.Fail {
		return "", ErrStubFailure
	}
	if m.Respond != nil {
		return m.Respond(ctx, prompt)
	}
	return m.Reply, nil
}

// Name implements ports.Model.
func (m *StubModel) Name() string {
	return "stub"
}

// Calls returns the number of Generate invocations.
func (m *StubModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of the received prompts.
func (m *StubModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
