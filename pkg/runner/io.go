package runner

import (
	"context"

	"github.com/aretw0/grounded/pkg/domain"
)

// Asker answers a single question. *grounded.Pipeline satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string) *domain.QAState
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (Structured) modes.
type IOHandler interface {
	// Input reads the next question. io.EOF ends the session.
	Input(ctx context.Context) (string, error)

	// Output presents the final state of one question.
	Output(ctx context.Context, state *domain.QAState) error

	// SystemOutput reports a message that is not an answer (rejected input, notices).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
