package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Runner handles the question loop using an IOHandler strategy.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Headless suppresses the greeting of the default handler.
	Headless bool

	// Renderer is passed to the default handler.
	Renderer ContentRenderer

	// Signals makes Run stop on SIGINT/SIGTERM.
	Signals bool
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run reads questions until EOF, an exit command or context cancellation.
// A clean end of the session returns nil.
func (r *Runner) Run(ctx context.Context, asker Asker) error {
	handler := r.resolveHandler()

	if r.Signals {
		signals := NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	answered := 0
	for {
		line, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				r.Logger.Debug("session ended", "questions", answered)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		if isExitCommand(line) {
			r.Logger.Debug("session ended by user", "questions", answered)
			return nil
		}

		question, err := SanitizeInput(line)
		if err != nil {
			r.Logger.Warn("input rejected", "err", err)
			if err := handler.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err)); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		state := asker.Ask(ctx, question)
		answered++
		r.Logger.Debug("question processed", "outcome", state.Outcome, "topic", state.Topic)

		if err := handler.Output(ctx, state); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	if !r.Headless {
		fmt.Fprintln(th.Writer, "Ask a question (type 'exit' to quit).")
	}
	// Memoize to prevent creating new pumps on subsequent Run() calls
	r.Handler = th
	return th
}

func isExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit", "/exit", "/quit":
		return true
	}
	return false
}
