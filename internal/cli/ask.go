package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/grounded/internal/presentation/tui"
	"github.com/aretw0/grounded/pkg/domain"
	"github.com/aretw0/grounded/pkg/runner"
)

// AskOptions configures the one-shot ask command.
type AskOptions struct {
	Questions   []string
	JSON        bool
	Render      bool
	Concurrency int
}

// Ask answers every question concurrently and prints the results in order.
func Ask(ctx context.Context, opts Options, ask AskOptions, out io.Writer) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(cfg)

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	questions := make([]string, len(ask.Questions))
	for i, q := range ask.Questions {
		clean, err := runner.SanitizeInput(q)
		if err != nil {
			return fmt.Errorf("question %d rejected: %w", i+1, err)
		}
		questions[i] = clean
	}

	states := app.Pipeline.AskAll(ctx, questions, ask.Concurrency)
	return printStates(out, states, ask)
}

func printStates(out io.Writer, states []*domain.QAState, ask AskOptions) error {
	if ask.JSON {
		enc := json.NewEncoder(out)
		for _, s := range states {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	}

	var render func(string) (string, error)
	if ask.Render {
		render = tui.NewRenderer()
	}

	for i, s := range states {
		if len(states) > 1 {
			fmt.Fprintf(out, "Q: %s\n", s.Question)
		}
		answer := s.Answer
		if render != nil {
			if rendered, err := render(answer); err == nil {
				answer = rendered
			}
		}
		fmt.Fprintln(out, strings.TrimSpace(answer))
		if len(states) > 1 && i < len(states)-1 {
			fmt.Fprintln(out)
		}
	}
	return nil
}
