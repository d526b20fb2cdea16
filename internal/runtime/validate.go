package runtime

import (
	"context"
	"strings"

	"github.com/aretw0/grounded/pkg/domain"
)

// Validate trims the raw question and reports ErrEmptyQuestion for blank input.
// It returns the preserved-case question and its lower-cased matching key.
func Validate(raw string) (question, normalized string, err error) {
	question = strings.TrimSpace(raw)
	if question == "" {
		return "", "", domain.ErrEmptyQuestion
	}
	return question, strings.ToLower(question), nil
}

func (e *Engine) validate(ctx context.Context, run *execution, raw string) error {
	question, normalized, err := Validate(raw)
	if err != nil {
		return err
	}
	run.state.Question = question
	run.state.Normalized = normalized
	e.transition(ctx, run, domain.StageValidated)
	return nil
}
