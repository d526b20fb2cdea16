package runtime

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/grounded/pkg/domain"
)

// CacheKey derives the answer cache key for a model and prompt.
func CacheKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

func (e *Engine) generate(ctx context.Context, run *execution, logger *slog.Logger) {
	defer e.transition(ctx, run, domain.StageAnswered)

	state := run.state
	if !state.HasContext() {
		state.Answer = domain.FallbackAnswer
		state.Outcome = domain.OutcomeFallback
		return
	}

	prompt := domain.ComposePrompt(state.ContextText(), state.Question)
	key := CacheKey(e.modelName, prompt)

	if answer, ok := e.cached(ctx, key, logger); ok {
		state.Answer = answer
		state.Outcome = domain.OutcomeAnswered
		e.fireModelReturn(ctx, run, &domain.ModelEvent{Prompt: prompt, Cached: true})
		return
	}

	if e.hooks.OnModelCall != nil {
		e.fire(ctx, run, domain.EventModelCall, func() {
			e.hooks.OnModelCall(ctx, e.modelEvent(run, domain.EventModelCall, &domain.ModelEvent{Prompt: prompt}))
		})
	}

	start := e.now()
	answer, err := e.invoke(ctx, prompt)
	evt := &domain.ModelEvent{Prompt: prompt, Duration: e.now().Sub(start)}

	if err != nil {
		logger.ErrorContext(ctx, "model invocation failed",
			"model", e.modelName,
			"topic", state.Topic,
			"err", err,
		)
		state.Answer = domain.ModelErrorAnswer
		state.Outcome = domain.OutcomeModelError
		evt.IsError = true
		evt.Err = err
		e.fireModelReturn(ctx, run, evt)
		return
	}

	state.Answer = answer
	state.Outcome = domain.OutcomeAnswered
	e.fireModelReturn(ctx, run, evt)

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, answer); err != nil {
			logger.WarnContext(ctx, "answer cache write failed", "err", err)
		}
	}
}

// invoke calls the model and converts every kind of failure into ErrModelInvocation.
func (e *Engine) invoke(ctx context.Context, prompt string) (answer string, err error) {
	if e.modelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.modelTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			answer = ""
			err = fmt.Errorf("%w: panic: %v", domain.ErrModelInvocation, r)
		}
	}()

	raw, err := e.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrModelInvocation, err)
	}
	// A model that ignores its context still fails the deadline.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrModelInvocation, ctxErr)
	}

	answer = strings.TrimSpace(raw)
	if answer == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrModelInvocation, domain.ErrEmptyResponse)
	}
	return answer, nil
}

func (e *Engine) cached(ctx context.Context, key string, logger *slog.Logger) (string, bool) {
	if e.cache == nil {
		return "", false
	}
	answer, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.WarnContext(ctx, "answer cache read failed", "err", err)
		}
		return "", false
	}
	return answer, answer != ""
}

func (e *Engine) fireModelReturn(ctx context.Context, run *execution, evt *domain.ModelEvent) {
	if e.hooks.OnModelReturn != nil {
		e.fire(ctx, run, domain.EventModelReturn, func() {
			e.hooks.OnModelReturn(ctx, e.modelEvent(run, domain.EventModelReturn, evt))
		})
	}
}

func (e *Engine) modelEvent(run *execution, typ domain.EventType, evt *domain.ModelEvent) *domain.ModelEvent {
	evt.EventBase = domain.EventBase{
		Timestamp: e.now(),
		Type:      typ,
		RunID:     run.id,
	}
	evt.Model = e.modelName
	return evt
}
