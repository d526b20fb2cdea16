package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/grounded/pkg/domain"
)

// ComposeHooks fans every callback out to each hook set in order.
func ComposeHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			for _, s := range sets {
				if s.OnStageEnter != nil {
					s.OnStageEnter(ctx, e)
				}
			}
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			for _, s := range sets {
				if s.OnStageLeave != nil {
					s.OnStageLeave(ctx, e)
				}
			}
		},
		OnModelCall: func(ctx context.Context, e *domain.ModelEvent) {
			for _, s := range sets {
				if s.OnModelCall != nil {
					s.OnModelCall(ctx, e)
				}
			}
		},
		OnModelReturn: func(ctx context.Context, e *domain.ModelEvent) {
			for _, s := range sets {
				if s.OnModelReturn != nil {
					s.OnModelReturn(ctx, e)
				}
			}
		},
	}
}

// LoggingHooks logs stage transitions and model calls at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			logger.DebugContext(ctx, "Enter Stage", "run_id", e.RunID, "stage", e.Stage, "topic", e.Topic)
		},
		OnModelCall: func(ctx context.Context, e *domain.ModelEvent) {
			logger.DebugContext(ctx, "Model Call", "run_id", e.RunID, "model", e.Model, "prompt_size", len(e.Prompt))
		},
		OnModelReturn: func(ctx context.Context, e *domain.ModelEvent) {
			if e.IsError {
				logger.DebugContext(ctx, "Model Return (Error)", "run_id", e.RunID, "model", e.Model, "err", e.Err)
			} else {
				logger.DebugContext(ctx, "Model Return (Success)", "run_id", e.RunID, "model", e.Model,
					"duration", e.Duration, "cached", e.Cached)
			}
		},
	}
}
