package runtime

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/grounded/pkg/domain"
	"github.com/aretw0/grounded/pkg/ports"
	"github.com/google/uuid"
)

// Engine is the core pipeline driver.
// It owns the linear sequence Validate -> Resolve -> Generate.
type Engine struct {
	model        ports.Model
	modelName    string
	resolver     atomic.Pointer[Resolver]
	cache        ports.AnswerCache
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	modelTimeout time.Duration
	now          func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithCache enables answer memoization.
func WithCache(cache ports.AnswerCache) EngineOption {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithModelTimeout bounds every model call. Zero disables the bound.
func WithModelTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.modelTimeout = d
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(model ports.Model, resolver *Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		model:  model,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	e.resolver.Store(resolver)

	for _, opt := range opts {
		opt(e)
	}
	e.modelName = e.nameOf(model)
	return e
}

// nameOf reads the model name once so a misbehaving Name never reaches Run.
func (e *Engine) nameOf(model ports.Model) (name string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("model name panicked", "panic", r)
			name = "unknown"
		}
	}()
	return model.Name()
}

// SetResolver swaps the topic set used by subsequent questions.
// Questions already in flight keep the resolver they started with.
func (e *Engine) SetResolver(r *Resolver) {
	e.resolver.Store(r)
}

// Resolver returns the active resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver.Load()
}

// Run processes one question and always returns a terminated state with an answer.
func (e *Engine) Run(ctx context.Context, question string) *domain.QAState {
	run := &execution{
		id:       uuid.NewString(),
		state:    domain.NewQAState(),
		resolver: e.resolver.Load(),
	}
	logger := e.logger.With("run_id", run.id)

	if err := e.validate(ctx, run, question); err != nil {
		logger.DebugContext(ctx, "question rejected", "err", err)
		run.state.Answer = domain.EmptyQuestionAnswer
		run.state.Outcome = domain.OutcomeEmptyQuestion
		e.transition(ctx, run, domain.StageTerminated)
		return run.state
	}

	e.resolve(ctx, run)
	e.generate(ctx, run, logger)
	e.transition(ctx, run, domain.StageTerminated)

	logger.DebugContext(ctx, "question answered",
		"outcome", run.state.Outcome,
		"topic", run.state.Topic,
	)
	return run.state
}

// execution bundles the per-question data of a single Run.
type execution struct {
	id       string
	state    *domain.QAState
	resolver *Resolver
}

// transition advances the state machine and fires stage hooks.
// Every call site follows the fixed stage order, so a failure here is a programming error.
func (e *Engine) transition(ctx context.Context, run *execution, to domain.Stage) {
	from := run.state.Stage
	if e.hooks.OnStageLeave != nil {
		e.fire(ctx, run, domain.EventStageLeave, func() {
			e.hooks.OnStageLeave(ctx, e.stageEvent(run, domain.EventStageLeave, from))
		})
	}

	if err := run.state.Advance(to); err != nil {
		panic(err)
	}

	if e.hooks.OnStageEnter != nil {
		e.fire(ctx, run, domain.EventStageEnter, func() {
			e.hooks.OnStageEnter(ctx, e.stageEvent(run, domain.EventStageEnter, to))
		})
	}
}

// fire runs a hook callback. A panicking hook is logged and the run continues.
func (e *Engine) fire(ctx context.Context, run *execution, typ domain.EventType, hook func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "lifecycle hook panicked",
				"run_id", run.id,
				"event", typ,
				"panic", r,
			)
		}
	}()
	hook()
}

func (e *Engine) stageEvent(run *execution, typ domain.EventType, stage domain.Stage) *domain.StageEvent {
	return &domain.StageEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      typ,
			RunID:     run.id,
		},
		Stage:   stage,
		Topic:   run.state.Topic,
		Outcome: run.state.Outcome,
	}
}
