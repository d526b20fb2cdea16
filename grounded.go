package grounded

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/grounded/internal/runtime"
	"github.com/aretw0/grounded/pkg/adapters/memory"
	"github.com/aretw0/grounded/pkg/domain"
	"github.com/aretw0/grounded/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// Pipeline is the high-level entry point for the grounded library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Pipeline struct {
	runtime      *runtime.Engine
	model        ports.Model
	source       ports.TopicSource
	cache        ports.AnswerCache
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	modelTimeout time.Duration
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithTopicSource injects a custom TopicSource (file, Loam, ...).
func WithTopicSource(src ports.TopicSource) Option {
	return func(p *Pipeline) {
		p.source = src
	}
}

// WithTopics configures a fixed topic list, replacing the built-in LangGraph topic.
func WithTopics(topics ...domain.Topic) Option {
	return func(p *Pipeline) {
		p.source = staticTopics(topics)
	}
}

// WithCache enables answer memoization.
func WithCache(cache ports.AnswerCache) Option {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

// WithModelTimeout bounds every model call. A call that exceeds it yields the model error answer.
func WithModelTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.modelTimeout = d
	}
}

// staticTopics lets WithTopics defer validation to New.
type staticTopics []domain.Topic

func (s staticTopics) Topics(ctx context.Context) ([]domain.Topic, error) {
	return []domain.Topic(s), nil
}

// New initializes a Pipeline around a language model.
// Without a topic option, the built-in LangGraph topic is used.
func New(model ports.Model, opts ...Option) (*Pipeline, error) {
	if model == nil {
		return nil, errors.New("a model is required")
	}

	p := &Pipeline{model: model}
	for _, opt := range opts {
		opt(p)
	}

	if p.source == nil {
		src, err := memory.NewSource(domain.DefaultTopics()...)
		if err != nil {
			return nil, err
		}
		p.source = src
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if p.logger == nil {
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	p.logger = p.logger.With("model", model.Name())

	resolver, err := p.loadResolver(context.Background())
	if err != nil {
		return nil, err
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(p.hooks),
		runtime.WithLogger(p.logger),
		runtime.WithModelTimeout(p.modelTimeout),
	}
	if p.cache != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithCache(p.cache))
	}

	p.runtime = runtime.NewEngine(model, resolver, runtimeOpts...)
	return p, nil
}

func (p *Pipeline) loadResolver(ctx context.Context) (*runtime.Resolver, error) {
	topics, err := p.source.Topics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}
	resolver, err := runtime.NewResolver(topics)
	if err != nil {
		return nil, fmt.Errorf("failed to compile topics: %w", err)
	}
	return resolver, nil
}

// Ask runs one question through the pipeline.
// It never fails: the returned state always carries an answer.
func (p *Pipeline) Ask(ctx context.Context, question string) *domain.QAState {
	return p.runtime.Run(ctx, question)
}

// AskAll answers independent questions concurrently, at most limit at a time.
// Results are returned in input order. A limit <= 0 means no bound.
func (p *Pipeline) AskAll(ctx context.Context, questions []string, limit int) []*domain.QAState {
	results := make([]*domain.QAState, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, q := range questions {
		g.Go(func() error {
			results[i] = p.runtime.Run(gctx, q)
			return nil
		})
	}
	_ = g.Wait() // Run never fails

	return results
}

// Topics returns the active topic set in resolution order.
func (p *Pipeline) Topics() []domain.Topic {
	return p.runtime.Resolver().Topics()
}

// Reload re-reads the topic source and swaps the active topic set.
// On error the previous topic set stays active.
func (p *Pipeline) Reload(ctx context.Context) error {
	resolver, err := p.loadResolver(ctx)
	if err != nil {
		return err
	}
	p.runtime.SetResolver(resolver)
	p.logger.InfoContext(ctx, "topics reloaded", "count", len(resolver.Topics()))
	return nil
}

// Watch returns a channel that signals when the underlying topic source changes.
// Returns error if the source does not support watching.
func (p *Pipeline) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := p.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current topic source does not support watching")
}

// ReloadOnChange reloads topics whenever the source signals a change, until ctx is done.
// Reload failures are logged and the previous topic set is kept.
func (p *Pipeline) ReloadOnChange(ctx context.Context) error {
	events, err := p.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			if err := p.Reload(ctx); err != nil {
				p.logger.ErrorContext(ctx, "topic reload failed", "changed", id, "err", err)
			}
		}
	}
}

// Model returns the model collaborator used by the pipeline.
func (p *Pipeline) Model() ports.Model {
	return p.model
}
