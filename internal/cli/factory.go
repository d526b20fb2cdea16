package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/grounded"
	"github.com/aretw0/grounded/pkg/adapters/file"
	"github.com/aretw0/grounded/pkg/adapters/genai"
	"github.com/aretw0/grounded/pkg/adapters/loam"
	"github.com/aretw0/grounded/pkg/adapters/memory"
	"github.com/aretw0/grounded/pkg/adapters/ollama"
	"github.com/aretw0/grounded/pkg/adapters/redis"
	"github.com/aretw0/grounded/pkg/config"
	"github.com/aretw0/grounded/pkg/observability"
	"github.com/aretw0/grounded/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// App bundles a configured pipeline with the resources it owns.
type App struct {
	Config   *config.Config
	Pipeline *grounded.Pipeline
	Logger   *slog.Logger
	Registry *prometheus.Registry

	closers []func() error
}

// NewApp wires model, topic source, cache and metrics from cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "configuration loaded",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"api_key", cfg.APIKey,
		"topics_file", cfg.TopicsFile,
		"topics_dir", cfg.TopicsDir,
		"cache", cfg.Cache.Enabled,
		"redis_password", cfg.Cache.RedisPassword,
	)

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	model, err := newModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics(app.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	opts := []grounded.Option{
		grounded.WithLogger(logger),
		grounded.WithModelTimeout(cfg.ModelTimeout),
		grounded.WithLifecycleHooks(observability.ComposeHooks(
			metrics.Hooks(),
			observability.LoggingHooks(logger),
		)),
	}

	source, err := newTopicSource(cfg)
	if err != nil {
		return nil, err
	}
	if source != nil {
		opts = append(opts, grounded.WithTopicSource(source))
	}

	cache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		opts = append(opts, grounded.WithCache(cache))
		app.closers = append(app.closers, closeCache)
	}

	p, err := grounded.New(model, opts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error initializing pipeline: %w", err)
	}
	app.Pipeline = p

	logger.Debug("pipeline ready",
		"model", model.Name(),
		"topics", len(p.Topics()),
		"cache", cache != nil,
	)
	return app, nil
}

// Close releases the resources owned by the app.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newModel(ctx context.Context, cfg *config.Config) (ports.Model, error) {
	switch cfg.Provider {
	case config.ProviderGenAI:
		m, err := genai.New(ctx, genai.Config{APIKey: cfg.APIKey, Model: cfg.Model})
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.ProviderOllama:
		return ollama.New(ollama.Config{BaseURL: cfg.OllamaURL, Model: cfg.Model}), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}

// newTopicSource returns nil when neither a file nor a directory is configured,
// which leaves the pipeline on its built-in topic.
func newTopicSource(cfg *config.Config) (ports.TopicSource, error) {
	switch {
	case cfg.TopicsDir != "":
		src, err := loam.Open(cfg.TopicsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open topics directory: %w", err)
		}
		return src, nil
	case cfg.TopicsFile != "":
		return file.NewSource(cfg.TopicsFile), nil
	default:
		return nil, nil
	}
}

// newCache returns a nil cache when caching is disabled.
// An unreachable Redis is reported at startup rather than on every question.
func newCache(ctx context.Context, cfg *config.Config) (ports.AnswerCache, func() error, error) {
	if !cfg.Cache.Enabled {
		return nil, nil, nil
	}
	if cfg.Cache.RedisAddr == "" {
		return memory.NewCache(), func() error { return nil }, nil
	}

	var opts []redis.Option
	if cfg.Cache.TTL > 0 {
		opts = append(opts, redis.WithTTL(cfg.Cache.TTL))
	}
	if cfg.Cache.Prefix != "" {
		opts = append(opts, redis.WithPrefix(cfg.Cache.Prefix))
	}

	cache := redis.New(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, opts...)
	if err := cache.Ping(ctx); err != nil {
		cache.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
	}
	return cache, cache.Close, nil
}
