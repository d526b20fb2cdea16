package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/grounded/pkg/adapters/http"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful shutdown of the servers.
const shutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	Addr  string
	Watch bool
}

// Serve runs the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, opts Options, serve ServeOptions) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	if serve.Addr != "" {
		cfg.HTTP.Addr = serve.Addr
	}
	logger := createLogger(cfg)

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	handler, err := httpAdapter.NewHandler(app.Pipeline,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetrics(app.Registry),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting Grounded Server", "address", srv.Addr, "model", app.Pipeline.Model().Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("Grounded Server stopped gracefully")
		return nil
	})
	if serve.Watch {
		g.Go(func() error {
			if err := app.Pipeline.ReloadOnChange(gctx); err != nil {
				logger.Warn("hot reload disabled", "err", err)
			}
			return nil
		})
	}

	return g.Wait()
}
