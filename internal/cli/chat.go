package cli

import (
	"context"
	"os"

	"github.com/aretw0/grounded/internal/presentation/tui"
	"github.com/aretw0/grounded/pkg/runner"
)

// ChatOptions configures the interactive session.
type ChatOptions struct {
	JSON    bool
	Verbose bool
	Watch   bool
}

// RunChat starts the interactive question loop on Stdin/Stdout.
func RunChat(ctx context.Context, opts Options, chat ChatOptions) error {
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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if chat.Watch {
		go func() {
			if err := app.Pipeline.ReloadOnChange(ctx); err != nil {
				logger.Warn("hot reload disabled", "err", err)
			}
		}()
	}

	interactive := !chat.JSON && tui.Interactive()

	var handler runner.IOHandler
	if chat.JSON {
		handler = runner.NewJSONHandler(os.Stdin, os.Stdout)
	} else {
		textOpts := []runner.TextHandlerOption{runner.WithTextHandlerVerbose(chat.Verbose)}
		if interactive {
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
		} else {
			textOpts = append(textOpts, runner.WithTextHandlerPrompt(""))
		}
		handler = runner.NewTextHandler(os.Stdin, os.Stdout, textOpts...)
	}

	if interactive {
		tui.PrintBanner(os.Stdout, app.Pipeline.Model().Name())
		printSystemMessage("Ask a question (type 'exit' to quit).")
	}

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithSignals(true),
	)
	return r.Run(ctx, app.Pipeline)
}
