package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/grounded/internal/presentation/graph"
	"github.com/aretw0/grounded/internal/runtime"
	"github.com/aretw0/grounded/pkg/domain"
)

// dryRunModel answers without contacting a provider, so a question can be traced offline.
type dryRunModel struct{}

func (dryRunModel) Generate(ctx context.Context, prompt string) (string, error) {
	return "(dry run)", nil
}

func (dryRunModel) Name() string { return "dry-run" }

// Graph prints the pipeline as a Mermaid flowchart.
// When question is non-empty, the path it takes is highlighted; the model is not called.
func Graph(ctx context.Context, opts Options, question string, out io.Writer) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	topics := domain.DefaultTopics()
	source, err := newTopicSource(cfg)
	if err != nil {
		return err
	}
	if source != nil {
		if topics, err = source.Topics(ctx); err != nil {
			return err
		}
	}

	resolver, err := runtime.NewResolver(topics)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if question != "" {
		state := runtime.NewEngine(dryRunModel{}, resolver).Run(ctx, question)
		overlay = graph.OverlayFromState(state)
	}

	_, err = fmt.Fprint(out, graph.GenerateMermaid(resolver.Topics(), overlay))
	return err
}
