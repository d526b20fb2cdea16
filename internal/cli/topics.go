package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/grounded/pkg/domain"
)

// ListTopics prints the configured topics in resolution order.
// It needs no model, so no API key is required.
func ListTopics(ctx context.Context, opts Options, jsonMode bool, out io.Writer) error {
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
	for _, t := range topics {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	if jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(topics)
	}

	for i, t := range topics {
		fmt.Fprintf(out, "%d. %s\n", i+1, t.Name)
		fmt.Fprintf(out, "   triggers: %s\n", strings.Join(t.Triggers, ", "))
		fmt.Fprintf(out, "   passage:  %s\n", truncate(t.Passage, 72))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
