package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/grounded/pkg/domain"
)

// Resolver decides which topic, if any, grounds a question.
// It is immutable once built and safe for concurrent use.
type Resolver struct {
	topics []compiledTopic
}

type compiledTopic struct {
	name     string
	passage  string
	triggers []string // lower-cased, trimmed
}

// NewResolver compiles an ordered topic list.
// Topic order is significant: the first topic with a matching trigger wins.
func NewResolver(topics []domain.Topic) (*Resolver, error) {
	if len(topics) == 0 {
		return nil, domain.ErrNoTopics
	}

	seen := make(map[string]bool, len(topics))
	compiled := make([]compiledTopic, 0, len(topics))
	for _, t := range topics {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("%w: duplicate topic name %q", domain.ErrInvalidTopic, t.Name)
		}
		seen[t.Name] = true

		ct := compiledTopic{
			name:     t.Name,
			passage:  t.Passage,
			triggers: make([]string, 0, len(t.Triggers)),
		}
		for _, trigger := range t.Triggers {
			ct.triggers = append(ct.triggers, strings.ToLower(strings.TrimSpace(trigger)))
		}
		compiled = append(compiled, ct)
	}

	return &Resolver{topics: compiled}, nil
}

// Resolve returns the matching topic name and passage.
// The normalized question must already be lower-cased.
func (r *Resolver) Resolve(normalized string) (name, passage string, ok bool) {
	for _, t := range r.topics {
		for _, trigger := range t.triggers {
			if strings.Contains(normalized, trigger) {
				return t.name, t.passage, true
			}
		}
	}
	return "", "", false
}

// Topics returns the compiled topic list in resolution order.
func (r *Resolver) Topics() []domain.Topic {
	out := make([]domain.Topic, len(r.topics))
	for i, t := range r.topics {
		out[i] = domain.Topic{
			Name:     t.name,
			Passage:  t.passage,
			Triggers: append([]string(nil), t.triggers...),
		}
	}
	return out
}

func (e *Engine) resolve(ctx context.Context, run *execution) {
	if name, passage, ok := run.resolver.Resolve(run.state.Normalized); ok {
		run.state.Topic = name
		run.state.Context = &passage
	}
	e.transition(ctx, run, domain.StageContextResolved)
}
