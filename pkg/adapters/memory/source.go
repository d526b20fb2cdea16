package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/grounded/pkg/domain"
)

// Source implements ports.TopicSource with a fixed topic list.
type Source struct {
	topics []domain.Topic
}

// NewSource creates a Source from topic definitions.
// Topics are validated eagerly so configuration errors surface at construction.
func NewSource(topics ...domain.Topic) (*Source, error) {
	for _, t := range topics {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("memory source: %w", err)
		}
	}
	return &Source{topics: append([]domain.Topic(nil), topics...)}, nil
}

// Topics returns a copy of the configured topics.
func (s *Source) Topics(ctx context.Context) ([]domain.Topic, error) {
	return append([]domain.Topic(nil), s.topics...), nil
}
