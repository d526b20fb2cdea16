package ports

import (
	"context"

	"github.com/aretw0/grounded/pkg/domain"
)

// TopicSource defines how the pipeline retrieves topic definitions.
// This allows the storage layer (Loam, file, memory) to be decoupled.
type TopicSource interface {
	// Topics returns the ordered topic list. Earlier topics win on overlapping triggers.
	Topics(ctx context.Context) ([]domain.Topic, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload of topics while serving.
type Watchable interface {
	// Watch returns a channel that is signaled with the changed document ID.
	Watch(ctx context.Context) (<-chan string, error)
}
