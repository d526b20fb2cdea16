package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/grounded/pkg/domain"
	"github.com/aretw0/loam"
)

// Source adapts a Loam repository of Markdown topic documents to ports.TopicSource.
// Each document is one topic: the frontmatter carries name and triggers,
// the body is the context passage.
type Source struct {
	Repo *loam.TypedRepository[TopicMetadata]
}

// New creates a new Loam topic source.
func New(repo *loam.TypedRepository[TopicMetadata]) *Source {
	return &Source{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at dir and wraps it.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps frontmatter types consistent across Markdown/YAML/JSON documents.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[TopicMetadata](repo)), nil
}

type orderedTopic struct {
	topic domain.Topic
	order int
	docID string
}

// Topics lists all topic documents in resolution order (order, then document ID).
// List only carries frontmatter, so each body is fetched with Get.
func (s *Source) Topics(ctx context.Context) ([]domain.Topic, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	collected := make([]orderedTopic, 0, len(docs))

	for _, doc := range docs {
		// Use the name from frontmatter if available, otherwise the file name
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}

		if existingPath, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: topic '%s' is defined in both '%s' and '%s'", name, existingPath, doc.ID)
		}
		seen[name] = doc.ID

		full, err := s.Repo.Get(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", doc.ID, err)
		}

		topic := domain.Topic{
			Name:     name,
			Triggers: full.Data.Triggers,
			Passage:  strings.TrimSpace(full.Content),
		}
		if err := topic.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", doc.ID, err)
		}

		collected = append(collected, orderedTopic{topic: topic, order: full.Data.Order, docID: doc.ID})
	}

	if len(collected) == 0 {
		return nil, domain.ErrNoTopics
	}

	sort.SliceStable(collected, func(i, j int) bool {
		if collected[i].order != collected[j].order {
			return collected[i].order < collected[j].order
		}
		return collected[i].docID < collected[j].docID
	})

	topics := make([]domain.Topic, len(collected))
	for i, c := range collected {
		topics[i] = c.topic
	}
	return topics, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
