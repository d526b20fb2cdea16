package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/grounded/pkg/domain"
	"gopkg.in/yaml.v3"
)

// TopicsFile represents the structure of topics.yaml.
type TopicsFile struct {
	Topics []domain.Topic `yaml:"topics" json:"topics"`
}

// Source implements ports.TopicSource backed by a YAML or JSON file.
// The file is re-read on every call so edits are picked up by Reload.
type Source struct {
	path string
}

// NewSource creates a file topic source.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the file backing the source.
func (s *Source) Path() string {
	return s.path
}

// Topics reads and validates the topics file.
func (s *Source) Topics(ctx context.Context) ([]domain.Topic, error) {
	return LoadTopics(s.path)
}

// LoadTopics reads a configuration file (YAML or JSON) and returns its topics in file order.
func LoadTopics(path string) ([]domain.Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topics file: %w", err)
	}

	// JSON is valid YAML, so one decoder handles both formats.
	var cfg TopicsFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), domain.ErrNoTopics)
	}

	for i := range cfg.Topics {
		cfg.Topics[i].Passage = strings.TrimSpace(cfg.Topics[i].Passage)
		if err := cfg.Topics[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: topic #%d: %w", filepath.Base(path), i+1, err)
		}
	}

	return cfg.Topics, nil
}
