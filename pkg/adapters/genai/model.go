package genai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds configuration for the Gemini model client.
type Config struct {
	APIKey string
	Model  string
	// Temperature is passed through when non-nil.
	Temperature *float32
}

// Model implements ports.Model using Google's Gemini API.
// The client is created once and is safe for concurrent use.
type Model struct {
	client *genai.Client
	config *genai.GenerateContentConfig
	model  string
}

// New creates a Gemini model client.
func New(ctx context.Context, cfg Config) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GenAI API key is required")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	var genCfg *genai.GenerateContentConfig
	if cfg.Temperature != nil {
		genCfg = &genai.GenerateContentConfig{Temperature: cfg.Temperature}
	}

	return &Model{
		client: client,
		config: genCfg,
		model:  cfg.Model,
	}, nil
}

// Generate sends the prompt as a single user turn and returns the text answer.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), m.config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", errors.New("GenAI returned no candidates")
	}
	return result.Text(), nil
}

// Name returns the model name.
func (m *Model) Name() string {
	return fmt.Sprintf("genai:%s", m.model)
}
