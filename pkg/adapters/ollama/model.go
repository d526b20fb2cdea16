package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Defaults for a local Ollama daemon.
const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "llama3"
)

// request body for Ollama
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// Ollama streaming response chunks look like { "response": "...", "done": false }
type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Config holds configuration for the Ollama client.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Model implements ports.Model against the Ollama /api/generate endpoint.
type Model struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates an Ollama model client.
func New(cfg Config) *Model {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Model{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Generate posts the prompt and concatenates the streamed response chunks.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Model:  m.model,
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("encoding ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("creating ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var answer strings.Builder
	decoder := json.NewDecoder(resp.Body)
	for {
		var chunk generateChunk
		if err := decoder.Decode(&chunk); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return "", fmt.Errorf("decoding ollama response: %w", err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("ollama error: %s", chunk.Error)
		}
		answer.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}

	return answer.String(), nil
}

// Name returns the model name.
func (m *Model) Name() string {
	return fmt.Sprintf("ollama:%s", m.model)
}
