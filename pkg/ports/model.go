package ports

import "context"

// Model is the language model collaborator.
// It accepts a single prompt and returns the raw response text.
type Model interface {
	// Generate sends the prompt to the model.
	// Any error is treated uniformly by the pipeline as a model failure.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the model (e.g. "genai:gemini-2.0-flash").
	Name() string
}
