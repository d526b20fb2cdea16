package ports

import "context"

// AnswerCache memoizes model answers by prompt key.
type AnswerCache interface {
	// Get returns the cached answer.
	// Returns domain.ErrCacheMiss if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the answer under key.
	Set(ctx context.Context, key, answer string) error
}
