package memory

import (
	"context"
	"sync"

	"github.com/aretw0/grounded/pkg/domain"
)

// Cache implements ports.AnswerCache in memory.
// Safe for concurrent use.
type Cache struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewCache creates a new in-memory answer cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]string),
	}
}

// Get retrieves a cached answer.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	answer, ok := c.data[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return answer, nil
}

// Set stores an answer.
func (c *Cache) Set(ctx context.Context, key, answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = answer
	return nil
}

// Len returns the number of cached answers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
