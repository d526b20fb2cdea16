package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/grounded/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Cache implements ports.AnswerCache using Redis.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the expiration for cached answers.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached answers.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New creates a new Redis cache with options.
func New(address, password string, db int, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	cache := &Cache{
		client: client,
		prefix: "grounded:answer:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func (c *Cache) key(key string) string {
	return c.prefix + key
}

// Ping verifies the connection.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

// Get retrieves a cached answer.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Set stores an answer. A zero TTL keeps it until evicted.
func (c *Cache) Set(ctx context.Context, key, answer string) error {
	if err := c.client.Set(ctx, c.key(key), answer, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
