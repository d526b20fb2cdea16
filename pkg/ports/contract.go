package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/grounded/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAnswerCacheContract runs a suite of tests to verify that an AnswerCache implementation
// adheres to the defined interface contract.
func RunAnswerCacheContract(t *testing.T, cache AnswerCache) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		err := cache.Set(ctx, key, "LangGraph builds stateful graphs.")
		require.NoError(t, err, "Set should not return error")

		got, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, "LangGraph builds stateful graphs.", got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, "first"))
		require.NoError(t, cache.Set(ctx, key, "second"))

		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := cache.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key+"-a", "a"))
		require.NoError(t, cache.Set(ctx, key+"-b", "b"))

		a, err := cache.Get(ctx, key+"-a")
		require.NoError(t, err)
		b, err := cache.Get(ctx, key+"-b")
		require.NoError(t, err)
		assert.Equal(t, "a", a)
		assert.Equal(t, "b", b)
	})
}
