package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/grounded/internal/logging"
	"github.com/aretw0/grounded/pkg/adapters/memory"
	"github.com/aretw0/grounded/pkg/adapters/redis"
	"github.com/aretw0/grounded/pkg/config"
	"github.com/aretw0/grounded/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topicsYAML = `
topics:
  - name: redis
    triggers: [redis]
    passage: Redis is an in-memory data store.
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// newOllama starts a fake Ollama daemon that answers every prompt with reply.
func newOllama(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"response": reply, "done": true})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func ollamaConfig(t *testing.T, url string) string {
	return writeFile(t, "grounded.yaml", "provider: ollama\nollama_url: "+url+"\nlog_level: error\n")
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	path := writeFile(t, "grounded.yaml", "provider: ollama\ntopics_dir: topics\n")

	cfg, err := LoadConfig(Options{ConfigPath: path, TopicsFile: "t.yaml", LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, "t.yaml", cfg.TopicsFile)
	assert.Empty(t, cfg.TopicsDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "llama3", cfg.Model)

	cfg, err = LoadConfig(Options{ConfigPath: path, Provider: config.ProviderGenAI})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model, "switching provider resets the default model")
}

func TestLoadConfig_ProviderSwitchReadsAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("GOOGLE_API_KEY", "")
	path := writeFile(t, "grounded.yaml", "provider: ollama\n")

	cfg, err := LoadConfig(Options{ConfigPath: path, Provider: config.ProviderGenAI})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	assert.NoError(t, cfg.Validate())
}

func TestCreateLogger_JSON(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "debug"

	logger := createLogger(&cfg)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	_, isJSON := logger.Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)
}

func TestNewApp_Ollama(t *testing.T) {
	srv := newOllama(t, "Redis keeps data in memory.")
	cfg, err := LoadConfig(Options{ConfigPath: ollamaConfig(t, srv.URL), TopicsFile: writeFile(t, "topics.yaml", topicsYAML)})
	require.NoError(t, err)

	app, err := NewApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	state := app.Pipeline.Ask(context.Background(), "Why is Redis fast?")
	assert.Equal(t, "Redis keeps data in memory.", state.Answer)
	assert.Equal(t, "redis", state.Topic)

	families, err := app.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewApp_InvalidConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	cfg := config.Default()

	_, err := NewApp(context.Background(), &cfg, logging.NewNop())
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestNewApp_BadTopics(t *testing.T) {
	srv := newOllama(t, "x")
	cfg, err := LoadConfig(Options{ConfigPath: ollamaConfig(t, srv.URL), TopicsFile: writeFile(t, "topics.yaml", "topics: []\n")})
	require.NoError(t, err)

	_, err = NewApp(context.Background(), cfg, logging.NewNop())
	assert.ErrorIs(t, err, domain.ErrNoTopics)
}

func TestNewCache(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		cfg := config.Default()
		cache, _, err := newCache(context.Background(), &cfg)
		require.NoError(t, err)
		assert.Nil(t, cache)
	})

	t.Run("Memory", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Enabled = true
		cache, closeFn, err := newCache(context.Background(), &cfg)
		require.NoError(t, err)
		assert.IsType(t, &memory.Cache{}, cache)
		assert.NoError(t, closeFn())
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.Cache.Enabled = true
		cfg.Cache.RedisAddr = mr.Addr()

		cache, closeFn, err := newCache(context.Background(), &cfg)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &redis.Cache{}, cache)

		require.NoError(t, cache.Set(context.Background(), "k", "v"))
		assert.True(t, mr.Exists(cfg.Cache.Prefix+"k"))
	})

	t.Run("Redis Unreachable", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Enabled = true
		cfg.Cache.RedisAddr = "127.0.0.1:1"

		_, _, err := newCache(context.Background(), &cfg)
		assert.Error(t, err)
	})
}

func TestAsk_Command(t *testing.T) {
	srv := newOllama(t, "Cached in RAM.")
	opts := Options{ConfigPath: ollamaConfig(t, srv.URL), TopicsFile: writeFile(t, "topics.yaml", topicsYAML)}

	var out bytes.Buffer
	err := Ask(context.Background(), opts, AskOptions{
		Questions: []string{"What is Redis?", "What is the weather today?"},
		JSON:      true,
	}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first, second domain.QAState
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "Cached in RAM.", first.Answer)
	assert.Equal(t, domain.FallbackAnswer, second.Answer)
}

func TestAsk_CommandText(t *testing.T) {
	srv := newOllama(t, "unused")

	var out bytes.Buffer
	err := Ask(context.Background(), Options{ConfigPath: ollamaConfig(t, srv.URL)}, AskOptions{
		Questions: []string{"What is the weather today?"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, domain.FallbackAnswer+"\n", out.String())
}

func TestListTopics(t *testing.T) {
	var out bytes.Buffer
	err := ListTopics(context.Background(), Options{TopicsFile: writeFile(t, "topics.yaml", topicsYAML)}, false, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1. redis")
	assert.Contains(t, out.String(), "triggers: redis")

	out.Reset()
	require.NoError(t, ListTopics(context.Background(), Options{}, true, &out))
	var topics []domain.Topic
	require.NoError(t, json.Unmarshal(out.Bytes(), &topics))
	assert.Equal(t, domain.DefaultTopics(), topics)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestGraph(t *testing.T) {
	var out bytes.Buffer
	err := Graph(context.Background(), Options{TopicsFile: writeFile(t, "topics.yaml", topicsYAML)}, "Is Redis fast?", &out)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "validated -- \"redis\" --> topic_redis")
	assert.Contains(t, got, "class topic_redis visited;")
	assert.Contains(t, got, "class terminated current;")
}
