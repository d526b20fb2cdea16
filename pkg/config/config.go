// Package config loads grounded settings from a YAML file and GROUNDED_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. GROUNDED_MODEL.
const EnvPrefix = "GROUNDED_"

const (
	ProviderGenAI  = "genai"
	ProviderOllama = "ollama"
)

var (
	ErrUnknownProvider = errors.New("unknown model provider")
	ErrMissingAPIKey   = errors.New("missing API key")
)

// Config holds every setting of the CLI and servers.
type Config struct {
	Provider     string        `mapstructure:"provider" yaml:"provider"`
	Model        string        `mapstructure:"model" yaml:"model"`
	APIKey       string        `mapstructure:"api_key" yaml:"api_key"`
	OllamaURL    string        `mapstructure:"ollama_url" yaml:"ollama_url"`
	ModelTimeout time.Duration `mapstructure:"model_timeout" yaml:"model_timeout"`
	TopicsFile   string        `mapstructure:"topics_file" yaml:"topics_file"`
	TopicsDir    string        `mapstructure:"topics_dir" yaml:"topics_dir"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat    string        `mapstructure:"log_format" yaml:"log_format"`
	HTTP         HTTPConfig    `mapstructure:"http" yaml:"http"`
	Cache        CacheConfig   `mapstructure:"cache" yaml:"cache"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// CacheConfig configures answer memoization.
// An enabled cache without RedisAddr lives in process memory.
type CacheConfig struct {
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	Prefix        string        `mapstructure:"prefix" yaml:"prefix"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

var defaultModels = map[string]string{
	ProviderGenAI:  "gemini-2.0-flash",
	ProviderOllama: "llama3",
}

func base() Config {
	return Config{
		Provider:     ProviderGenAI,
		OllamaURL:    "http://localhost:11434",
		ModelTimeout: 30 * time.Second,
		LogLevel:     "info",
		LogFormat:    "text",
		HTTP:         HTTPConfig{Addr: ":8080"},
		Cache: CacheConfig{
			Prefix: "grounded:answer:",
			TTL:    24 * time.Hour,
		},
	}
}

// Default returns the configuration used when no file or environment is set.
func Default() Config {
	c := base()
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills values that depend on other fields: the provider's
// default model and, for genai, an API key from GEMINI_API_KEY or GOOGLE_API_KEY.
// Call it again after changing Provider or Model.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	if c.APIKey == "" && c.Provider == ProviderGenAI {
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if v := os.Getenv(name); v != "" {
				c.APIKey = v
				break
			}
		}
	}
}

// Load reads path (optional, may be empty) and applies environment overrides.
// A missing file is an error only when path is non-empty.
func Load(path string) (*Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	applyEnv(raw, os.Environ())

	cfg := base()
	if err := decode(raw, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// sections are the nested keys; GROUNDED_CACHE_TTL maps to cache.ttl.
var sections = []string{"http", "cache"}

// applyEnv overlays GROUNDED_* variables onto raw.
func applyEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if !isKnownKey(key) {
			continue
		}

		section, field := splitSection(key)
		if section == "" {
			raw[field] = value
			continue
		}
		sub, ok := raw[section].(map[string]any)
		if !ok {
			sub = map[string]any{}
			raw[section] = sub
		}
		sub[field] = value
	}
}

func splitSection(key string) (string, string) {
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(key, s+"_"); ok {
			return s, rest
		}
	}
	return "", key
}

// isKnownKey filters out unrelated GROUNDED_* variables such as GROUNDED_MAX_INPUT_SIZE.
func isKnownKey(key string) bool {
	switch key {
	case "provider", "model", "api_key", "ollama_url", "model_timeout",
		"topics_file", "topics_dir", "log_level", "log_format",
		"http_addr",
		"cache_enabled", "cache_redis_addr", "cache_redis_password", "cache_redis_db", "cache_prefix", "cache_ttl":
		return true
	}
	return false
}

// Validate checks settings the CLI cannot run without.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGenAI:
		if c.APIKey == "" {
			return fmt.Errorf("%w: set api_key, %sAPI_KEY or GEMINI_API_KEY", ErrMissingAPIKey, EnvPrefix)
		}
	case ProviderOllama:
		if c.OllamaURL == "" {
			return errors.New("ollama_url is required for the ollama provider")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	if c.ModelTimeout < 0 {
		return fmt.Errorf("model_timeout must not be negative, got %s", c.ModelTimeout)
	}
	if c.TopicsFile != "" && c.TopicsDir != "" {
		return errors.New("topics_file and topics_dir are mutually exclusive")
	}
	return nil
}
