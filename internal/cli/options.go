package cli

import (
	"log/slog"

	"github.com/aretw0/grounded/internal/logging"
	"github.com/aretw0/grounded/pkg/config"
)

// Options are the persistent flags shared by every command.
// Non-empty fields override the configuration file and environment.
type Options struct {
	ConfigPath string
	TopicsFile string
	TopicsDir  string
	LogLevel   string
	LogFormat  string
	Provider   string
	Model      string
}

// LoadConfig loads the configuration and applies flag overrides.
func LoadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.TopicsFile != "" {
		cfg.TopicsFile = opts.TopicsFile
		cfg.TopicsDir = ""
	}
	if opts.TopicsDir != "" {
		cfg.TopicsDir = opts.TopicsDir
		cfg.TopicsFile = ""
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if opts.Provider != "" && opts.Provider != cfg.Provider {
		cfg.Provider = opts.Provider
		if opts.Model == "" {
			cfg.Model = ""
		}
	}
	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// createLogger configures the application logger on stderr.
// An unknown level or format falls back to info/text with a warning.
func createLogger(cfg *config.Config) *slog.Logger {
	lvl, levelErr := logging.ParseLevel(cfg.LogLevel)
	format, formatErr := logging.ParseFormat(cfg.LogFormat)
	logger := logging.New(logging.Options{Level: lvl, Format: format})
	if levelErr != nil {
		logger.Warn("invalid log level, using info", "err", levelErr)
	}
	if formatErr != nil {
		logger.Warn("invalid log format, using text", "err", formatErr)
	}
	return logger
}
