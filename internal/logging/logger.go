package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Redacted replaces the value of secret attributes.
const Redacted = "[redacted]"

// secretKeys are attribute keys whose values never reach the log output.
var secretKeys = map[string]bool{
	"api_key":        true,
	"redis_password": true,
	"password":       true,
}

// Options configures the application logger.
type Options struct {
	Level  slog.Level
	Format Format
	// Writer defaults to os.Stderr; stdout carries answers and JSON-RPC.
	Writer io.Writer
}

// New creates the application logger. It renames "error" to "err" and
// redacts credentials so a logged config never leaks the Gemini key.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{
		Level:       opts.Level,
		ReplaceAttr: replaceAttr,
	}
	if opts.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	if secretKeys[a.Key] && a.Value.String() != "" {
		a.Value = slog.StringValue(Redacted)
	}
	return a
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// ParseFormat maps "text" or "json" to a Format. Empty means text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", name)
	}
}
