package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

var (
	// DefaultMaxInputSize bounds a single question in bytes.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "GROUNDED_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer cleans questions before they reach the pipeline.
// Every front end (chat, ask, HTTP, MCP) runs input through one.
type Sanitizer struct {
	// MaxBytes rejects longer input. Zero or negative means DefaultMaxInputSize.
	MaxBytes int
}

// NewSanitizer returns a Sanitizer whose limit honours EnvMaxInputSize.
func NewSanitizer() Sanitizer {
	return Sanitizer{MaxBytes: maxInputSize()}
}

// Clean enforces the size limit, validates UTF-8, removes terminal escape
// sequences and drops control characters other than newline, tab and
// carriage return. Oversized input is rejected, never truncated.
func (s Sanitizer) Clean(input string) (string, error) {
	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Pasted terminal output carries colour codes; drop the whole sequence,
	// not just the ESC byte, so "[31m" never reaches the trigger match.
	if strings.ContainsRune(input, '\x1b') {
		input = ansi.Strip(input)
	}

	if strings.IndexFunc(input, isUnsafeControl) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

// SanitizeInput cleans input with NewSanitizer.
func SanitizeInput(input string) (string, error) {
	return NewSanitizer().Clean(input)
}

func isUnsafeControl(r rune) bool {
	if r == '\n' || r == '\t' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
