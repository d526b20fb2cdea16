package tui

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether both stdin and stdout are terminals.
// Rendering and banners are only enabled in that case.
func Interactive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}
