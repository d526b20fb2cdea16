package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"                                      _          _ ", "#34d399"},
	{"   __ _ _ __ ___  _   _ _ __   __| | ___  __| |", "#2dd4bf"},
	{"  / _` | '__/ _ \\| | | | '_ \\ / _` |/ _ \\/ _` |", "#22d3ee"},
	{" | (_| | | | (_) | |_| | | | | (_| |  __/ (_| |", "#38bdf8"},
	{"  \\__, |_|  \\___/ \\__,_|_| |_|\\__,_|\\___|\\__,_|", "#60a5fa"},
	{"  |___/                                         ", "#818cf8"},
}

// PrintBanner writes the colored ASCII banner and the active model to w.
// Colors degrade to the profile of the terminal behind w.
func PrintBanner(w io.Writer, model string) {
	p := termenv.NewOutput(w).ColorProfile()

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	if model != "" {
		fmt.Fprintln(w, termenv.String("  model: "+model).Faint())
	}
	fmt.Fprintln(w)
}
