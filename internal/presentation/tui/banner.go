package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the sprig banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Greens, from leaf to stem.
	lines := []struct{ text, color string }{
		{`                 _       `, "#86efac"},
		{`  ___ _ __  _ __(_) __ _ `, "#4ade80"},
		{` / __| '_ \| '__| |/ _' |`, "#22c55e"},
		{` \__ \ |_) | |  | | (_| |`, "#16a34a"},
		{` |___/ .__/|_|  |_|\__, |`, "#15803d"},
		{`     |_|           |___/ `, "#166534"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
