package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                 _                ",
	"   __ _ _ __ ___| |__   ___  _ __ ",
	"  / _` | '__/ __| '_ \\ / _ \\| '__|",
	" | (_| | | | (__| |_) | (_) | |   ",
	"  \\__,_|_|  \\___|_.__/ \\___/|_|   ",
}

// Green to teal, top to bottom.
var bannerColors = []string{"#86efac", "#4ade80", "#34d399", "#2dd4bf", "#22d3ee"}

// PrintBanner writes the ASCII banner and version line to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(p.Color(bannerColors[i])))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+strings.TrimPrefix(version, "v")).Faint())
	}
	fmt.Fprintln(w)
}

// NewOptionsFormatter returns a suggestion-line formatter that colors each
// label for the terminal behind w. Plain terminals get "[A] [B]".
func NewOptionsFormatter(w io.Writer) func([]domain.Option) string {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	accent := p.Color("#2dd4bf")

	return func(options []domain.Option) string {
		labels := make([]string, len(options))
		for i, opt := range options {
			labels[i] = out.String("[" + opt.Text + "]").Foreground(accent).String()
		}
		return strings.Join(labels, " ")
	}
}
