package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders bot messages as markdown
// using glamour's auto-detected light/dark style. width <= 0 keeps glamour's
// default word wrap.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}
