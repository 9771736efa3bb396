package logging

import (
	"fmt"
	"log/slog"
	"regexp"
)

// Mask replaces every redacted span.
const Mask = "***"

// Redactor masks the parts of logged text that match any of its patterns.
// Dialog state is never redacted: pending input has to reach Submit intact.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles the patterns. It returns nil for an empty list.
func NewRedactor(patterns []string) (*Redactor, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	r := &Redactor{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Mask returns text with every match replaced by Mask.
func (r *Redactor) Mask(text string) string {
	if r == nil {
		return text
	}
	for _, p := range r.patterns {
		text = p.ReplaceAllString(text, Mask)
	}
	return text
}

func (r *Redactor) attr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(r.Mask(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			a.Value = slog.StringValue(r.Mask(err.Error()))
		}
	}
	return a
}
