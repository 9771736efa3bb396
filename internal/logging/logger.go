package logging

import (
	"io"
	"log/slog"
	"os"
)

// Option tunes the handler built by New and NewJSON.
type Option func(*settings)

type settings struct {
	redactor *Redactor
}

// WithRedactor masks every string attribute through r before it is written.
func WithRedactor(r *Redactor) Option {
	return func(s *settings) {
		s.redactor = r
	}
}

// New creates a configured application logger.
// It writes to Stderr (to separate from the Stdout chat transcript).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, opts ...Option) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, options(level, opts)))
}

// NewJSON creates a JSON logger for server modes where logs are shipped.
func NewJSON(w io.Writer, level slog.Level, opts ...Option) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, options(level, opts)))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func options(level slog.Level, opts []Option) *slog.HandlerOptions {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			if s.redactor != nil {
				a = s.redactor.attr(a)
			}
			return a
		},
	}
}
