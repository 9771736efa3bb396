package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithExitWords replaces the words that end the loop (default "exit", "quit").
// Matching ignores case and surrounding whitespace.
func WithExitWords(words ...string) Option {
	return func(r *Runner) {
		r.ExitWords = words
	}
}

// WithMaxInputSize caps each reply in bytes; longer replies are refused
// with a system message and the turn repeats.
func WithMaxInputSize(n int) Option {
	return func(r *Runner) {
		r.Input = NewInputPolicy(n)
	}
}
