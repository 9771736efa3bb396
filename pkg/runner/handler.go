package runner

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents transcript entries appended since the last call.
	Output(ctx context.Context, messages []domain.Message) error

	// Options presents the labels the user may type next.
	Options(ctx context.Context, options []domain.Option) error

	// Input reads a response from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. rejected input).
	// This is distinct from the transcript.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
