package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"log/slog"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/dialog"
)

// Runner handles the turn loop of a dialog session using the provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	Handler   IOHandler
	Logger    *slog.Logger
	ExitWords []string
	Input     InputPolicy
}

// NewRunner creates a new Runner. Without WithInputHandler it talks over Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:    logging.NewNop(),
		ExitWords: []string{"exit", "quit"},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run loops until the session reaches a terminal node, input ends, the user
// types an exit word that is not a current option, or ctx is canceled.
// EOF and exit words are not errors.
func (r *Runner) Run(ctx context.Context, s *dialog.Session) error {
	shown := 0

	for {
		messages := s.Messages()
		if shown < len(messages) {
			if err := r.Handler.Output(ctx, messages[shown:]); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			shown = len(messages)
		}

		if s.IsTerminal() {
			r.Logger.Debug("dialog reached terminal node", "session_id", s.ID(), "node", s.CurrentNode())
			return nil
		}

		if err := r.Handler.Options(ctx, s.CurrentOptions()); err != nil {
			return fmt.Errorf("output error: %w", err)
		}

		text, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("input error: %w", err)
		}

		clean, err := r.Input.Clean(text)
		if err != nil {
			r.Logger.Warn("input rejected", "session_id", s.ID(), "err", err)
			if err := r.Handler.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err)); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		// An option labelled like an exit word still wins.
		if r.isExit(clean) && !s.Matches(clean) {
			return nil
		}

		s.SetPendingInput(clean)
		outcome := s.Submit()
		r.Logger.Debug("input submitted", "session_id", s.ID(), "outcome", outcome.String())
	}
}

func (r *Runner) isExit(text string) bool {
	text = strings.TrimSpace(text)
	for _, w := range r.ExitWords {
		if strings.EqualFold(text, w) {
			return true
		}
	}
	return false
}
