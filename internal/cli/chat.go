package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/dialog"
	"github.com/aretw0/arbor/pkg/runner"
)

// ChatOptions contains the configuration for the chat command.
type ChatOptions struct {
	Tree      string
	SessionID string
	Debug     bool
	Strict    bool
	JSON      bool
	// Plain disables the banner, colors and markdown rendering.
	Plain bool
	// Watch reloads the tree on change and carries the dialog over.
	Watch bool
	// Width wraps rendered markdown; <= 0 keeps the renderer default.
	Width int
	// MaxInputSize caps each reply in bytes; <= 0 uses the runner default.
	MaxInputSize int
	// RedactPatterns mask matching text in debug logs.
	RedactPatterns []string
}

// RunChat runs one dialog over in/out until it ends, input is exhausted,
// the user exits or ctx is done.
func RunChat(ctx context.Context, opts ChatOptions, in io.Reader, out io.Writer) error {
	if opts.Watch && opts.JSON {
		return fmt.Errorf("--watch and --json cannot be used together")
	}

	logger, err := loggerFor(opts.Debug, true, opts.RedactPatterns)
	if err != nil {
		return err
	}

	engine, err := createEngine(engineConfig{tree: opts.Tree, debug: opts.Debug, strict: opts.Strict}, logger)
	if err != nil {
		return err
	}

	handler, err := chatHandler(opts, in, out)
	if err != nil {
		return err
	}
	if !opts.JSON && !opts.Plain {
		tui.PrintBanner(out, arbor.Version)
	}

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithMaxInputSize(opts.MaxInputSize),
	)
	s := engine.NewSession(opts.SessionID)

	if !opts.Watch {
		return ignoreCanceled(r.Run(ctx, s))
	}
	return runWatch(ctx, engine, r, s, logger)
}

func chatHandler(opts ChatOptions, in io.Reader, out io.Writer) (runner.IOHandler, error) {
	if opts.JSON {
		return runner.NewJSONHandler(in, out), nil
	}
	if opts.Plain {
		return runner.NewTextHandler(in, out), nil
	}

	render, err := tui.NewRenderer(opts.Width)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return runner.NewTextHandler(in, out,
		runner.WithTextHandlerRenderer(render),
		runner.WithOptionsFormatter(tui.NewOptionsFormatter(out)),
	), nil
}

// runWatch restarts the turn loop whenever the tree changes. The dialog is
// restored onto the new tree, so the transcript survives the reload.
func runWatch(ctx context.Context, engine *arbor.Engine, r *runner.Runner, s *dialog.Session, logger *slog.Logger) error {
	changes, err := engine.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		runCtx, cancel := context.WithCancel(ctx)
		reloaded := make(chan struct{})

		go func() {
			for {
				select {
				case <-runCtx.Done():
					return
				case doc, ok := <-changes:
					if !ok {
						return
					}
					if err := engine.Reload(ctx); err != nil {
						logger.Error("reload failed, keeping previous tree", "document", doc, "err", err)
						continue
					}
					logger.Debug("tree reloaded", "document", doc)
					close(reloaded)
					cancel()
					return
				}
			}
		}()

		runErr := r.Run(runCtx, s)
		cancel()

		select {
		case <-reloaded:
			if ctx.Err() != nil {
				return nil
			}
			s = engine.Restore(s.Snapshot())
			if err := r.Handler.SystemOutput(ctx, "Tree reloaded."); err != nil {
				return err
			}
			continue
		default:
		}
		return ignoreCanceled(runErr)
	}
}

// ignoreCanceled treats an interrupt as a normal end of the chat.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
