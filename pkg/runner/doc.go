/*
Package runner drives a dialog session from a line-oriented stream.

The Runner prints each new transcript entry, shows the current options as
suggestions, reads one line per turn and submits it. It stops at a terminal
node, on EOF, when the user types "exit" or "quit", or when the context is
canceled.

# Key Components

  - Runner: the turn loop.
  - IOHandler: decouples how transcript entries are shown and input is read.
  - TextHandler: interactive console usage.
  - JSONHandler: JSON-Lines for scripts and embedding processes.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx, engine.NewSession("cli")); err != nil {
		log.Fatal(err)
	}
*/
package runner
