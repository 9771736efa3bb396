package main

import (
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat [tree]",
	Short: "Chat with a dialog tree in the terminal",
	Long: `Starts a dialog on stdin/stdout. Type an option label to follow it;
"exit" or "quit" ends the chat.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTree(args); err != nil {
			return err
		}

		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")
		watch, _ := cmd.Flags().GetBool("watch")
		sessionID, _ := cmd.Flags().GetString("session")

		opts := cli.ChatOptions{
			Tree:      cfg.Tree,
			SessionID: sessionID,
			Debug:     cfg.Debug,
			Strict:    cfg.Strict,
			JSON:      jsonMode,
			Plain:     plain,
			Watch:     watch,

			MaxInputSize:   cfg.MaxInputSize,
			RedactPatterns: cfg.RedactPatterns,
		}

		fd := int(os.Stdout.Fd())
		if !term.IsTerminal(fd) {
			opts.Plain = true
		} else if width, _, err := term.GetSize(fd); err == nil {
			opts.Width = width
		}

		return cli.RunChat(cmd.Context(), opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().Bool("json", false, "Exchange JSON lines instead of text")
	chatCmd.Flags().Bool("plain", false, "No banner, colors or markdown rendering")
	chatCmd.Flags().BoolP("watch", "w", false, "Reload the tree on change and keep the dialog")
	chatCmd.Flags().String("session", "", "Label for the dialog in logs")

	// Chat is the default command.
	rootCmd.Args = chatCmd.Args
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
