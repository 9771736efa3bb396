package main

import (
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [tree]",
	Short: "Export the dialog tree as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the tree. Missing targets are
drawn in red. With --session, the path of a stored dialog is highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTree(args); err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		return cli.Graph(cmd.Context(), cfg, sessionID, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the path of this stored dialog")
}
