package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [tree]",
	Short: "Serve dialogs over HTTP",
	Long: `Starts the JSON API. Each dialog is a session under /sessions; updates
stream as server-sent events from /sessions/{id}/events. Prometheus metrics
are served on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTree(args); err != nil {
			return err
		}
		return cli.Serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from ARBOR_ADDR or :8080)")
}
