package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [tree]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes dialogs as MCP tools so AI agents can walk the tree.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP on --addr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTree(args); err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		return cli.ServeMCP(cmd.Context(), cfg, transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "", "Listen address for sse (default from ARBOR_ADDR or :8080)")
}
