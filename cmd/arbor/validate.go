package main

import (
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [tree]",
	Short: "Check the tree for consistency",
	Long: `Reports missing messages, options pointing at missing nodes, duplicate
labels and nodes unreachable from the greeting. Exits non-zero on errors;
warnings are printed only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTree(args); err != nil {
			return err
		}
		return cli.Validate(cmd.Context(), cfg.Tree, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
