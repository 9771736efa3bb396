package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/config"
	"github.com/spf13/cobra"
)

// cfg is filled from the environment, then from flags, before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor walks users through scripted dialog trees",
	Long: `Arbor runs pre-authored conversation trees: the bot greets, offers options,
and moves along the branch whose label the user types.

The tree comes from --tree, ARBOR_TREE or ./arbor.yaml. YAML and JSON files
hold the whole tree; a directory holds one markdown document per node.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, loaded)

		if errs := config.Validate(loaded); len(errs) > 0 {
			return fmt.Errorf("invalid configuration: %v", errs)
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and runs it until an
// interrupt or termination signal.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("tree", "", "Dialog tree: a .yaml/.yml/.json file or a directory of markdown nodes")
	flags.Bool("debug", false, "Log dialog events and internals to stderr")
	flags.Bool("strict", false, "Refuse trees with validation errors")
	flags.String("store", "", "Live session store: memory, file or redis")
	flags.String("sessions-dir", "", "Directory of the file store")
}

// applyFlags overrides environment values with the flags the user set.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("tree") {
		c.Tree, _ = flags.GetString("tree")
	}
	if flags.Changed("debug") {
		c.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("strict") {
		c.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("store") {
		c.Store, _ = flags.GetString("store")
	}
	if flags.Changed("sessions-dir") {
		c.SessionsDir, _ = flags.GetString("sessions-dir")
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		c.Addr, _ = flags.GetString("addr")
	}
}

// requireTree resolves the tree path into cfg.Tree. A positional argument
// wins over --tree and ARBOR_TREE.
func requireTree(args []string) error {
	flag := cfg.Tree
	if len(args) > 0 {
		flag = args[0]
	}
	path, err := cli.ResolveTree(flag, "", ".")
	if err != nil {
		return err
	}
	cfg.Tree = path
	return nil
}
