// cmd/subscription/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// reportedError marks an error whose message was already printed for the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "subscription",
		Short: "Move customers between free, basic and premium subscriptions",
		Long: `subscription upgrades and downgrades customer subscription tiers held in a remote
record store. It runs as a one-shot command or as a Camunda job worker.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newUpgradeCmd(),
		newDowngradeCmd(),
		newHistoryCmd(),
		newWorkerCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "subscription %s\n", Version)
			if GitCommit != "unknown" {
				fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", GitCommit)
			}
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
