package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ghsync/pkg/logging"
)

var (
	verbose bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "ghsync",
	Short: "Declarative synchronization of GitHub milestones, labels and secrets",
	Long: `ghsync reconciles GitHub repositories against a YAML manifest.

Milestones, labels and Actions secrets declared in the manifest are created
or updated in every target repository, and the sync flags delete the ones
nobody declares anymore. Runs are idempotent: applying the same manifest to
an already converged repository changes nothing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_, err := logging.Setup(verbose, logFile)
		return err
	},
}

// Execute runs the root command. An interrupt cancels the command context so
// a sync in flight stops between operations and still reports what it did;
// that path exits with the conventional interrupt code 130.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file as well as stderr")
}
