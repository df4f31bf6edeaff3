// Command conference-central runs the conference API server and its
// maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const serviceName = "conference-central"

var rootCmd = &cobra.Command{
	Use:           serviceName,
	Short:         "Conference management API server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	// Running the binary without a subcommand starts the server.
	rootCmd.RunE = newServeCmd().RunE

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
