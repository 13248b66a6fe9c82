// Command tasko serves the task engine over HTTP and moves snapshots in and
// out of the configured storage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	serve := serveCmd()

	root := &cobra.Command{
		Use:     "tasko",
		Short:   "Personal task manager with automatic starts and daily tasks",
		Version: Version,
		// Bare "tasko" serves.
		RunE:          serve.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serve)
	root.AddCommand(exportCmd())
	root.AddCommand(importCmd())

	return root
}
