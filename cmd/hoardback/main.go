// Package main implements the hoardback CLI: backup and restore against
// a content-addressed, deduplicating chunk repository.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Build-time variables set by ldflags.
var (
	version    = "dev"
	buildTime  = "unknown"
	commitHash = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hoardback",
		Short:         "Content-defined-chunking backup and restore",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBackupCmd())
	root.AddCommand(newRestoreCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "hoardback %s (built %s, commit %s)\n", version, buildTime, commitHash)
			return nil
		},
	}
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
