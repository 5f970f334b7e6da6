// Package cmd provides Cobra CLI commands for oslash.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ankitkumarpansari/oslash-local/internal/cli"
)

var (
	app       *cli.App
	buildInfo cli.BuildInfo
	rootCmd   = &cobra.Command{
		Use:   "oslash",
		Short: "Local cross-context search for everything you have access to",
		Long: `OSlash - type o/ anywhere and search your whole workspace.

A local search launcher backed by the oslash indexing server. Results come
from your connected sources (Gmail, Drive, Calendar, Slack, Notion, HubSpot
and browser history) and open directly in the right app.

Use 'oslash watch' to run the trigger engine against typed input,
'oslash launch' for the quick-launch box, or 'oslash status' for the
connection dashboard.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info cli.BuildInfo) {
	buildInfo = info
}
