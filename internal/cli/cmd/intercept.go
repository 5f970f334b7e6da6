package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankitkumarpansari/oslash-local/internal/launcher"
)

var interceptCmd = &cobra.Command{
	Use:   "intercept <url>",
	Short: "Resolve a navigation through local search",
	Long: `Resolve a committed navigation URL. Search-engine navigations whose
query starts with the trigger token are answered locally and replaced with
the top result, so the browser can call this before letting a navigation
through:

  oslash intercept "https://www.google.com/search?q=o%2Froadmap+doc"

Prints the URL the navigation should continue to. Anything that is not a
triggered search-engine query, and any search the backend cannot answer in
time, passes through unchanged. Set launcher.intercept_navigation to false
to disable interception entirely.`,
	Args: cobra.ExactArgs(1),
	RunE: runIntercept,
}

func init() {
	rootCmd.AddCommand(interceptCmd)
}

func runIntercept(cmd *cobra.Command, args []string) error {
	app := GetApp()
	navURL := args[0]

	if app.Config.Launcher.InterceptNavigation {
		conn := app.Conn("navigation")
		defer conn.Close()

		ic := launcher.NewInterceptor(app.Parser, conn, app.Config.Launcher.InterceptTimeout, app.Log)
		if redirect, ok := ic.Intercept(cmd.Context(), navURL); ok {
			fmt.Println(redirect)
			return nil
		}
	}

	fmt.Println(navURL)
	return nil
}
