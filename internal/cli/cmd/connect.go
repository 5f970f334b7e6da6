package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankitkumarpansari/oslash-local/internal/launcher"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

var connectNoBrowser bool

var connectCmd = &cobra.Command{
	Use:   "connect <source>",
	Short: "Connect a source via OAuth",
	Long: `Start the OAuth flow for a source. The consent page opens in your
browser; once granted, the backend begins indexing the account.

  oslash connect gmail
  oslash connect notion`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)

	connectCmd.Flags().BoolVar(&connectNoBrowser, "no-browser", false, "print the consent URL instead of opening it")
}

func runConnect(cmd *cobra.Command, args []string) error {
	app := GetApp()

	source, ok := parser.LookupScope(args[0])
	if !ok {
		return fmt.Errorf("unknown source %q", args[0])
	}

	conn := app.Conn("cli")
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.Backend.SyncTimeout)
	defer cancel()

	resp, err := conn.Do(ctx, messaging.NewSourceRequest(messaging.KindConnectSource, conn.Origin("connect"), string(source)))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if resp.Err != "" {
		return fmt.Errorf("%s", resp.Err)
	}
	if resp.AuthURL == "" {
		return fmt.Errorf("backend returned no consent URL for %s", source)
	}

	if connectNoBrowser {
		fmt.Printf("Open this URL to connect %s:\n%s\n", source, resp.AuthURL)
		return nil
	}

	if err := launcher.NewSystemOpener().Navigate(resp.AuthURL); err != nil {
		fmt.Printf("Could not open a browser. Open this URL to connect %s:\n%s\n", source, resp.AuthURL)
		return nil
	}
	fmt.Printf("Opened browser to connect %s\n", source)
	return nil
}
