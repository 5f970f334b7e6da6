package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

var disconnectCmd = &cobra.Command{
	Use:   "disconnect <source>",
	Short: "Disconnect a source and drop its index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisconnect,
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	app := GetApp()

	source, ok := parser.LookupScope(args[0])
	if !ok {
		return fmt.Errorf("unknown source %q", args[0])
	}

	conn := app.Conn("cli")
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.Backend.SyncTimeout)
	defer cancel()

	resp, err := conn.Do(ctx, messaging.NewSourceRequest(messaging.KindDisconnectSource, conn.Origin("disconnect"), string(source)))
	if err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	if resp.Err != "" {
		return fmt.Errorf("%s", resp.Err)
	}

	fmt.Printf("Disconnected %s\n", source)
	return nil
}
