package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

var syncCmd = &cobra.Command{
	Use:   "sync [source]",
	Short: "Trigger a re-index of one source or all of them",
	Long: `Trigger a backend re-index. With no argument every connected source is
synced; with a source name only that source is.

  oslash sync
  oslash sync gmail`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	app := GetApp()

	conn := app.Conn("cli")
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.Backend.SyncTimeout)
	defer cancel()

	var req messaging.Request
	label := "all sources"
	if len(args) == 1 {
		source, ok := parser.LookupScope(args[0])
		if !ok {
			return fmt.Errorf("unknown source %q", args[0])
		}
		label = string(source)
		req = messaging.NewSourceRequest(messaging.KindSyncSource, conn.Origin("sync"), string(source))
	} else {
		req = messaging.NewRequest(messaging.KindSyncAll, conn.Origin("sync"))
	}

	resp, err := conn.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if resp.Err != "" {
		return fmt.Errorf("%s", resp.Err)
	}

	fmt.Printf("Sync started for %s\n", label)
	return nil
}
