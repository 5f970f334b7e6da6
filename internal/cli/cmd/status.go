package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ankitkumarpansari/oslash-local/internal/launcher"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/popup"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend and source connection status",
	Long: `Open the connection dashboard. Shows backend health and per-source
account state, with keys for syncing, connecting and disconnecting
sources.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	app := GetApp()

	conn := app.Conn("popup")
	defer conn.Close()

	if statusJSON {
		return runStatusJSON(cmd.Context(), conn)
	}

	m := popup.NewModel(conn, launcher.NewSystemOpener(), app.Log)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("status dashboard: %w", err)
	}
	return nil
}

// runStatusJSON fetches status once and prints it.
func runStatusJSON(ctx context.Context, conn *messaging.Conn) error {
	app := GetApp()

	ctx, cancel := context.WithTimeout(ctx, app.Config.Backend.SyncTimeout)
	defer cancel()

	resp, err := conn.Do(ctx, messaging.NewRequest(messaging.KindGetStatus, conn.Origin("status")))
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if resp.Err != "" {
		return fmt.Errorf("%s", resp.Err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp.Status)
}
