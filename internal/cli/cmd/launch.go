package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ankitkumarpansari/oslash-local/internal/launcher"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Open the quick-launch box",
	Long: `Open the quick-launch box. Typing searches all connected sources live;
enter opens the selected result. Text that looks like a URL navigates
directly.`,
	RunE: runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
}

func runLaunch(_ *cobra.Command, _ []string) error {
	app := GetApp()

	conn := app.Conn("quicklaunch")
	defer conn.Close()

	m := launcher.NewModel(conn, launcher.NewSystemOpener(), app.Config.Launcher.QuickLaunchLimit, app.Log)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("quick launch: %w", err)
	}
	return nil
}
