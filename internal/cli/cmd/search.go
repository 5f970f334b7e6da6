package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
)

var (
	searchJSON  bool
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a one-shot search",
	Long: `Search the backend once and print the results.

A scope token narrows the search to a single source:

  oslash search "travel receipts"
  oslash search "o/mail travel receipts"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	app := GetApp()
	query := strings.Join(args, " ")

	limit := searchLimit
	if limit <= 0 {
		limit = app.Config.Trigger.SearchLimit
	}

	conn := app.Conn("cli")
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.Backend.SearchTimeout+app.Config.Backend.HealthTimeout)
	defer cancel()

	resp, err := conn.Do(ctx, messaging.NewSearchRequest(conn.Origin("search"), query, limit))
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if resp.Kind == messaging.KindSearchError {
		return fmt.Errorf("%s", resp.Err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp.Results)
	}

	if len(resp.Results) == 0 {
		fmt.Printf("No results for %q\n", query)
		return nil
	}

	for i, r := range resp.Results {
		fmt.Printf("%d. %s  [%s]\n", i+1, r.Title, r.Source)
		if r.Snippet != "" {
			fmt.Printf("   %s\n", r.Snippet)
		}
		if r.URL != "" {
			fmt.Printf("   %s\n", r.URL)
		}
	}
	fmt.Printf("\n%d results in %.0fms\n", len(resp.Results), resp.SearchTimeMs)
	return nil
}
