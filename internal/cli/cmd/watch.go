package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ankitkumarpansari/oslash-local/internal/launcher"
	"github.com/ankitkumarpansari/oslash-local/internal/overlay"
	"github.com/ankitkumarpansari/oslash-local/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the trigger engine against typed input",
	Long: `Run the trigger detection engine. Each line of input is treated as the
current text of an input field; lines containing the trigger token produce
a debounced search and render the result overlay.

Lines are routed to target "input-1" unless prefixed with "<target>|".
Key lines control the visible overlay:

  :down :up    move the selection
  :enter       open the selected result
  :esc         dismiss the overlay`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

const defaultTarget = "input-1"

// stdinAnchors anchors every overlay below a fixed prompt line.
type stdinAnchors struct{}

func (stdinAnchors) AnchorFor(string) overlay.Anchor {
	return overlay.Anchor{X: 0, Y: 1, Width: 60, Height: 1, ViewportWidth: 120, ViewportHeight: 40}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if err := app.WatchConfig(); err != nil {
		app.Log.Warn().Err(err).Msg("config hot reload unavailable")
	}

	cfg := app.Config
	conn := app.Conn("page")
	defer conn.Close()

	w := watcher.New(app.Parser, conn, watcher.Config{
		TriggerDebounce: cfg.Trigger.TriggerDebounce,
		PrewarmDebounce: cfg.Trigger.PrewarmDebounce,
		SearchLimit:     cfg.Trigger.SearchLimit,
	}, app.Log)
	defer w.Close()

	opener := launcher.NewSystemOpener()
	ctrl := overlay.NewController(overlay.NewTermRenderer(os.Stdout), opener, w, stdinAnchors{}, app.Log,
		overlay.WithMaxVisible(cfg.Overlay.MaxResults), overlay.WithMinWidth(cfg.Overlay.MinWidth))

	g, ctx := errgroup.WithContext(cmd.Context())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan watcher.InputEvent)

	g.Go(func() error {
		return w.Run(ctx, events)
	})

	g.Go(func() error {
		for {
			select {
			case resp, ok := <-conn.Inbox():
				if !ok {
					return nil
				}
				ctrl.HandleResponse(resp)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		defer cancel()
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if key, ok := overlayKey(line); ok {
				ctrl.HandleKey(key)
				continue
			}

			target, value := defaultTarget, line
			if idx := strings.Index(line, "|"); idx > 0 && idx < 32 {
				target, value = line[:idx], line[idx+1:]
			}

			select {
			case events <- watcher.InputEvent{TargetID: target, Surface: watcher.SurfaceInput, Value: value}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return scanner.Err()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// overlayKey maps a control line to an overlay key action.
func overlayKey(line string) (overlay.Key, bool) {
	switch strings.TrimSpace(line) {
	case ":down":
		return overlay.KeyDown, true
	case ":up":
		return overlay.KeyUp, true
	case ":enter":
		return overlay.KeyEnter, true
	case ":esc":
		return overlay.KeyEscape, true
	default:
		return 0, false
	}
}
