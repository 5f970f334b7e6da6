// Package cli wires the engine together for the command-line entry points.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
	"github.com/ankitkumarpansari/oslash-local/internal/config"
	"github.com/ankitkumarpansari/oslash-local/internal/coordinator"
	"github.com/ankitkumarpansari/oslash-local/internal/logging"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

// BuildInfo carries version information set at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// App holds CLI dependencies: configuration, logging, the message bus and a
// running coordinator.
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	Parser    *parser.Parser
	Bus       *messaging.Bus
	Backend   *backend.Client
	BuildInfo BuildInfo

	manager *config.Manager
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewApp loads configuration, builds the backend client and starts the
// coordinator in the background.
func NewApp() (*App, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	if err := manager.Load(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	cfg := manager.Get()

	logLevel := cfg.Logging.Level
	if envLevel := os.Getenv("OSLASH_LOG_LEVEL"); envLevel != "" {
		logLevel = envLevel
	}
	log := logging.NewFromStrings(logLevel, cfg.Logging.Format)

	p := parser.New(cfg.Trigger.Token)
	bus := messaging.NewBus()

	client := backend.NewClient(cfg.Backend.BaseURL, log,
		backend.WithHealthTimeout(cfg.Backend.HealthTimeout),
		backend.WithSearchTimeout(cfg.Backend.SearchTimeout),
		backend.WithSyncTimeout(cfg.Backend.SyncTimeout),
	)

	coord := coordinator.New(bus, client, p, log, coordinator.Options{
		HealthInterval: cfg.Backend.HealthInterval,
		PendingTTL:     cfg.Backend.PendingTTL,
		DefaultLimit:   cfg.Trigger.SearchLimit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	runCtx := logging.WithComponent(logging.WithContext(ctx, log), "coordinator")
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := coord.Run(runCtx); err != nil && runCtx.Err() == nil {
			logging.FromContext(runCtx).Error().Err(err).Msg("coordinator stopped")
		}
	}()

	return &App{
		Config:  cfg,
		Log:     log,
		Parser:  p,
		Bus:     bus,
		Backend: client,
		manager: manager,
		cancel:  cancel,
		done:    done,
	}, nil
}

// Conn subscribes a new context on the bus.
func (a *App) Conn(contextID string) *messaging.Conn {
	return messaging.NewConn(a.Bus, contextID)
}

// WatchConfig starts hot reload of the config file. Reloads are logged;
// settings that feed long-lived components apply on next start.
func (a *App) WatchConfig() error {
	a.manager.OnConfigChange(func(cfg *config.Config) {
		a.Log.Info().Str("file", a.manager.GetConfigFileUsed()).Msg("configuration reloaded")
		a.Config = cfg
	})
	return a.manager.Watch()
}

// Close stops the coordinator and waits for it to drain.
func (a *App) Close() error {
	a.cancel()
	<-a.done
	return nil
}
