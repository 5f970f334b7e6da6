// Package config provides default configuration values for oslash.
package config

import (
	"time"
)

// Default configuration constants
const (
	// Backend defaults
	defaultHealthTimeout  = 2 * time.Second
	defaultSearchTimeout  = 5 * time.Second
	defaultSyncTimeout    = 30 * time.Second
	defaultHealthInterval = 30 * time.Second
	defaultPendingTTL     = 10 * time.Second

	// Trigger defaults
	defaultTriggerDebounce = 300 * time.Millisecond
	defaultPrewarmDebounce = 100 * time.Millisecond
	defaultSearchLimit     = 5

	// Overlay defaults
	defaultMaxResults      = 5
	defaultOverlayMinWidth = 44

	// Launcher defaults
	defaultInterceptTimeout = 2 * time.Second
	defaultQuickLaunchLimit = 8
)

// DefaultConfig returns the default configuration values for oslash.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			HealthTimeout:  defaultHealthTimeout,
			SearchTimeout:  defaultSearchTimeout,
			SyncTimeout:    defaultSyncTimeout,
			HealthInterval: defaultHealthInterval,
			PendingTTL:     defaultPendingTTL,
		},
		Trigger: TriggerConfig{
			Token:           "o/",
			TriggerDebounce: defaultTriggerDebounce,
			PrewarmDebounce: defaultPrewarmDebounce,
			SearchLimit:     defaultSearchLimit,
		},
		Overlay: OverlayConfig{
			MaxResults: defaultMaxResults,
			MinWidth:   defaultOverlayMinWidth,
		},
		Launcher: LauncherConfig{
			InterceptNavigation: true,
			InterceptTimeout:    defaultInterceptTimeout,
			QuickLaunchLimit:    defaultQuickLaunchLimit,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
