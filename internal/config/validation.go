// Package config provides validation utilities for configuration values.
package config

import (
	"fmt"
	"strings"
)

// normalizeConfig fills gaps a partial config file leaves behind so the rest
// of the program never sees zero values.
func normalizeConfig(config *Config) {
	defaults := DefaultConfig()

	if config.Backend.BaseURL == "" {
		config.Backend.BaseURL = defaults.Backend.BaseURL
	}
	config.Backend.BaseURL = strings.TrimRight(config.Backend.BaseURL, "/")

	if config.Backend.HealthTimeout <= 0 {
		config.Backend.HealthTimeout = defaults.Backend.HealthTimeout
	}
	if config.Backend.SearchTimeout <= 0 {
		config.Backend.SearchTimeout = defaults.Backend.SearchTimeout
	}
	if config.Backend.SyncTimeout <= 0 {
		config.Backend.SyncTimeout = defaults.Backend.SyncTimeout
	}
	if config.Backend.HealthInterval <= 0 {
		config.Backend.HealthInterval = defaults.Backend.HealthInterval
	}
	if config.Backend.PendingTTL <= 0 {
		config.Backend.PendingTTL = defaults.Backend.PendingTTL
	}

	if config.Trigger.Token == "" {
		config.Trigger.Token = defaults.Trigger.Token
	}
	if config.Trigger.TriggerDebounce <= 0 {
		config.Trigger.TriggerDebounce = defaults.Trigger.TriggerDebounce
	}
	if config.Trigger.PrewarmDebounce <= 0 {
		config.Trigger.PrewarmDebounce = defaults.Trigger.PrewarmDebounce
	}
	if config.Trigger.SearchLimit <= 0 {
		config.Trigger.SearchLimit = defaults.Trigger.SearchLimit
	}

	if config.Overlay.MaxResults <= 0 {
		config.Overlay.MaxResults = defaults.Overlay.MaxResults
	}
	if config.Overlay.MinWidth <= 0 {
		config.Overlay.MinWidth = defaults.Overlay.MinWidth
	}

	if config.Launcher.InterceptTimeout <= 0 {
		config.Launcher.InterceptTimeout = defaults.Launcher.InterceptTimeout
	}
	if config.Launcher.QuickLaunchLimit <= 0 {
		config.Launcher.QuickLaunchLimit = defaults.Launcher.QuickLaunchLimit
	}

	if config.Logging.Level == "" {
		config.Logging.Level = defaults.Logging.Level
	}
	if config.Logging.Format == "" {
		config.Logging.Format = defaults.Logging.Format
	}
}

// validateConfig performs validation of configuration values.
func validateConfig(config *Config) error {
	var validationErrors []string

	if !strings.HasPrefix(config.Backend.BaseURL, "http://") && !strings.HasPrefix(config.Backend.BaseURL, "https://") {
		validationErrors = append(validationErrors, fmt.Sprintf("backend.base_url must start with http:// or https:// (got: %s)", config.Backend.BaseURL))
	}

	if strings.ContainsAny(config.Trigger.Token, " \t") {
		validationErrors = append(validationErrors, "trigger.token must not contain whitespace")
	}
	if len(config.Trigger.Token) > 8 {
		validationErrors = append(validationErrors, "trigger.token must be at most 8 characters")
	}

	if config.Trigger.SearchLimit > 50 {
		validationErrors = append(validationErrors, "trigger.search_limit must be at most 50")
	}
	if config.Overlay.MaxResults > 20 {
		validationErrors = append(validationErrors, "overlay.max_results must be at most 20")
	}

	switch strings.ToLower(config.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
		// Valid
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.level must be one of: trace, debug, info, warn, error (got: %s)", config.Logging.Level))
	}

	switch strings.ToLower(config.Logging.Format) {
	case "console", "json":
		// Valid
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.format must be one of: console, json (got: %s)", config.Logging.Format))
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}
	return nil
}
