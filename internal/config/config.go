// Package config provides configuration management for oslash with Viper integration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// File permission constants
const (
	dirPerm  = 0755 // Standard directory permissions (rwxr-xr-x)
	filePerm = 0644 // Standard file permissions (rw-r--r--)
)

// Config represents the complete configuration for oslash.
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Trigger  TriggerConfig  `mapstructure:"trigger" yaml:"trigger"`
	Overlay  OverlayConfig  `mapstructure:"overlay" yaml:"overlay"`
	Launcher LauncherConfig `mapstructure:"launcher" yaml:"launcher"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// BackendConfig holds search-backend connection settings.
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	HealthTimeout  time.Duration `mapstructure:"health_timeout" yaml:"health_timeout"`
	SearchTimeout  time.Duration `mapstructure:"search_timeout" yaml:"search_timeout"`
	SyncTimeout    time.Duration `mapstructure:"sync_timeout" yaml:"sync_timeout"`
	HealthInterval time.Duration `mapstructure:"health_interval" yaml:"health_interval"`
	PendingTTL     time.Duration `mapstructure:"pending_ttl" yaml:"pending_ttl"`
}

// TriggerConfig holds trigger detection and debounce settings.
type TriggerConfig struct {
	Token           string        `mapstructure:"token" yaml:"token"`
	TriggerDebounce time.Duration `mapstructure:"trigger_debounce" yaml:"trigger_debounce"`
	PrewarmDebounce time.Duration `mapstructure:"prewarm_debounce" yaml:"prewarm_debounce"`
	SearchLimit     int           `mapstructure:"search_limit" yaml:"search_limit"`
}

// OverlayConfig holds result overlay presentation settings.
type OverlayConfig struct {
	MaxResults int `mapstructure:"max_results" yaml:"max_results"`
	MinWidth   int `mapstructure:"min_width" yaml:"min_width"`
}

// LauncherConfig holds quick-launch and navigation interception settings.
type LauncherConfig struct {
	InterceptNavigation bool          `mapstructure:"intercept_navigation" yaml:"intercept_navigation"`
	InterceptTimeout    time.Duration `mapstructure:"intercept_timeout" yaml:"intercept_timeout"`
	QuickLaunchLimit    int           `mapstructure:"quick_launch_limit" yaml:"quick_launch_limit"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	// Configure Viper - supports yaml, json, toml automatically
	v.SetConfigName("config")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory for development

	// Set up environment variable support
	v.SetEnvPrefix("OSLASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	bindings := map[string]string{
		"backend.base_url":              "BACKEND_BASE_URL",
		"backend.health_timeout":        "BACKEND_HEALTH_TIMEOUT",
		"backend.search_timeout":        "BACKEND_SEARCH_TIMEOUT",
		"backend.sync_timeout":          "BACKEND_SYNC_TIMEOUT",
		"backend.health_interval":       "BACKEND_HEALTH_INTERVAL",
		"trigger.token":                 "TRIGGER_TOKEN",
		"trigger.trigger_debounce":      "TRIGGER_DEBOUNCE",
		"trigger.prewarm_debounce":      "PREWARM_DEBOUNCE",
		"trigger.search_limit":          "SEARCH_LIMIT",
		"overlay.max_results":           "OVERLAY_MAX_RESULTS",
		"launcher.intercept_navigation": "LAUNCHER_INTERCEPT_NAVIGATION",
		"logging.level":                 "LOG_LEVEL",
		"logging.format":                "LOG_FORMAT",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, "OSLASH_"+env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	// Read config file if it exists
	if err := m.viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create default one
			if err := m.createDefaultConfig(); err != nil {
				return fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := m.unmarshal()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

// unmarshal decodes and validates the current Viper state.
func (m *Manager) unmarshal() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// Watch starts watching the config file for changes and reloads automatically.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil // Already watching
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		if err := m.reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to reload config: %v\n", err)
			return
		}

		m.mu.RLock()
		config := m.config
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		for _, callback := range callbacks {
			callback(config)
		}
	})

	m.watching = true
	return nil
}

// OnConfigChange registers a callback function to be called when config changes.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
}

// reload reloads the configuration.
func (m *Manager) reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.viper.ReadInConfig(); err != nil {
		return err
	}

	config, err := m.unmarshal()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("backend.base_url", defaults.Backend.BaseURL)
	m.viper.SetDefault("backend.health_timeout", defaults.Backend.HealthTimeout)
	m.viper.SetDefault("backend.search_timeout", defaults.Backend.SearchTimeout)
	m.viper.SetDefault("backend.sync_timeout", defaults.Backend.SyncTimeout)
	m.viper.SetDefault("backend.health_interval", defaults.Backend.HealthInterval)
	m.viper.SetDefault("backend.pending_ttl", defaults.Backend.PendingTTL)

	m.viper.SetDefault("trigger.token", defaults.Trigger.Token)
	m.viper.SetDefault("trigger.trigger_debounce", defaults.Trigger.TriggerDebounce)
	m.viper.SetDefault("trigger.prewarm_debounce", defaults.Trigger.PrewarmDebounce)
	m.viper.SetDefault("trigger.search_limit", defaults.Trigger.SearchLimit)

	m.viper.SetDefault("overlay.max_results", defaults.Overlay.MaxResults)
	m.viper.SetDefault("overlay.min_width", defaults.Overlay.MinWidth)

	m.viper.SetDefault("launcher.intercept_navigation", defaults.Launcher.InterceptNavigation)
	m.viper.SetDefault("launcher.intercept_timeout", defaults.Launcher.InterceptTimeout)
	m.viper.SetDefault("launcher.quick_launch_limit", defaults.Launcher.QuickLaunchLimit)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
}

// createDefaultConfig creates a default configuration file.
func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}

	defaultConfig := DefaultConfig()

	configData, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(configFile, configData, filePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := GenerateSchemaFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to generate config schema: %v\n", err)
	}

	fmt.Printf("Created default configuration file: %s\n", configFile)
	return nil
}

// GetConfigFileUsed returns the path to the configuration file being used.
func (m *Manager) GetConfigFileUsed() string {
	return m.viper.ConfigFileUsed()
}

// Global configuration manager instance
var globalManager *Manager
var globalManagerOnce sync.Once

// Init initializes the global configuration manager.
func Init() error {
	var err error
	globalManagerOnce.Do(func() {
		globalManager, err = NewManager()
		if err != nil {
			return
		}
		err = globalManager.Load()
	})
	return err
}

// Get returns the global configuration.
func Get() *Config {
	if globalManager == nil {
		// Return defaults if not initialized
		return DefaultConfig()
	}
	return globalManager.Get()
}

// Watch starts watching the global configuration for changes.
func Watch() error {
	if globalManager == nil {
		return fmt.Errorf("configuration not initialized")
	}
	return globalManager.Watch()
}

// OnConfigChange registers a callback for global configuration changes.
func OnConfigChange(callback func(*Config)) {
	if globalManager == nil {
		return
	}
	globalManager.OnConfigChange(callback)
}
