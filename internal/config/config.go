// Package config loads the netsketch configuration file.
//
// Config file locations (priority order):
//  1. $NETSKETCH_CONFIG
//  2. ./netsketch.yaml
//  3. $XDG_CONFIG_HOME/netsketch/config.yaml
//  4. ~/.config/netsketch/config.yaml
//  5. /etc/netsketch/config.yaml
//
// Missing files are not an error; defaults apply. Command-line flags
// override file values.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultAddr            = ":3000"
	DefaultDatabasePath    = "./netsketch.db"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultTick            = 100 * time.Millisecond
	DefaultDebounce        = 200 * time.Millisecond
	DefaultShutdownTimeout = 10 * time.Second
	DefaultScanTimeout     = 10 * time.Minute
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Simulation.Tick == 0 {
		c.Simulation.Tick = Duration(DefaultTick)
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(DefaultDebounce)
	}
	if c.Scan.Timeout == 0 {
		c.Scan.Timeout = Duration(DefaultScanTimeout)
	}
}

// Validate rejects values the server cannot run with
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Simulation.Tick.Duration() < 0 {
		problems = append(problems, "simulation.tick must be positive")
	}
	if c.Watch.Debounce.Duration() < 0 {
		problems = append(problems, "watch.debounce must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Log: %s/%s, Simulation tick: %s", c.Log.Level, c.Log.Format, c.Simulation.Tick.Duration())
	if c.Watch.Path != "" {
		summary += fmt.Sprintf("\nWatching: %s", c.Watch.Path)
	}
	return summary
}
