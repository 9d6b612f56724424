package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "NETSKETCH_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "netsketch.yaml"
	// ConfigDirName is the directory under XDG, ~/.config and /etc
	ConfigDirName = "netsketch"
)

// SearchPaths lists config file candidates, highest priority first:
// $NETSKETCH_CONFIG, ./netsketch.yaml, $XDG_CONFIG_HOME/netsketch/config.yaml,
// ~/.config/netsketch/config.yaml, /etc/netsketch/config.yaml.
// Unset environment variables contribute nothing.
func SearchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, dirConfig(xdg))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, dirConfig(filepath.Join(home, ".config")))
	}
	return append(paths, dirConfig("/etc"))
}

// FindConfigPath returns the first existing SearchPaths entry, or ""
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// EnsureConfigDir creates the parent directory of a config path
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func dirConfig(base string) string {
	return filepath.Join(base, ConfigDirName, "config.yaml")
}
