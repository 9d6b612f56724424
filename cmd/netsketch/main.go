// netsketch is the network topology editor backend.
//
// netsketch hosts one editing session of a network diagram: devices, ports,
// links, undo/redo, a visual message simulation and a library of named
// snapshots. A browser UI drives it over HTTP and Server-Sent Events.
//
// Usage:
//
//	netsketch serve                       Start the editor API
//	netsketch inspect <file>              Summarize a topology file
//	netsketch convert <in> <out>          Convert between json, yaml and ansible
//	netsketch import-nmap <report.xml>    Append nmap hosts to a topology file
//	netsketch scan <target>...            Scan hosts with nmap into a topology file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netsketch/internal/config"
	"netsketch/internal/logging"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "netsketch",
	Short:             "Network topology editor backend",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `netsketch hosts a network topology editing session.

Devices, ports and links are edited over a JSON API with undo/redo.
Topologies are saved as version 2 JSON documents and can be converted
to YAML or Ansible inventories.

  netsketch serve --addr :3000`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if verbose {
			level = "debug"
		}
		if level != "" {
			if err := logging.SetLogLevel(level); err != nil {
				return err
			}
		}
		if logFormat != "" {
			logging.SetFormat(logFormat)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search NETSKETCH_CONFIG, ./netsketch.yaml, ~/.config/netsketch)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newServeCmd(),
		newInspectCmd(),
		newConvertCmd(),
		newImportNmapCmd(),
		newScanCmd(),
		newVersionCmd(),
	)
}

// loadConfig reads --config or the first config file found, then applies
// its log settings unless flags already set them
func loadConfig() (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if logLevel == "" && !verbose {
		if err := logging.SetLogLevel(cfg.Log.Level); err != nil {
			return nil, err
		}
	}
	if logFormat == "" {
		logging.SetFormat(cfg.Log.Format)
	}

	if path != "" {
		logging.WithField("path", path).Debug("loaded config")
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "netsketch %s\n", version)
		},
	}
}
