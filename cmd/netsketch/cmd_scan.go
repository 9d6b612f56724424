package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"netsketch/internal/config"
	"netsketch/internal/logging"
	"netsketch/internal/scanner"
	"netsketch/internal/service"
)

func newImportNmapCmd() *cobra.Command {
	var into, output string

	cmd := &cobra.Command{
		Use:   "import-nmap <report.xml>",
		Short: "Append hosts from an nmap XML report to a topology file",
		Long: `Read an nmap report (nmap -oX) and add one device per host that is up.
Device types are guessed from open ports.

  nmap -sV -oX scan.xml 192.168.1.0/24
  netsketch import-nmap scan.xml --into lab.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, err := openTopology(into)
			if err != nil {
				return err
			}
			result, err := svc.Import(service.FormatNmap, f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %d devices\n", result.Devices)
			return writeTopology(svc, outputPath(output, into))
		},
	}

	cmd.Flags().StringVar(&into, "into", "", "existing topology file to append to")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: --into, or topology.json)")
	return cmd
}

func newScanCmd() *cobra.Command {
	var (
		into, output, ports string
		timeout             time.Duration
		fast, noPing        bool
	)

	cmd := &cobra.Command{
		Use:   "scan <target>...",
		Short: "Scan hosts with nmap and write them as devices",
		Long: `Run nmap against hosts or CIDR ranges and add one device per live host.
Requires the nmap binary on PATH.

  netsketch scan 192.168.1.0/24 -o lab.json
  netsketch scan 10.0.0.1 10.0.0.2 --into lab.json --fast`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			opts := []scanner.Option{scanner.WithTimeout(cfg.Scan.Timeout.Duration())}
			if cfg.Scan.Ports != "" {
				opts = append(opts, scanner.WithPortRange(cfg.Scan.Ports))
			}
			if fast {
				opts = append(opts, scanner.WithFastScan())
			}
			if cmd.Flags().Changed("timeout") {
				opts = append(opts, scanner.WithTimeout(timeout))
			}
			if ports != "" {
				opts = append(opts, scanner.WithPortRange(ports))
			}
			if noPing {
				opts = append(opts, scanner.WithSkipHostDiscovery(true))
			}

			doc, err := scanner.NewNmapScanner(args, opts...).Scan(cmd.Context())
			if err != nil {
				return err
			}

			svc, err := openTopology(into)
			if err != nil {
				return err
			}
			result := svc.AppendDocument(doc)

			fmt.Fprintf(cmd.OutOrStdout(), "added %d devices\n", result.Devices)
			return writeTopology(svc, outputPath(output, into))
		},
	}

	cmd.Flags().StringVar(&into, "into", "", "existing topology file to append to")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: --into, or topology.json)")
	cmd.Flags().StringVarP(&ports, "ports", "p", "", "ports to probe, e.g. 22,80,8000-8100")
	cmd.Flags().DurationVar(&timeout, "timeout", config.DefaultScanTimeout, "overall scan timeout")
	cmd.Flags().BoolVar(&fast, "fast", false, "skip service detection")
	cmd.Flags().BoolVar(&noPing, "no-ping", false, "treat all hosts as up (nmap -Pn)")
	return cmd
}

// openTopology starts a session from path, or an empty one when path is ""
func openTopology(path string) (*service.EditorService, error) {
	svc := service.NewEditorService(nil)
	if path == "" {
		return svc, nil
	}
	if err := svc.LoadFile(path); err != nil {
		return nil, err
	}
	return svc, nil
}

func writeTopology(svc *service.EditorService, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := svc.Export(service.FormatFromPath(path), f); err != nil {
		return err
	}

	view := svc.Topology()
	logging.WithOperation("write").WithField("path", path).
		Infof("%d devices, %d links", view.DeviceCount, view.LinkCount)
	return f.Close()
}

func outputPath(output, into string) string {
	switch {
	case output != "":
		return output
	case into != "":
		return into
	}
	return "topology.json"
}
