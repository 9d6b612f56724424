package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netsketch/internal/logging"
	"netsketch/internal/service"
)

func newConvertCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a topology between formats",
		Long: `Convert a topology document. Formats are taken from the file
extensions unless --from/--to are given.

Input formats:  json, yaml, ansible, nmap
Output formats: json, yaml, ansible

  netsketch convert lab.json lab.yaml
  netsketch convert lab.json inventory.yml --to ansible
  netsketch convert scan.xml lab.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			if from == "" {
				from = service.FormatFromPath(in)
			}
			if to == "" {
				to = service.FormatFromPath(out)
			}
			return convert(in, from, out, to)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format")
	cmd.Flags().StringVar(&to, "to", "", "output format")
	return cmd
}

func convert(in, from, out, to string) error {
	importer, err := service.ImporterFor(from)
	if err != nil {
		return err
	}
	exporter, err := service.ExporterFor(to)
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := importer.Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	var buf bytes.Buffer
	if err := exporter.Export(doc, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return err
	}

	logging.WithOperation("convert").Infof("wrote %d devices, %d links to %s (%s)", len(doc.Devices), len(doc.Links), out, to)
	return nil
}
