package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"netsketch/internal/domain"
	"netsketch/internal/service"
)

func newInspectCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a topology file",
		Long: `Load a topology file (json or yaml) and print its devices and links.

  netsketch inspect lab.json
  netsketch inspect lab.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewEditorService(nil)
			if err := svc.LoadFile(args[0]); err != nil {
				return err
			}

			view := svc.Topology()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return printSummary(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	return cmd
}

func printSummary(out io.Writer, view service.TopologyView) error {
	byType := make(map[domain.DeviceType]int)
	names := make(map[string]string, len(view.Devices))
	for _, d := range view.Devices {
		byType[d.Type]++
		names[d.ID] = d.Name
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)

	fmt.Fprintf(out, "Devices: %d\n", view.DeviceCount)
	for _, t := range types {
		fmt.Fprintf(out, "  %-12s %d\n", t, byType[domain.DeviceType(t)])
	}
	fmt.Fprintf(out, "Links: %d\n\n", view.LinkCount)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tPORTS\tFREE\tGROUP")
	for _, d := range view.Devices {
		free := 0
		for _, p := range d.Ports {
			if !p.Connected {
				free++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", d.Name, d.Type, len(d.Ports), free, d.Group)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(view.Links) > 0 {
		fmt.Fprintln(out)
		for _, l := range view.Links {
			fmt.Fprintf(out, "  %s:%d <-> %s:%d\n", nameOr(names, l.Device1), l.Port1, nameOr(names, l.Device2), l.Port2)
		}
	}
	return nil
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}
