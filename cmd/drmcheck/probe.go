package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NeowayLabs/drmcheck/dmabuf"
)

func newProbeCmd(a *app) *cobra.Command {
	var (
		dev      deviceFlags
		snapshot string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "List the formats and modifiers a device can import and render to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "yaml" {
				return fmt.Errorf("unknown output format %q", output)
			}
			if snapshot == "" && !cmd.Flags().Changed("card") && !cmd.Flags().Changed("node") {
				snapshot = a.conf.Snapshot
			}

			var q dmabuf.Querier
			if snapshot != "" {
				s, err := a.loadSnapshot(snapshot)
				if err != nil {
					return err
				}
				q = dmabuf.NewSnapshotQuerier(s, a.logger)
			} else {
				file, _, err := a.open(cmd, &dev)
				if err != nil {
					return err
				}
				defer file.Close()
				q = dmabuf.NewKMSQuerier(file, a.logger)
			}

			report := dmabuf.Probe(q, a.logger).Report()
			if output == "yaml" {
				return report.WriteYAML(cmd.OutOrStdout())
			}
			return report.WriteText(cmd.OutOrStdout())
		},
	}
	dev.register(cmd)
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "replay a recorded snapshot instead of opening a device")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or yaml")
	cmd.MarkFlagsMutuallyExclusive("snapshot", "card")
	cmd.MarkFlagsMutuallyExclusive("snapshot", "node")
	return cmd
}
