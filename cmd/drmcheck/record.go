package main

import (
	"github.com/spf13/cobra"

	"github.com/NeowayLabs/drmcheck/dmabuf"
)

func newRecordCmd(a *app) *cobra.Command {
	var (
		dev deviceFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record the driver answers of a device as a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, v, err := a.open(cmd, &dev)
			if err != nil {
				return err
			}
			defer file.Close()

			s := dmabuf.Record(dmabuf.NewKMSQuerier(file, a.logger))
			s.Device = file.Name()
			s.Driver = v.Name

			if out == "-" {
				return s.Write(cmd.OutOrStdout())
			}
			if err := s.Save(out); err != nil {
				return err
			}
			a.logger.Info("Snapshot written", "path", out, "formats", len(s.Formats))
			return nil
		},
	}
	dev.register(cmd)
	cmd.Flags().StringVar(&out, "out", "-", "snapshot file, - for stdout")
	return cmd
}
