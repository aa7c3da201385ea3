package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NeowayLabs/drmcheck"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the drmcheck version and the driver of the first card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "drmcheck %s\n", version)
			v, err := drm.Available()
			if err != nil {
				fmt.Fprintf(out, "no DRM device: %s\n", err)
				return nil
			}
			fmt.Fprintf(out, "%s %d.%d.%d (%s) %s\n", v.Name, v.Major, v.Minor, v.Patch, v.Date, v.Desc)
			return nil
		},
	}
}
