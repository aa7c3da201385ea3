package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/NeowayLabs/drmcheck/mode"
)

func newOutputsCmd(a *app) *cobra.Command {
	var dev deviceFlags
	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "List connected outputs, their preferred mode and a free CRTC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _, err := a.open(cmd, &dev)
			if err != nil {
				return err
			}
			defer file.Close()

			outputs, err := mode.Outputs(file)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OUTPUT\tCONNECTOR\tCRTC\tACTIVE\tMODE\tREFRESH")
			for _, o := range outputs {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%d\n",
					o.Name, o.Connector, o.Crtc, yesNo(o.Active), o.Mode.ModeName(), o.Mode.Vrefresh)
			}
			return tw.Flush()
		},
	}
	dev.register(cmd)
	return cmd
}
