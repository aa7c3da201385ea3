package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NeowayLabs/drmcheck/frame"
)

func newFrameCmd(a *app) *cobra.Command {
	var (
		dev           deviceFlags
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Write a test frame into a dumb buffer and read it back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") {
				width = a.conf.FrameWidth
			}
			if !cmd.Flags().Changed("height") {
				height = a.conf.FrameHeight
			}
			if width <= 0 || width > 0xffff || height <= 0 || height > 0xffff {
				return fmt.Errorf("frame size %dx%d out of range", width, height)
			}

			file, _, err := a.open(cmd, &dev)
			if err != nil {
				return err
			}
			defer file.Close()

			res, err := frame.Check(file, uint16(width), uint16(height))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%dx%d pitch %d size %d: %d mismatched pixels\n",
				res.Width, res.Height, res.Pitch, res.Size, res.Mismatches)
			if !res.OK() {
				return fmt.Errorf("frame read back with %d mismatched pixels", res.Mismatches)
			}
			return nil
		},
	}
	dev.register(cmd)
	cmd.Flags().IntVar(&width, "width", 0, "frame width (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "frame height (default from config)")
	return cmd
}
