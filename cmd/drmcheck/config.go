package main

import (
	"github.com/spf13/cobra"

	"github.com/NeowayLabs/drmcheck/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !save {
				return a.conf.Encode(cmd.OutOrStdout())
			}
			path := a.configPath
			if path == "" {
				path = config.Path()
			}
			if err := a.conf.Save(path); err != nil {
				return err
			}
			a.logger.Info("Config written", "path", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the effective configuration to the config file")
	return cmd
}
