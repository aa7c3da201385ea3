package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/NeowayLabs/drmcheck/egl"
)

func newEGLCmd(a *app) *cobra.Command {
	var snapshot string
	cmd := &cobra.Command{
		Use:   "egl",
		Short: "Check the EGL extension strings stored in a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if snapshot == "" {
				snapshot = a.conf.Snapshot
			}
			if snapshot == "" {
				return errors.New("egl needs --snapshot or a Snapshot in the config")
			}
			s, err := a.loadSnapshot(snapshot)
			if err != nil {
				return err
			}

			if err := checkEGL(cmd.OutOrStdout(), a.logger, s.EGL, a.conf.AllowSoftware); err != nil {
				return fmt.Errorf("%s: %w", snapshot, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "snapshot file (default from config)")
	return cmd
}

// checkEGL replays the recorded debug messages, prints the extension report
// and logs every requirement that is not met.
func checkEGL(w io.Writer, logger *slog.Logger, s egl.Strings, allowSoftware bool) error {
	for _, m := range s.Messages {
		m.Log(logger)
	}

	r := egl.Check(s, allowSoftware)
	writeEGLReport(w, r)
	if r.OK() {
		return nil
	}
	for _, err := range r.Errors {
		logger.Error("EGL requirement not met", "error", err)
	}
	return fmt.Errorf("%d EGL requirements not met", len(r.Errors))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writeEGLReport(w io.Writer, r *egl.Report) {
	if r.Platform != 0 {
		fmt.Fprintf(w, "platform: %s\n", r.Platform)
	}
	fmt.Fprintf(w, "debug: %s\n", yesNo(r.Client.Debug))
	fmt.Fprintf(w, "image base: %s\n", yesNo(r.Display.ImageBase))
	fmt.Fprintf(w, "dma-buf import: %s\n", yesNo(r.Display.DmaBufImport))
	fmt.Fprintf(w, "dma-buf import modifiers: %s\n", yesNo(r.Display.DmaBufImportModifiers))
	fmt.Fprintf(w, "context priority: %s\n", yesNo(r.Display.ContextPriority))
	if d := r.Device; d != nil {
		fmt.Fprintf(w, "device drm: %s\n", yesNo(d.DRM))
		fmt.Fprintf(w, "device render node: %s\n", yesNo(d.DRMRenderNode))
		fmt.Fprintf(w, "software renderer: %s\n", yesNo(d.Software))
	}
}
