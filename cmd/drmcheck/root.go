package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/dmabuf"
	"github.com/NeowayLabs/drmcheck/internal/config"
	"github.com/NeowayLabs/drmcheck/internal/logging"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

type app struct {
	configPath string
	vv, v, q   bool
	noColor    bool

	conf   *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "drmcheck",
		Short:         "Probe DRM devices for DMA-BUF format and modifier support",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.Path()+")")
	flags.BoolVar(&a.vv, "vv", false, "debug output")
	flags.BoolVarP(&a.v, "verbose", "v", false, "informational output")
	flags.BoolVarP(&a.q, "quiet", "q", false, "no log output")
	flags.BoolVar(&a.noColor, "no-color", false, "never color log output")

	cmd.AddCommand(
		newProbeCmd(a),
		newRecordCmd(a),
		newEGLCmd(a),
		newFrameCmd(a),
		newOutputsCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) setup() error {
	level := logging.LevelFromFlags(a.vv, a.v, a.q)

	// logging is needed while the config loads; the level from the config
	// file only applies when no verbosity flag was given
	a.logger = logging.Setup(level, !a.noColor)
	conf, err := config.Load(a.configPath, a.logger)
	if err != nil {
		return err
	}
	a.conf = conf

	if !a.vv && !a.v && !a.q {
		level = conf.Level()
	}
	a.logger = logging.Setup(level, conf.Color && !a.noColor)
	return nil
}

// deviceFlags are the flags of commands that open a device.
type deviceFlags struct {
	card int
	node string
}

func (d *deviceFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&d.card, "card", 0, "card number (default from config)")
	cmd.Flags().StringVar(&d.node, "node", "", "device node: card or render (default from config)")
}

func (a *app) open(cmd *cobra.Command, d *deviceFlags) (*os.File, drm.Version, error) {
	card := a.conf.Card
	if cmd.Flags().Changed("card") {
		card = d.card
	}
	node := a.conf.DeviceNode()
	if cmd.Flags().Changed("node") {
		var err error
		if node, err = drm.ParseNode(d.node); err != nil {
			return nil, drm.Version{}, err
		}
	}

	path := node.Path(card)
	file, err := drm.Open(node, card)
	if err != nil {
		return nil, drm.Version{}, fmt.Errorf("open %s: %w", path, err)
	}
	v, err := drm.GetVersion(file)
	if err != nil {
		file.Close()
		return nil, drm.Version{}, fmt.Errorf("%s: get driver version: %w", path, err)
	}
	a.logger.Info("Opened DRM device", "path", path, "driver", v.Name,
		"version", fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch))
	return file, v, nil
}

func (a *app) loadSnapshot(path string) (*dmabuf.Snapshot, error) {
	s, err := dmabuf.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Loaded snapshot", "path", path, "device", s.Device, "driver", s.Driver)
	return s, nil
}
