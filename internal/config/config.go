// Package config loads the drmcheck configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/internal/logging"
)

const (
	configFile = "config.toml"

	// AllowSoftwareEnv overrides AllowSoftware when set to 0 or 1.
	AllowSoftwareEnv = "EGL_RENDERER_ALLOW_SOFTWARE"
)

type Config struct {
	Card int

	// Node is the device node probed, card or render.
	Node string

	LogLevel string
	Color    bool

	// AllowSoftware accepts EGL devices backed by a software renderer.
	AllowSoftware bool

	// Snapshot, when set, replaces the device with a recorded driver report.
	Snapshot string

	FrameWidth  int
	FrameHeight int
}

func Default() *Config {
	return &Config{
		Card:        0,
		Node:        "card",
		LogLevel:    "info",
		Color:       true,
		FrameWidth:  640,
		FrameHeight: 480,
	}
}

// Dir is $XDG_CONFIG_HOME/drmcheck, falling back to ~/.config/drmcheck.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, "drmcheck")
}

func Path() string {
	return filepath.Join(Dir(), configFile)
}

// Load reads path over the defaults. An empty path means the default
// location, where a missing file is not an error.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conf := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	md, err := toml.DecodeFile(path, conf)
	switch {
	case err == nil:
		logger.Debug("Loaded config", "path", path)
	case !explicit && errors.Is(err, fs.ErrNotExist):
		logger.Debug("No config file, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("Unknown config key", "path", path, "key", key.String())
	}

	conf.applyEnv(logger)
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return conf, nil
}

func (c *Config) applyEnv(logger *slog.Logger) {
	if v, ok := envParseBool(logger, AllowSoftwareEnv); ok {
		c.AllowSoftware = v
	}
}

// envParseBool reads a 0/1 option from the environment. ok is false when
// the variable is unset; any other value is logged and reads as false.
func envParseBool(logger *slog.Logger, name string) (v, ok bool) {
	env, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	logger.Info("Loading option from environment", "name", name, "value", env)
	switch env {
	case "0":
		return false, true
	case "1":
		return true, true
	}
	logger.Error("Unknown option value", "name", name, "value", env)
	return false, true
}

func (c *Config) Validate() error {
	var errs []error
	if c.Card < 0 {
		errs = append(errs, fmt.Errorf("card %d: must not be negative", c.Card))
	}
	if n, err := drm.ParseNode(c.Node); err != nil {
		errs = append(errs, err)
	} else if n == drm.NodeControl {
		errs = append(errs, fmt.Errorf("node %q: only card and render nodes can be probed", c.Node))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.FrameWidth <= 0 || c.FrameWidth > 0xffff || c.FrameHeight <= 0 || c.FrameHeight > 0xffff {
		errs = append(errs, fmt.Errorf("frame size %dx%d out of range", c.FrameWidth, c.FrameHeight))
	}
	return errors.Join(errs...)
}

// DeviceNode returns the node to open, already validated.
func (c *Config) DeviceNode() drm.Node {
	n, _ := drm.ParseNode(c.Node)
	return n
}

func (c *Config) Level() slog.Level {
	l, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes the configuration, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	var b strings.Builder
	if err := c.Encode(&b); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
