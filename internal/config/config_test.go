package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeowayLabs/drmcheck"
)

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(AllowSoftwareEnv, "")
	os.Unsetenv(AllowSoftwareEnv)

	conf, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
	assert.Equal(t, drm.NodePrimary, conf.DeviceNode())
	assert.Equal(t, slog.LevelInfo, conf.Level())
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), nil)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	t.Setenv(AllowSoftwareEnv, "")
	os.Unsetenv(AllowSoftwareEnv)
	path := writeConfig(t, `
Card = 1
Node = "render"
LogLevel = "debug"
Snapshot = "/tmp/i915.yaml"
FrameWidth = 320
Colour = false
`)
	logger, buf := testLogger()
	conf, err := Load(path, logger)
	require.NoError(t, err)

	assert.Equal(t, 1, conf.Card)
	assert.Equal(t, drm.NodeRender, conf.DeviceNode())
	assert.Equal(t, slog.LevelDebug, conf.Level())
	assert.Equal(t, "/tmp/i915.yaml", conf.Snapshot)
	assert.Equal(t, 320, conf.FrameWidth)
	assert.Equal(t, 480, conf.FrameHeight)
	assert.True(t, conf.Color)
	assert.Contains(t, buf.String(), "key=Colour")
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, `
Node = "control"
LogLevel = "loud"
FrameHeight = 70000
`)
	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only card and render")
	assert.Contains(t, err.Error(), "loud")
	assert.Contains(t, err.Error(), "out of range")

	_, err = Load(writeConfig(t, "Card = ["), nil)
	assert.Error(t, err)
}

func TestAllowSoftwareEnv(t *testing.T) {
	path := writeConfig(t, "AllowSoftware = true\n")

	for env, want := range map[string]bool{"0": false, "1": true, "yes": false} {
		t.Setenv(AllowSoftwareEnv, env)
		logger, buf := testLogger()
		conf, err := Load(path, logger)
		require.NoError(t, err)
		assert.Equal(t, want, conf.AllowSoftware, env)
		if env == "yes" {
			assert.Contains(t, buf.String(), "Unknown option value")
		}
	}

	t.Setenv(AllowSoftwareEnv, "")
	os.Unsetenv(AllowSoftwareEnv)
	conf, err := Load(path, nil)
	require.NoError(t, err)
	assert.True(t, conf.AllowSoftware)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(AllowSoftwareEnv, "")
	os.Unsetenv(AllowSoftwareEnv)
	conf := Default()
	conf.Card = 2
	conf.Node = "render"
	conf.AllowSoftware = true

	path := filepath.Join(t.TempDir(), "drmcheck", "config.toml")
	require.NoError(t, conf.Save(path))
	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, conf, loaded)
}
