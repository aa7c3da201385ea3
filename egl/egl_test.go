package egl

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mesaClient  = "EGL_EXT_device_base EGL_EXT_device_enumeration EGL_EXT_device_query EGL_EXT_platform_base EGL_KHR_client_get_all_proc_addresses EGL_EXT_client_extensions EGL_KHR_debug EGL_EXT_platform_device EGL_KHR_platform_gbm EGL_MESA_platform_gbm EGL_KHR_platform_wayland"
	mesaDisplay = "EGL_ANDROID_native_fence_sync EGL_EXT_image_dma_buf_import EGL_EXT_image_dma_buf_import_modifiers EGL_KHR_image_base EGL_KHR_no_config_context EGL_KHR_surfaceless_context EGL_MESA_configless_context EGL_IMG_context_priority"
	mesaDevice  = "EGL_EXT_device_drm EGL_EXT_device_drm_render_node"
)

func TestExtensionsHas(t *testing.T) {
	exts := ParseExtensions("  EGL_EXT_device_base   EGL_KHR_debug\nEGL_KHR_platform_gbm ")
	assert.Equal(t, 3, exts.Len())
	assert.True(t, exts.Has("EGL_KHR_debug"))
	assert.True(t, exts.Has("EGL_KHR_platform_gbm"))
	assert.False(t, exts.Has("EGL_EXT_device"))
	assert.False(t, exts.Has("EGL_KHR_debug_extra"))
	assert.False(t, exts.Has(""))
	assert.True(t, exts.Any("nope", "EGL_KHR_debug"))
	assert.Equal(t, "EGL_EXT_device_base EGL_KHR_debug EGL_KHR_platform_gbm", exts.String())
	assert.Equal(t, []string{"EGL_EXT_device_base", "EGL_KHR_debug", "EGL_KHR_platform_gbm"}, exts.Names())
}

func TestExtensionsEmpty(t *testing.T) {
	exts := ParseExtensions("")
	assert.Equal(t, 0, exts.Len())
	assert.False(t, exts.Has("EGL_KHR_debug"))

	var zero Extensions
	assert.False(t, zero.Has("EGL_KHR_debug"))
}

func TestCheckClient(t *testing.T) {
	c, err := CheckClient(ParseExtensions(mesaClient))
	require.NoError(t, err)
	assert.Equal(t, Client{
		PlatformBase:      true,
		PlatformGBM:       true,
		PlatformDevice:    true,
		DeviceEnumeration: true,
		DeviceQuery:       true,
		Debug:             true,
	}, c)

	c, err = CheckClient(ParseExtensions("EGL_KHR_platform_gbm"))
	assert.ErrorIs(t, err, ErrMissingExtension)
	assert.True(t, c.PlatformGBM)
}

func TestCheckDisplay(t *testing.T) {
	d, err := CheckDisplay(ParseExtensions(mesaDisplay))
	require.NoError(t, err)
	assert.True(t, d.DmaBufImport)
	assert.True(t, d.DmaBufImportModifiers)
	assert.True(t, d.ImageBase)
	assert.True(t, d.ContextPriority)

	d, err = CheckDisplay(ParseExtensions("EGL_MESA_configless_context EGL_EXT_image_dma_buf_import"))
	assert.ErrorIs(t, err, ErrMissingExtension)
	assert.Contains(t, err.Error(), "EGL_KHR_surfaceless_context")
	assert.True(t, d.ConfiglessContext)
	assert.False(t, d.DmaBufImportModifiers)

	_, err = CheckDisplay(ParseExtensions(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EGL_KHR_no_config_context")
	assert.Contains(t, err.Error(), "EGL_KHR_surfaceless_context")
}

func TestCheckDevice(t *testing.T) {
	d, err := CheckDevice(ParseExtensions(mesaDevice), false)
	require.NoError(t, err)
	assert.True(t, d.DRM)
	assert.True(t, d.DRMRenderNode)

	software := "EGL_MESA_device_software EGL_EXT_device_drm"
	_, err = CheckDevice(ParseExtensions(software), false)
	assert.ErrorIs(t, err, ErrSoftwareRenderer)

	d, err = CheckDevice(ParseExtensions(software), true)
	require.NoError(t, err)
	assert.True(t, d.Software)
}

func TestChoosePlatform(t *testing.T) {
	for _, tc := range []struct {
		client   Client
		expected Platform
		err      error
	}{
		{Client{PlatformDevice: true, DeviceEnumeration: true, DeviceQuery: true, PlatformGBM: true}, PlatformDevice, nil},
		{Client{PlatformDevice: true, PlatformGBM: true}, PlatformGBM, nil},
		{Client{PlatformGBM: true}, PlatformGBM, nil},
		{Client{PlatformDevice: true, DeviceQuery: true}, 0, ErrNoPlatform},
		{Client{}, 0, ErrNoPlatform},
	} {
		p, err := ChoosePlatform(tc.client)
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.expected, p, tc.expected.String())
	}
}

func TestCheck(t *testing.T) {
	r := Check(Strings{Client: mesaClient, Display: mesaDisplay, Device: mesaDevice}, false)
	assert.True(t, r.OK(), "%v", r.Errors)
	assert.Equal(t, PlatformDevice, r.Platform)
	require.NotNil(t, r.Device)
	assert.True(t, r.Device.DRM)

	r = Check(Strings{Client: "EGL_EXT_client_extensions"}, false)
	assert.False(t, r.OK())
	assert.Len(t, r.Errors, 3)
	assert.Nil(t, r.Device)
}

func TestPlatformString(t *testing.T) {
	assert.Equal(t, "EGL_PLATFORM_GBM_KHR", PlatformGBM.String())
	assert.Equal(t, "Platform(0x1)", Platform(1).String())
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "EGL_BAD_DISPLAY", ErrorString(BadDisplay))
	assert.Equal(t, "EGL_BAD_DEVICE_EXT", ErrorString(BadDeviceEXT))
	assert.Equal(t, "unknown error", ErrorString(0x1234))
}

func TestDebugLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, DebugLevel(DebugMsgCritical))
	assert.Equal(t, slog.LevelError, DebugLevel(DebugMsgError))
	assert.Equal(t, slog.LevelWarn, DebugLevel(DebugMsgWarn))
	assert.Equal(t, slog.LevelInfo, DebugLevel(DebugMsgInfo))
	assert.Equal(t, slog.LevelInfo, DebugLevel(0))
}

func TestLogDebugMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	LogDebugMessage(logger, BadMatch, "eglCreateImageKHR", DebugMsgError, "bad stride")

	line := buf.String()
	assert.True(t, strings.Contains(line, "level=ERROR"), line)
	assert.Contains(t, line, `msg="[EGL] bad stride"`)
	assert.Contains(t, line, "command=eglCreateImageKHR")
	assert.Contains(t, line, `error="EGL_BAD_MATCH (0x3009)"`)
}

func TestDebugMessageLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	DebugMessage{Error: BadParameter, Command: "eglQueryDmaBufModifiersEXT", Type: DebugMsgWarn, Message: "slow path"}.Log(logger)
	DebugMessage{Type: DebugMsgInfo, Message: "hidden"}.Log(logger)

	line := buf.String()
	assert.Contains(t, line, "level=WARN")
	assert.Contains(t, line, `error="EGL_BAD_PARAMETER (0x300c)"`)
	assert.NotContains(t, line, "hidden")
}
