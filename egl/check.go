package egl

import (
	"errors"
	"fmt"
)

var (
	ErrMissingExtension = errors.New("required EGL extension not supported")
	ErrSoftwareRenderer = errors.New("software rendering detected")
	ErrNoPlatform       = errors.New("no usable EGL platform")
)

// Strings are the raw extension strings of one device, as reported by
// eglQueryString(EGL_NO_DISPLAY), eglQueryString(display) and
// eglQueryDeviceStringEXT(device).
type Strings struct {
	Client  string `yaml:"client,omitempty"`
	Display string `yaml:"display,omitempty"`
	Device  string `yaml:"device,omitempty"`
	Vendor  string `yaml:"vendor,omitempty"`
	Driver  string `yaml:"driver,omitempty"`

	// Messages were emitted through EGL_KHR_debug while the strings were
	// queried.
	Messages []DebugMessage `yaml:"messages,omitempty"`
}

// Client describes the client extensions relevant for platform selection.
type Client struct {
	PlatformBase      bool
	PlatformGBM       bool
	PlatformDevice    bool
	DeviceEnumeration bool
	DeviceQuery       bool
	Debug             bool
}

func missing(names ...string) error {
	if len(names) == 1 {
		return fmt.Errorf("%w: %s", ErrMissingExtension, names[0])
	}
	return fmt.Errorf("%w: one of %v", ErrMissingExtension, names)
}

// CheckClient requires EGL_EXT_platform_base. The flags are filled in even
// when it returns an error.
func CheckClient(exts Extensions) (Client, error) {
	c := Client{
		PlatformBase:      exts.Has("EGL_EXT_platform_base"),
		PlatformGBM:       exts.Has("EGL_KHR_platform_gbm"),
		PlatformDevice:    exts.Has("EGL_EXT_platform_device"),
		DeviceEnumeration: exts.Any("EGL_EXT_device_base", "EGL_EXT_device_enumeration"),
		DeviceQuery:       exts.Any("EGL_EXT_device_base", "EGL_EXT_device_query"),
		Debug:             exts.Has("EGL_KHR_debug"),
	}
	if !c.PlatformBase {
		return c, missing("EGL_EXT_platform_base")
	}
	return c, nil
}

// Display describes the display extensions relevant for buffer import.
type Display struct {
	ImageBase             bool
	DmaBufImport          bool
	DmaBufImportModifiers bool
	ContextPriority       bool
	ConfiglessContext     bool
	SurfacelessContext    bool
}

// CheckDisplay requires a configless and a surfaceless context. All missing
// requirements are reported together.
func CheckDisplay(exts Extensions) (Display, error) {
	d := Display{
		ImageBase:             exts.Has("EGL_KHR_image_base"),
		DmaBufImport:          exts.Has("EGL_EXT_image_dma_buf_import"),
		DmaBufImportModifiers: exts.Has("EGL_EXT_image_dma_buf_import_modifiers"),
		ContextPriority:       exts.Has("EGL_IMG_context_priority"),
		ConfiglessContext:     exts.Any("EGL_KHR_no_config_context", "EGL_MESA_configless_context"),
		SurfacelessContext:    exts.Has("EGL_KHR_surfaceless_context"),
	}

	var errs []error
	if !d.ConfiglessContext {
		errs = append(errs, missing("EGL_KHR_no_config_context", "EGL_MESA_configless_context"))
	}
	if !d.SurfacelessContext {
		errs = append(errs, missing("EGL_KHR_surfaceless_context"))
	}
	return d, errors.Join(errs...)
}

// Device describes the device extensions of the display's EGLDevice.
type Device struct {
	DRM           bool
	DRMRenderNode bool
	PersistentID  bool
	Software      bool
}

// CheckDevice rejects software renderers unless allowSoftware is set.
func CheckDevice(exts Extensions, allowSoftware bool) (Device, error) {
	d := Device{
		DRM:           exts.Has("EGL_EXT_device_drm"),
		DRMRenderNode: exts.Has("EGL_EXT_device_drm_render_node"),
		PersistentID:  exts.Has("EGL_EXT_device_persistent_id"),
		Software:      exts.Has("EGL_MESA_device_software"),
	}
	if d.Software && !allowSoftware {
		return d, ErrSoftwareRenderer
	}
	return d, nil
}

// Platform is the EGL platform a display is created on.
type Platform int

const (
	PlatformDevice Platform = 0x313F // EGL_PLATFORM_DEVICE_EXT
	PlatformGBM    Platform = 0x31D7 // EGL_PLATFORM_GBM_KHR
)

func (p Platform) String() string {
	switch p {
	case PlatformDevice:
		return "EGL_PLATFORM_DEVICE_EXT"
	case PlatformGBM:
		return "EGL_PLATFORM_GBM_KHR"
	}
	return fmt.Sprintf("Platform(0x%x)", int(p))
}

// ChoosePlatform prefers the device platform, which needs device
// enumeration and query to find the EGLDevice of a DRM node, and falls
// back to GBM.
func ChoosePlatform(c Client) (Platform, error) {
	switch {
	case c.PlatformDevice && c.DeviceEnumeration && c.DeviceQuery:
		return PlatformDevice, nil
	case c.PlatformGBM:
		return PlatformGBM, nil
	}
	return 0, ErrNoPlatform
}

// Report is the outcome of checking all extension strings of a device.
type Report struct {
	Client   Client
	Display  Display
	Device   *Device
	Platform Platform

	// Errors holds every failed requirement; the device is usable when it
	// is empty.
	Errors []error
}

func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Check runs every check against s. The device string is optional, since
// it is only available with EGL_EXT_device_query.
func Check(s Strings, allowSoftware bool) *Report {
	r := &Report{}
	var err error

	if r.Client, err = CheckClient(ParseExtensions(s.Client)); err != nil {
		r.Errors = append(r.Errors, fmt.Errorf("client: %w", err))
	}
	if r.Platform, err = ChoosePlatform(r.Client); err != nil {
		r.Errors = append(r.Errors, err)
	}
	if r.Display, err = CheckDisplay(ParseExtensions(s.Display)); err != nil {
		r.Errors = append(r.Errors, fmt.Errorf("display: %w", err))
	}
	if s.Device != "" {
		dev, err := CheckDevice(ParseExtensions(s.Device), allowSoftware)
		if err != nil {
			r.Errors = append(r.Errors, fmt.Errorf("device: %w", err))
		}
		r.Device = &dev
	}
	return r
}
