package dmabuf

import (
	"log/slog"
	"slices"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/formats"
)

// fallbackFormats are assumed importable when the driver can import
// DMA-BUFs but cannot list formats. Every driver handles these two.
var fallbackFormats = []drm.Format{
	drm.FormatARGB8888,
	drm.FormatXRGB8888,
}

// Capabilities are the result of one capability pass over a device. They
// are complete when Probe returns and must not be modified afterwards.
type Capabilities struct {
	// Texture holds the pairs that can be imported and sampled.
	Texture formats.Set

	// Render holds the pairs that can back a render target. It is built
	// alongside Texture and never holds a pair Texture lacks.
	Render formats.Set

	// HasModifiers is set when the driver reported at least one explicit
	// modifier for some format.
	HasModifiers bool

	// Formats is the format list the pass worked from, in driver order.
	Formats []drm.Format
}

// Probe runs one capability pass. It never fails: a device without
// DMA-BUF import, or whose format list cannot be read, yields empty sets.
// A format whose modifiers cannot be read is left out.
func Probe(q Querier, logger *slog.Logger) *Capabilities {
	if logger == nil {
		logger = slog.Default()
	}
	caps := &Capabilities{}

	imp, withModifiers := q.Capability()
	if !imp {
		logger.Debug("DMA-BUF import extension not present")
		return caps
	}

	list := fallbackFormats
	if withModifiers {
		var err error
		list, err = q.Formats()
		if err != nil {
			logger.Error("Failed to query DMA-BUF formats", "error", err)
			return caps
		}
	} else {
		logger.Debug("DMA-BUF modifiers extension not present, assuming fallback formats",
			"formats", drm.JoinFormats(list))
	}
	logger.Debug("Driver DMA-BUF formats", "count", len(list))

	for _, f := range list {
		var modifiers []Modifier
		if withModifiers {
			var err error
			modifiers, err = q.Modifiers(f)
			if err != nil {
				logger.Error("Failed to query DMA-BUF modifiers", "format", f, "error", err)
				continue
			}
		}
		caps.HasModifiers = caps.HasModifiers || len(modifiers) > 0

		// the implicit modifier import path always works
		caps.add(logger, f, drm.ModifierImplicit, true)

		// assume the linear layout is supported if the driver doesn't
		// explicitly say otherwise
		if len(modifiers) == 0 {
			caps.add(logger, f, drm.ModifierLinear, true)
		}

		for _, m := range modifiers {
			caps.add(logger, f, m.Value, !m.ExternalOnly)
		}
	}
	caps.Formats = slices.Clone(list)

	logger.Info("Supported DMA-BUF formats: " + drm.JoinFormats(list))
	if caps.HasModifiers {
		logger.Info("EGL DMA-BUF format modifiers supported")
	} else {
		logger.Info("EGL DMA-BUF format modifiers unsupported")
	}
	return caps
}

// add records the pair in Texture and, when render is set, in Render. A
// rejected pair is logged and otherwise ignored.
func (c *Capabilities) add(logger *slog.Logger, f drm.Format, m drm.Modifier, render bool) {
	if err := c.Texture.Add(f, m); err != nil {
		logger.Error("Failed to add texture format", "error", err)
		return
	}
	if !render {
		return
	}
	if err := c.Render.Add(f, m); err != nil {
		logger.Error("Failed to add render format", "error", err)
	}
}

// CanImport reports whether a buffer of this format and modifier can be
// imported as a texture.
func (c *Capabilities) CanImport(f drm.Format, m drm.Modifier) bool {
	return c.Texture.Has(f, m)
}

// CanRender reports whether a buffer of this format and modifier can be
// used as a render target.
func (c *Capabilities) CanRender(f drm.Format, m drm.Modifier) bool {
	return c.Render.Has(f, m)
}
