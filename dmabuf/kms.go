package dmabuf

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/formats"
	"github.com/NeowayLabs/drmcheck/mode"
)

// KMSQuerier answers capability queries from the kernel alone: PRIME caps
// gate import, ADDFB2_MODIFIERS gates explicit modifiers, and the planes'
// format lists and IN_FORMATS blobs supply formats and modifiers.
//
// Scanout modifiers are never external-only.
type KMSQuerier struct {
	file   *os.File
	logger *slog.Logger

	imp, modifiers bool

	loaded    bool
	formats   []drm.Format
	described map[drm.Format]*formats.Entry
	failed    map[drm.Format]error
}

// NewKMSQuerier reads the device capabilities and enables universal planes
// so primary and cursor planes are included. Planes are read on the first
// call to Formats.
func NewKMSQuerier(file *os.File, logger *slog.Logger) *KMSQuerier {
	if logger == nil {
		logger = slog.Default()
	}
	q := &KMSQuerier{file: file, logger: logger}

	imp, _, err := drm.PrimeCaps(file)
	if err != nil {
		logger.Debug("Failed to query PRIME capability", "error", err)
	}
	q.imp = imp
	q.modifiers = drm.HasAddFB2Modifiers(file)

	if err := drm.SetClientCap(file, drm.ClientCapUniversalPlanes, 1); err != nil {
		logger.Debug("Universal planes not supported, only overlay planes are visible", "error", err)
	}
	return q
}

func (q *KMSQuerier) Capability() (bool, bool) {
	return q.imp, q.modifiers
}

func (q *KMSQuerier) load() error {
	if q.loaded {
		return nil
	}
	planes, err := mode.PlaneFormats(q.file)
	if err != nil {
		return err
	}
	q.setPlanes(planes)
	return nil
}

func (q *KMSQuerier) setPlanes(planes []mode.PlaneInfo) {
	q.formats = nil
	q.described = make(map[drm.Format]*formats.Entry)
	q.failed = make(map[drm.Format]error)
	seen := make(map[drm.Format]bool)
	for _, p := range planes {
		for _, f := range p.Formats {
			if !seen[f] {
				seen[f] = true
				q.formats = append(q.formats, f)
			}
		}

		if p.InFormatsErr != nil {
			q.logger.Debug("Skipping plane modifiers", "plane", p.ID, "error", p.InFormatsErr)
			for _, f := range p.Formats {
				q.failed[f] = p.InFormatsErr
			}
			continue
		}
		for _, in := range p.InFormats {
			entry, ok := q.described[in.Format]
			if !ok {
				entry = formats.NewEntry(in.Format)
				q.described[in.Format] = entry
			}
			for _, m := range in.Modifiers {
				entry.Add(m)
			}
		}
	}
	q.loaded = true
}

func (q *KMSQuerier) Formats() ([]drm.Format, error) {
	if err := q.load(); err != nil {
		return nil, err
	}
	return append([]drm.Format(nil), q.formats...), nil
}

// Modifiers returns the union of the modifiers every plane accepts for
// format. A format only listed by planes whose IN_FORMATS could not be
// read is an error; a format no plane describes has no explicit modifiers.
func (q *KMSQuerier) Modifiers(format drm.Format) ([]Modifier, error) {
	if err := q.load(); err != nil {
		return nil, err
	}
	if entry, ok := q.described[format]; ok {
		mods := entry.Modifiers()
		result := make([]Modifier, len(mods))
		for i, m := range mods {
			result[i] = Modifier{Value: m}
		}
		return result, nil
	}
	if err, ok := q.failed[format]; ok {
		return nil, fmt.Errorf("modifiers of %s: %w", format, err)
	}
	for _, f := range q.formats {
		if f == format {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}
