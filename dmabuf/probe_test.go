package dmabuf

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/formats"
)

type fakeQuerier struct {
	imp, modifiers bool
	formats        []drm.Format
	formatsErr     error
	mods           map[drm.Format][]Modifier
	modsErr        map[drm.Format]error

	formatsCalls   int
	modifiersCalls int
}

func (q *fakeQuerier) Capability() (bool, bool) {
	return q.imp, q.modifiers
}

func (q *fakeQuerier) Formats() ([]drm.Format, error) {
	q.formatsCalls++
	return q.formats, q.formatsErr
}

func (q *fakeQuerier) Modifiers(f drm.Format) ([]Modifier, error) {
	q.modifiersCalls++
	if err := q.modsErr[f]; err != nil {
		return nil, err
	}
	return q.mods[f], nil
}

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func entryModifiers(t *testing.T, set *formats.Set, f drm.Format) []drm.Modifier {
	t.Helper()
	e, ok := set.Lookup(f)
	require.True(t, ok, "format %s missing", f)
	return e.Modifiers()
}

func TestProbeScenario(t *testing.T) {
	a, b := drm.FormatARGB8888, drm.FormatXRGB8888
	m1, m2 := drm.ModifierIntelXTiled, drm.ModifierIntelYTiled
	q := &fakeQuerier{
		imp:       true,
		modifiers: true,
		formats:   []drm.Format{a, b},
		mods: map[drm.Format][]Modifier{
			a: {{Value: m1}, {Value: m2, ExternalOnly: true}},
		},
	}
	logger, _ := testLogger()
	caps := Probe(q, logger)

	assert.True(t, caps.HasModifiers)
	assert.Equal(t, []drm.Format{a, b}, caps.Texture.Formats())
	assert.Equal(t, []drm.Modifier{drm.ModifierImplicit, m1, m2}, entryModifiers(t, &caps.Texture, a))
	assert.Equal(t, []drm.Modifier{drm.ModifierImplicit, drm.ModifierLinear}, entryModifiers(t, &caps.Texture, b))
	assert.Equal(t, []drm.Format{a, b}, caps.Render.Formats())
	assert.Equal(t, []drm.Modifier{drm.ModifierImplicit, m1}, entryModifiers(t, &caps.Render, a))
	assert.Equal(t, []drm.Modifier{drm.ModifierImplicit, drm.ModifierLinear}, entryModifiers(t, &caps.Render, b))
	assert.Equal(t, []drm.Format{a, b}, caps.Formats)
}

func TestProbeNoFormats(t *testing.T) {
	q := &fakeQuerier{imp: true, modifiers: true}
	logger, _ := testLogger()
	caps := Probe(q, logger)

	assert.Equal(t, 0, caps.Texture.Len())
	assert.Equal(t, 0, caps.Render.Len())
	assert.False(t, caps.HasModifiers)
}

func TestProbeNoImport(t *testing.T) {
	q := &fakeQuerier{formats: []drm.Format{drm.FormatXRGB8888}}
	logger, buf := testLogger()
	caps := Probe(q, logger)

	assert.Equal(t, 0, caps.Texture.Len())
	assert.Equal(t, 0, caps.Render.Len())
	assert.False(t, caps.HasModifiers)
	assert.Zero(t, q.formatsCalls)
	assert.Contains(t, buf.String(), "DMA-BUF import extension not present")
}

func TestProbeFormatsQueryFails(t *testing.T) {
	q := &fakeQuerier{imp: true, modifiers: true, formatsErr: errors.New("EGL_BAD_DISPLAY")}
	logger, buf := testLogger()
	caps := Probe(q, logger)

	assert.Equal(t, 0, caps.Texture.Len())
	assert.Equal(t, 0, caps.Render.Len())
	assert.False(t, caps.HasModifiers)
	assert.Contains(t, buf.String(), "EGL_BAD_DISPLAY")
}

func TestProbeWithoutModifierExtension(t *testing.T) {
	q := &fakeQuerier{imp: true, formats: []drm.Format{drm.FormatNV12}}
	logger, _ := testLogger()
	caps := Probe(q, logger)

	assert.Zero(t, q.formatsCalls)
	assert.Zero(t, q.modifiersCalls)
	assert.False(t, caps.HasModifiers)
	assert.Equal(t, fallbackFormats, caps.Texture.Formats())
	assert.Equal(t, fallbackFormats, caps.Render.Formats())
	for _, f := range fallbackFormats {
		for _, set := range []*formats.Set{&caps.Texture, &caps.Render} {
			assert.Equal(t, []drm.Modifier{drm.ModifierImplicit, drm.ModifierLinear}, entryModifiers(t, set, f))
		}
	}
}

func TestProbeSkipsFailedFormat(t *testing.T) {
	q := &fakeQuerier{
		imp:       true,
		modifiers: true,
		formats:   []drm.Format{drm.FormatXRGB8888, drm.FormatNV12, drm.FormatP010},
		mods: map[drm.Format][]Modifier{
			drm.FormatP010: {{Value: drm.ModifierIntelYTiled}},
		},
		modsErr: map[drm.Format]error{
			drm.FormatNV12: errors.New("query failed"),
		},
	}
	logger, buf := testLogger()
	caps := Probe(q, logger)

	assert.Equal(t, 3, q.modifiersCalls)
	assert.Equal(t, []drm.Format{drm.FormatXRGB8888, drm.FormatP010}, caps.Texture.Formats())
	assert.Equal(t, []drm.Format{drm.FormatXRGB8888, drm.FormatP010}, caps.Render.Formats())
	_, ok := caps.Texture.Find(drm.FormatNV12)
	assert.False(t, ok)
	assert.True(t, caps.HasModifiers)
	assert.Contains(t, buf.String(), "format=NV12")
}

func TestProbeEmptyModifierFallback(t *testing.T) {
	q := &fakeQuerier{imp: true, modifiers: true, formats: []drm.Format{drm.FormatRGB565}}
	logger, _ := testLogger()
	caps := Probe(q, logger)

	assert.False(t, caps.HasModifiers)
	for _, set := range []*formats.Set{&caps.Texture, &caps.Render} {
		assert.True(t, set.Has(drm.FormatRGB565, drm.ModifierLinear))
		assert.True(t, set.Has(drm.FormatRGB565, drm.ModifierImplicit))
	}
}

func TestProbeExternalOnlyExcludedFromRender(t *testing.T) {
	m := drm.ModifierCode(drm.VendorQualcomm, 1)
	q := &fakeQuerier{
		imp:       true,
		modifiers: true,
		formats:   []drm.Format{drm.FormatNV12},
		mods: map[drm.Format][]Modifier{
			drm.FormatNV12: {{Value: m, ExternalOnly: true}},
		},
	}
	logger, _ := testLogger()
	caps := Probe(q, logger)

	assert.True(t, caps.CanImport(drm.FormatNV12, m))
	assert.False(t, caps.CanRender(drm.FormatNV12, m))
	assert.True(t, caps.CanRender(drm.FormatNV12, drm.ModifierImplicit))
	// the driver listed a modifier, so linear is not assumed
	assert.False(t, caps.CanImport(drm.FormatNV12, drm.ModifierLinear))
}

func TestProbeDuplicatesFromDriver(t *testing.T) {
	q := &fakeQuerier{
		imp:       true,
		modifiers: true,
		formats:   []drm.Format{drm.FormatXRGB8888, drm.FormatXRGB8888},
		mods: map[drm.Format][]Modifier{
			drm.FormatXRGB8888: {
				{Value: drm.ModifierLinear},
				{Value: drm.ModifierLinear},
				{Value: drm.ModifierImplicit},
			},
		},
	}
	logger, _ := testLogger()
	caps := Probe(q, logger)

	assert.Equal(t, 1, caps.Texture.Len())
	assert.Equal(t, []drm.Modifier{drm.ModifierImplicit, drm.ModifierLinear}, entryModifiers(t, &caps.Texture, drm.FormatXRGB8888))
}

func TestProbeInvalidFormatIsSkipped(t *testing.T) {
	q := &fakeQuerier{
		imp:       true,
		modifiers: true,
		formats:   []drm.Format{drm.FormatInvalid, drm.FormatXRGB8888},
	}
	logger, buf := testLogger()
	caps := Probe(q, logger)

	assert.Equal(t, []drm.Format{drm.FormatXRGB8888}, caps.Texture.Formats())
	assert.Contains(t, buf.String(), "Failed to add texture format")
}

func TestProbeRenderSubsetOfTexture(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	all := []drm.Format{
		drm.FormatXRGB8888, drm.FormatARGB8888, drm.FormatXBGR8888, drm.FormatABGR8888,
		drm.FormatRGB565, drm.FormatNV12, drm.FormatP010, drm.FormatYUYV,
	}
	for round := 0; round < 50; round++ {
		q := &fakeQuerier{imp: true, modifiers: true, mods: map[drm.Format][]Modifier{}}
		for _, f := range all {
			if rng.Intn(3) == 0 {
				continue
			}
			q.formats = append(q.formats, f)
			for i := rng.Intn(6); i > 0; i-- {
				q.mods[f] = append(q.mods[f], Modifier{
					Value:        drm.ModifierCode(uint8(rng.Intn(4)), uint64(rng.Intn(5))),
					ExternalOnly: rng.Intn(2) == 0,
				})
			}
		}

		logger, _ := testLogger()
		caps := Probe(q, logger)
		for _, e := range caps.Render.Entries() {
			for _, m := range e.Modifiers() {
				assert.True(t, caps.Texture.Has(e.Format(), m), "render pair %s/%s missing from texture", e.Format(), m)
			}
		}

		hasModifiers := false
		for _, f := range q.formats {
			hasModifiers = hasModifiers || len(q.mods[f]) > 0
		}
		assert.Equal(t, hasModifiers, caps.HasModifiers)
	}
}

func TestProbeNilLogger(t *testing.T) {
	caps := Probe(&fakeQuerier{}, nil)
	assert.NotNil(t, caps)
}
