package drm_test

import (
	"testing"

	"github.com/NeowayLabs/drmcheck"
)

func TestHasDumbBuffer(t *testing.T) {
	requireCard(t)
	file, err := drm.OpenCard(0)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	version, err := drm.GetVersion(file)
	if err != nil {
		t.Error(err)
		return
	}
	if hasDumb := drm.HasDumbBuffer(file); hasDumb != (cardInfo.capabilities[drm.CapDumbBuffer] != 0) {
		t.Errorf("Card '%s' should support dumb buffers...Got %v but %d", version.Name, hasDumb, cardInfo.capabilities[drm.CapDumbBuffer])
		return
	}
}

func TestGetCap(t *testing.T) {
	requireCard(t)
	file, err := drm.OpenCard(0)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	for cap, capval := range cardInfo.capabilities {
		ccap, err := drm.GetCap(file, cap)
		if err != nil {
			t.Error(err)
			return
		}
		if ccap != capval {
			t.Errorf("Capability %d differs: %d != %d", cap, ccap, capval)
			return
		}
	}
}

func TestPrimeCaps(t *testing.T) {
	requireCard(t)
	file, err := drm.OpenCard(0)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	imp, exp, err := drm.PrimeCaps(file)
	if err != nil {
		t.Fatal(err)
	}
	expected := cardInfo.capabilities[drm.CapPrime]
	if imp != (expected&drm.PrimeCapImport != 0) || exp != (expected&drm.PrimeCapExport != 0) {
		t.Errorf("prime caps import=%v export=%v, expected %d", imp, exp, expected)
	}
}
