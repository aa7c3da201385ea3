package drm_test

import (
	"testing"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/mode"
)

func TestDRIOpen(t *testing.T) {
	requireCard(t)
	file, err := drm.OpenCard(0)
	if err != nil {
		t.Fatal(err)
	}
	file.Close()
}

func TestAvailableCard(t *testing.T) {
	requireCard(t)
	v, err := drm.Available()
	if err != nil {
		t.Fatal(err)
	}
	if v.Name != cardInfo.version.Name {
		t.Errorf("driver name: %q != %q", v.Name, cardInfo.version.Name)
	}
	if v.Major != cardInfo.version.Major || v.Minor != cardInfo.version.Minor ||
		v.Patch != cardInfo.version.Patch {
		t.Logf("Unknown driver version: %d.%d.%d", v.Major, v.Minor, v.Patch)
	}

	t.Logf("Driver name: %s", v.Name)
	t.Logf("Driver version: %d.%d.%d", v.Major, v.Minor, v.Patch)
	t.Logf("Driver date: %s", v.Date)
	t.Logf("Driver description: %s", v.Desc)
}

func TestModeRes(t *testing.T) {
	requireCard(t)
	file, err := drm.OpenCard(0)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	mres, err := mode.GetResources(file)
	if err != nil {
		t.Error(err)
		return
	}

	t.Logf("Number of framebuffers: %d", mres.CountFbs)
	t.Logf("Number of CRTCs: %d", mres.CountCrtcs)
	t.Logf("Number of connectors: %d", mres.CountConnectors)
	t.Logf("Number of encoders: %d", mres.CountEncoders)
	t.Logf("CRTC ids: %v", mres.Crtcs)
	t.Logf("Connector ids: %v", mres.Connectors)
}

func TestNodePath(t *testing.T) {
	for _, tc := range []struct {
		node     drm.Node
		card     int
		expected string
	}{
		{drm.NodePrimary, 0, "/dev/dri/card0"},
		{drm.NodeControl, 1, "/dev/dri/controlD65"},
		{drm.NodeRender, 0, "/dev/dri/renderD128"},
	} {
		if got := tc.node.Path(tc.card); got != tc.expected {
			t.Errorf("%s.Path(%d) = %s, expected %s", tc.node, tc.card, got, tc.expected)
		}
		parsed, err := drm.ParseNode(tc.node.String())
		if err != nil || parsed != tc.node {
			t.Errorf("ParseNode(%q) = %v, %v", tc.node.String(), parsed, err)
		}
	}
	if _, err := drm.ParseNode("gpu"); err == nil {
		t.Error("ParseNode accepted an unknown node")
	}
}
