// Package dmabuf determines which DRM formats and modifiers a device can
// import as textures and use as render targets.
//
// A Querier answers the raw driver questions; Probe turns the answers into
// a pair of format sets following the import rules compositors rely on.
package dmabuf

import (
	"errors"

	"github.com/NeowayLabs/drmcheck"
)

// ErrUnknownFormat is returned by a Querier asked about a format it never
// listed.
var ErrUnknownFormat = errors.New("format not reported by the driver")

// Modifier is one modifier the driver supports for a format.
type Modifier struct {
	Value drm.Modifier `yaml:"modifier"`

	// ExternalOnly modifiers may only be sampled through
	// GL_TEXTURE_EXTERNAL_OES and cannot back a render target.
	ExternalOnly bool `yaml:"external_only,omitempty"`
}

// Querier is the driver side of a capability pass.
type Querier interface {
	// Capability reports whether DMA-BUF import is supported at all and
	// whether formats and modifiers can be queried explicitly.
	Capability() (imp, modifiers bool)

	// Formats lists the importable formats. Only called when both
	// capabilities are present.
	Formats() ([]drm.Format, error)

	// Modifiers lists the explicit modifiers of one format. An empty list
	// means the driver did not say.
	Modifiers(format drm.Format) ([]Modifier, error)
}
