package formats

import (
	"slices"

	"github.com/NeowayLabs/drmcheck"
)

const initialCapacity = 4

// Entry is a single DRM format with the set of modifiers attached to it.
type Entry struct {
	format    drm.Format
	modifiers []drm.Modifier
}

// NewEntry returns an entry for format with no modifiers.
func NewEntry(format drm.Format) *Entry {
	return &Entry{
		format:    format,
		modifiers: make([]drm.Modifier, 0, initialCapacity),
	}
}

func (e *Entry) Format() drm.Format {
	return e.format
}

// Len returns the number of modifiers.
func (e *Entry) Len() int {
	return len(e.modifiers)
}

// Modifiers returns a copy of the modifiers in insertion order.
func (e *Entry) Modifiers() []drm.Modifier {
	return slices.Clone(e.modifiers)
}

func (e *Entry) Has(modifier drm.Modifier) bool {
	for _, m := range e.modifiers {
		if m == modifier {
			return true
		}
	}
	return false
}

// Add inserts modifier unless it is already present. It reports whether the
// entry changed.
func (e *Entry) Add(modifier drm.Modifier) bool {
	if e.Has(modifier) {
		return false
	}

	if len(e.modifiers) == cap(e.modifiers) {
		e.modifiers = grow(e.modifiers)
	}
	e.modifiers = append(e.modifiers, modifier)
	return true
}

func (e *Entry) clone() Entry {
	return Entry{
		format:    e.format,
		modifiers: slices.Clip(slices.Clone(e.modifiers)),
	}
}

// grow returns a copy of s with doubled capacity; s is not modified.
func grow[T any](s []T) []T {
	n := cap(s) * 2
	if n == 0 {
		n = initialCapacity
	}
	grown := make([]T, len(s), n)
	copy(grown, s)
	return grown
}
