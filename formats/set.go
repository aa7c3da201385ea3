package formats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NeowayLabs/drmcheck"
)

// ErrInvalidFormat is returned when adding the reserved invalid fourcc.
var ErrInvalidFormat = errors.New("formats: invalid DRM format")

// Handle refers to an entry of the Set that returned it. Handles stay valid
// for the lifetime of the set since entries are never removed.
type Handle int

// Set is a collection of entries with at most one entry per format.
// The zero value is an empty set ready to use.
type Set struct {
	entries []Entry
}

// Len returns the number of formats in the set.
func (s *Set) Len() int {
	return len(s.entries)
}

// Find returns the handle of the entry for format.
func (s *Set) Find(format drm.Format) (Handle, bool) {
	for i := range s.entries {
		if s.entries[i].format == format {
			return Handle(i), true
		}
	}
	return -1, false
}

// Entry returns a copy of the entry behind h. The copy does not change
// when the set grows.
func (s *Set) Entry(h Handle) (Entry, bool) {
	if h < 0 || int(h) >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[h].clone(), true
}

// Lookup is Find followed by Entry.
func (s *Set) Lookup(format drm.Format) (Entry, bool) {
	h, ok := s.Find(format)
	if !ok {
		return Entry{}, false
	}
	return s.Entry(h)
}

// Has reports whether the set holds the format/modifier pair.
func (s *Set) Has(format drm.Format, modifier drm.Modifier) bool {
	h, ok := s.Find(format)
	if !ok {
		return false
	}
	return s.entries[h].Has(modifier)
}

// Add records the format/modifier pair, creating the entry for format if
// needed. Adding a pair that is already present is a no-op.
func (s *Set) Add(format drm.Format, modifier drm.Modifier) error {
	if format == drm.FormatInvalid {
		return fmt.Errorf("%w: modifier %s", ErrInvalidFormat, modifier)
	}

	if h, ok := s.Find(format); ok {
		s.entries[h].Add(modifier)
		return nil
	}

	entry := NewEntry(format)
	entry.Add(modifier)

	if len(s.entries) == cap(s.entries) {
		s.entries = grow(s.entries)
	}
	s.entries = append(s.entries, *entry)
	return nil
}

// Formats returns the formats in the set in insertion order.
func (s *Set) Formats() []drm.Format {
	formats := make([]drm.Format, len(s.entries))
	for i := range s.entries {
		formats[i] = s.entries[i].format
	}
	return formats
}

// Entries returns copies of all entries in insertion order.
func (s *Set) Entries() []Entry {
	entries := make([]Entry, len(s.entries))
	for i := range s.entries {
		entries[i] = s.entries[i].clone()
	}
	return entries
}

func (s *Set) String() string {
	var b strings.Builder
	for i := range s.entries {
		if i > 0 {
			b.WriteString("; ")
		}
		e := &s.entries[i]
		b.WriteString(e.format.String())
		b.WriteString(":")
		for j, m := range e.modifiers {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString(" ")
			b.WriteString(m.String())
		}
	}
	return b.String()
}
