// Package egl checks EGL extension strings against what a DMA-BUF capable
// compositor needs, and names EGL error codes and debug message types.
//
// The package works on the strings returned by eglQueryString and
// eglQueryDeviceStringEXT; it does not link against libEGL.
package egl

import "strings"

// Extensions is a parsed, space separated EGL extension string.
type Extensions struct {
	names []string
	set   map[string]struct{}
}

func ParseExtensions(s string) Extensions {
	names := strings.Fields(s)
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Extensions{names: names, set: set}
}

// Has reports whether name is one of the extensions. Only whole tokens
// match: "EGL_EXT_device" does not match "EGL_EXT_device_base".
func (e Extensions) Has(name string) bool {
	_, ok := e.set[name]
	return ok
}

// Any reports whether at least one of names is present.
func (e Extensions) Any(names ...string) bool {
	for _, n := range names {
		if e.Has(n) {
			return true
		}
	}
	return false
}

// Names returns the extensions in the order the driver listed them.
func (e Extensions) Names() []string {
	return append([]string(nil), e.names...)
}

func (e Extensions) Len() int {
	return len(e.names)
}

func (e Extensions) String() string {
	return strings.Join(e.names, " ")
}
