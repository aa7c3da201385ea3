package drm

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/NeowayLabs/drmcheck/ioctl"
)

type (
	version struct {
		Major   int32
		Minor   int32
		Patch   int32
		namelen int64
		name    uintptr
		datelen int64
		date    uintptr
		desclen int64
		desc    uintptr
	}

	// Version of DRM driver
	Version struct {
		Major, Minor, Patch int32
		Name                string // Name of the driver (eg.: i915)
		Date                string
		Desc                string
	}

	// Node selects which device node of a card is opened.
	Node int
)

const (
	NodePrimary Node = iota
	NodeControl
	NodeRender
)

const (
	driPath = "/dev/dri"

	// render nodes are numbered from 128, control nodes from 64
	renderMinorBase  = 128
	controlMinorBase = 64
)

func (n Node) String() string {
	switch n {
	case NodePrimary:
		return "card"
	case NodeControl:
		return "control"
	case NodeRender:
		return "render"
	}
	return fmt.Sprintf("Node(%d)", int(n))
}

// ParseNode is the inverse of Node.String.
func ParseNode(s string) (Node, error) {
	switch s {
	case "", "card", "primary":
		return NodePrimary, nil
	case "control":
		return NodeControl, nil
	case "render":
		return NodeRender, nil
	}
	return 0, fmt.Errorf("unknown DRM node type %q", s)
}

// Path returns the device path of the n-th card for this node type.
func (n Node) Path(card int) string {
	switch n {
	case NodeControl:
		return fmt.Sprintf("%s/controlD%d", driPath, controlMinorBase+card)
	case NodeRender:
		return fmt.Sprintf("%s/renderD%d", driPath, renderMinorBase+card)
	}
	return fmt.Sprintf("%s/card%d", driPath, card)
}

func Available() (Version, error) {
	f, err := OpenCard(0)
	if err != nil {
		// handle backward linux compat?
		// check /proc/dri/0 ?
		return Version{}, err
	}
	defer f.Close()
	return GetVersion(f)
}

// Open opens the given node of the n-th card.
func Open(node Node, n int) (*os.File, error) {
	return open(node.Path(n))
}

func OpenCard(n int) (*os.File, error) {
	return Open(NodePrimary, n)
}

func OpenControlDev(n int) (*os.File, error) {
	return Open(NodeControl, n)
}

func OpenRenderDev(n int) (*os.File, error) {
	return Open(NodeRender, n)
}

func open(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

func GetVersion(file *os.File) (Version, error) {
	var (
		name, date, desc []byte
	)

	version := &version{}
	err := ioctl.Do(uintptr(file.Fd()), uintptr(IOCTLVersion),
		uintptr(unsafe.Pointer(version)))
	if err != nil {
		return Version{}, err
	}

	if version.namelen > 0 {
		name = make([]byte, version.namelen+1)
		version.name = uintptr(unsafe.Pointer(&name[0]))
	}

	if version.datelen > 0 {
		date = make([]byte, version.datelen+1)
		version.date = uintptr(unsafe.Pointer(&date[0]))
	}
	if version.desclen > 0 {
		desc = make([]byte, version.desclen+1)
		version.desc = uintptr(unsafe.Pointer(&desc[0]))
	}

	err = ioctl.Do(uintptr(file.Fd()), uintptr(IOCTLVersion),
		uintptr(unsafe.Pointer(version)))
	runtime.KeepAlive(name)
	runtime.KeepAlive(date)
	runtime.KeepAlive(desc)
	if err != nil {
		return Version{}, err
	}

	// remove C null byte at end
	name = name[:min(int64(len(name)), version.namelen)]
	date = date[:min(int64(len(date)), version.datelen)]
	desc = desc[:min(int64(len(desc)), version.desclen)]

	nozero := func(r rune) bool {
		return r == 0
	}

	return Version{
		Major: version.Major,
		Minor: version.Minor,
		Patch: version.Patch,
		Name:  string(bytes.TrimFunc(name, nozero)),
		Date:  string(bytes.TrimFunc(date, nozero)),
		Desc:  string(bytes.TrimFunc(desc, nozero)),
	}, nil
}
