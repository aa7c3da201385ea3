package drm

import (
	"os"
	"unsafe"

	"github.com/NeowayLabs/drmcheck/ioctl"
)

type (
	capability struct {
		cap uint64
		val uint64
	}
)

const (
	CapDumbBuffer = iota + 1
	CapVBlankHighCRTC
	CapDumbPreferredDepth
	CapDumbPreferShadow
	CapPrime
	CapTimestampMonotonic
	CapAsyncPageFlip
	CapCursorWidth
	CapCursorHeight

	CapAddFB2Modifiers = 0x10
	CapPageFlipTarget  = 0x11
	CapCRTCInVBlank    = 0x12
	CapSyncObj         = 0x13
)

// Bits of the CapPrime value.
const (
	PrimeCapImport = 0x1
	PrimeCapExport = 0x2
)

// Client capabilities accepted by SetClientCap.
const (
	ClientCapStereo3D = iota + 1
	ClientCapUniversalPlanes
	ClientCapAtomic
	ClientCapAspectRatio
	ClientCapWritebackConnectors
)

// GetCap returns the raw value of a driver capability.
func GetCap(file *os.File, c uint64) (uint64, error) {
	cap := &capability{cap: c}
	err := ioctl.Do(uintptr(file.Fd()), uintptr(IOCTLGetCap), uintptr(unsafe.Pointer(cap)))
	if err != nil {
		return 0, err
	}
	return cap.val, nil
}

func hasCap(file *os.File, c uint64) bool {
	val, err := GetCap(file, c)
	if err != nil {
		return false
	}
	return val != 0
}

func HasDumbBuffer(file *os.File) bool {
	return hasCap(file, CapDumbBuffer)
}

// HasAddFB2Modifiers reports whether the driver accepts explicit format
// modifiers, which is what makes per-format modifier lists meaningful.
func HasAddFB2Modifiers(file *os.File) bool {
	return hasCap(file, CapAddFB2Modifiers)
}

// PrimeCaps reports whether buffers can be imported from and exported to
// DMA-BUF file descriptors.
func PrimeCaps(file *os.File) (imp, exp bool, err error) {
	val, err := GetCap(file, CapPrime)
	if err != nil {
		return false, false, err
	}
	return val&PrimeCapImport != 0, val&PrimeCapExport != 0, nil
}

// SetClientCap opts the client into a feature, such as universal planes.
func SetClientCap(file *os.File, c, val uint64) error {
	req := &capability{cap: c, val: val}
	return ioctl.Do(uintptr(file.Fd()), uintptr(IOCTLSetClientCap), uintptr(unsafe.Pointer(req)))
}
