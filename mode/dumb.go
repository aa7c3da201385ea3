package mode

import (
	"os"
	"unsafe"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/ioctl"
)

type (
	sysCreateDumb struct {
		height, width uint32
		bpp           uint32
		flags         uint32

		handle uint32
		pitch  uint32
		size   uint64
	}

	sysMapDumb struct {
		handle uint32
		pad    uint32
		offset uint64
	}

	sysDestroyDumb struct {
		handle uint32
	}

	sysFBCmd struct {
		fbID          uint32
		width, height uint32
		pitch         uint32
		bpp           uint32
		depth         uint32
		handle        uint32
	}
)

var (
	// DRM_IOWR(0xAE, struct drm_mode_fb_cmd)
	IOCTLModeAddFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysFBCmd{})), drm.IOCTLBase, 0xAE)

	// DRM_IOWR(0xAF, unsigned int)
	IOCTLModeRmFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(uint32(0))), drm.IOCTLBase, 0xAF)

	// DRM_IOWR(0xB2, struct drm_mode_create_dumb)
	IOCTLModeCreateDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCreateDumb{})), drm.IOCTLBase, 0xB2)

	// DRM_IOWR(0xB3, struct drm_mode_map_dumb)
	IOCTLModeMapDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysMapDumb{})), drm.IOCTLBase, 0xB3)

	// DRM_IOWR(0xB4, struct drm_mode_destroy_dumb)
	IOCTLModeDestroyDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysDestroyDumb{})), drm.IOCTLBase, 0xB4)
)

// DumbBuffer is a linear buffer allocated by the driver that the CPU can
// map. Width, Height and BPP are as requested; Pitch and Size are chosen by
// the driver.
type DumbBuffer struct {
	Handle uint32

	Width, Height uint32
	BPP           uint32
	Pitch         uint32
	Size          uint64
}

func CreateDumb(file *os.File, width, height, bpp uint32) (*DumbBuffer, error) {
	req := &sysCreateDumb{width: width, height: height, bpp: bpp}
	if err := do(file, IOCTLModeCreateDumb, unsafe.Pointer(req)); err != nil {
		return nil, err
	}
	return &DumbBuffer{
		Handle: req.handle,
		Width:  req.width,
		Height: req.height,
		BPP:    req.bpp,
		Pitch:  req.pitch,
		Size:   req.size,
	}, nil
}

// MapOffset returns the fake offset to mmap the device file at.
func (b *DumbBuffer) MapOffset(file *os.File) (uint64, error) {
	req := &sysMapDumb{handle: b.Handle}
	if err := do(file, IOCTLModeMapDumb, unsafe.Pointer(req)); err != nil {
		return 0, err
	}
	return req.offset, nil
}

func (b *DumbBuffer) Destroy(file *os.File) error {
	return do(file, IOCTLModeDestroyDumb, unsafe.Pointer(&sysDestroyDumb{handle: b.Handle}))
}

// AddFB registers the buffer as a framebuffer with the legacy single plane
// ioctl, which implies the linear layout. It returns the framebuffer id.
func AddFB(file *os.File, b *DumbBuffer, depth uint32) (uint32, error) {
	req := &sysFBCmd{
		width:  b.Width,
		height: b.Height,
		pitch:  b.Pitch,
		bpp:    b.BPP,
		depth:  depth,
		handle: b.Handle,
	}
	if err := do(file, IOCTLModeAddFB, unsafe.Pointer(req)); err != nil {
		return 0, err
	}
	return req.fbID, nil
}

func RmFB(file *os.File, fbID uint32) error {
	id := fbID
	return do(file, IOCTLModeRmFB, unsafe.Pointer(&id))
}
