package ioctl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Request codes follow the generic Linux layout (include/uapi/asm-generic/ioctl.h):
//
//	bits    meaning
//	31-30   direction: 00 none, 01 write, 10 read, 11 read/write
//	29-16   size of the argument struct
//	15-8    driver type character ('d' for DRM)
//	7-0     function number
//
// For example DRM_IOWR(0x0c, struct drm_get_cap) is 0xc010640c: read/write,
// 16 byte argument, type 'd', function 0x0c.
// source: https://www.kernel.org/doc/Documentation/ioctl/ioctl-decoding.txt

const (
	None  = uint8(0x0)
	Write = uint8(0x1)
	Read  = uint8(0x2)
)

const maxSize = 1<<14 - 1

// NewCode encodes an ioctl request number. It panics on values that do not
// fit the layout, since request codes are package-level constants.
func NewCode(typ uint8, sz uint16, uniq, fn uint8) uint32 {
	var code uint32
	if typ > Write|Read {
		panic(fmt.Errorf("invalid ioctl code value: %d", typ))
	}

	if sz > maxSize {
		panic(fmt.Errorf("invalid ioctl size value: %d", sz))
	}

	code = code | (uint32(typ) << 30)
	code = code | (uint32(sz) << 16) // sz has 14bits
	code = code | (uint32(uniq) << 8)
	code = code | uint32(fn)
	return code
}

// Do issues the ioctl, restarting it while the kernel reports EINTR or
// EAGAIN the same way libdrm's drmIoctl does.
func Do(fd, cmd, ptr uintptr) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, ptr)
		switch errno {
		case 0:
			return nil
		case unix.EINTR, unix.EAGAIN:
			continue
		default:
			return errno
		}
	}
}
