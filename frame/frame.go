// Package frame checks that a device can allocate, map and fill a
// framebuffer without changing what is on screen.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"launchpad.net/gommap"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/mode"
)

const (
	bpp   = 32
	depth = 24
)

var (
	ErrNoDumbBuffer = errors.New("frame: device does not support dumb buffers")
	ErrShortBuffer  = errors.New("frame: mapping smaller than the frame")
)

// Result describes the buffer the kernel handed out and how many pixels
// did not read back as written.
type Result struct {
	Width, Height uint16
	Pitch         uint32
	Size          uint64
	Mismatches    int
}

func (r *Result) OK() bool {
	return r.Mismatches == 0
}

// Check creates an XRGB8888 dumb buffer, registers it as a framebuffer,
// writes a gradient through a shared mapping and reads it back. The
// framebuffer is never attached to a CRTC. Everything created is released
// before returning.
func Check(file *os.File, width, height uint16) (res *Result, err error) {
	if !drm.HasDumbBuffer(file) {
		return nil, ErrNoDumbBuffer
	}

	buf, err := mode.CreateDumb(file, uint32(width), uint32(height), bpp)
	if err != nil {
		return nil, fmt.Errorf("create dumb buffer %dx%d: %w", width, height, err)
	}
	defer func() {
		if derr := buf.Destroy(file); derr != nil && err == nil {
			err = fmt.Errorf("destroy dumb buffer: %w", derr)
		}
	}()

	fbID, err := mode.AddFB(file, buf, depth)
	if err != nil {
		return nil, fmt.Errorf("add framebuffer: %w", err)
	}
	defer func() {
		if rerr := mode.RmFB(file, fbID); rerr != nil && err == nil {
			err = fmt.Errorf("remove framebuffer %d: %w", fbID, rerr)
		}
	}()

	offset, err := buf.MapOffset(file)
	if err != nil {
		return nil, fmt.Errorf("map dumb buffer: %w", err)
	}
	mmap, err := gommap.MapAt(0, file.Fd(), int64(offset), int64(buf.Size),
		gommap.PROT_READ|gommap.PROT_WRITE, gommap.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap framebuffer: %w", err)
	}
	defer func() {
		if uerr := mmap.UnsafeUnmap(); uerr != nil && err == nil {
			err = fmt.Errorf("munmap framebuffer: %w", uerr)
		}
	}()

	res = &Result{
		Width:  width,
		Height: height,
		Pitch:  buf.Pitch,
		Size:   buf.Size,
	}
	if err := fill(mmap, int(width), int(height), int(buf.Pitch)); err != nil {
		return nil, err
	}
	res.Mismatches = compare(mmap, int(width), int(height), int(buf.Pitch))
	return res, nil
}

// pixel is the XRGB8888 gradient value at x, y: red grows to the right,
// green grows downwards and blue is their sum.
func pixel(x, y, width, height int) uint32 {
	var r, g uint32
	if width > 1 {
		r = uint32(x * 0xff / (width - 1))
	}
	if height > 1 {
		g = uint32(y * 0xff / (height - 1))
	}
	b := uint32(x+y) & 0xff
	return r<<16 | g<<8 | b
}

func fits(buf []byte, width, height, pitch int) bool {
	if width == 0 || height == 0 {
		return true
	}
	return pitch >= width*4 && len(buf) >= pitch*(height-1)+width*4
}

func fill(buf []byte, width, height, pitch int) error {
	if !fits(buf, width, height, pitch) {
		return ErrShortBuffer
	}
	for y := 0; y < height; y++ {
		row := buf[y*pitch:]
		for x := 0; x < width; x++ {
			binary.LittleEndian.PutUint32(row[x*4:], pixel(x, y, width, height))
		}
	}
	return nil
}

// compare counts the pixels that differ from the gradient. The X byte is
// ignored since drivers may clobber it.
func compare(buf []byte, width, height, pitch int) int {
	if !fits(buf, width, height, pitch) {
		return width * height
	}
	mismatches := 0
	for y := 0; y < height; y++ {
		row := buf[y*pitch:]
		for x := 0; x < width; x++ {
			got := binary.LittleEndian.Uint32(row[x*4:]) & 0xffffff
			if got != pixel(x, y, width, height) {
				mismatches++
			}
		}
	}
	return mismatches
}
