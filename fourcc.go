package drm

import (
	"fmt"
	"strconv"
	"strings"
)

// Format is a DRM fourcc pixel format code, as defined in drm_fourcc.h.
type Format uint32

func fourcc(a, b, c, d byte) Format {
	return Format(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

const (
	// FormatInvalid is reserved and never names a real format.
	FormatInvalid Format = 0

	// FormatBigEndian is OR'ed into a format to flag big-endian layouts.
	FormatBigEndian Format = 1 << 31
)

var (
	FormatC8   = fourcc('C', '8', ' ', ' ')
	FormatR8   = fourcc('R', '8', ' ', ' ')
	FormatR16  = fourcc('R', '1', '6', ' ')
	FormatRG88 = fourcc('R', 'G', '8', '8')
	FormatGR88 = fourcc('G', 'R', '8', '8')

	FormatRGB565 = fourcc('R', 'G', '1', '6')
	FormatBGR565 = fourcc('B', 'G', '1', '6')
	FormatRGB888 = fourcc('R', 'G', '2', '4')
	FormatBGR888 = fourcc('B', 'G', '2', '4')

	FormatXRGB8888 = fourcc('X', 'R', '2', '4')
	FormatXBGR8888 = fourcc('X', 'B', '2', '4')
	FormatRGBX8888 = fourcc('R', 'X', '2', '4')
	FormatBGRX8888 = fourcc('B', 'X', '2', '4')
	FormatARGB8888 = fourcc('A', 'R', '2', '4')
	FormatABGR8888 = fourcc('A', 'B', '2', '4')
	FormatRGBA8888 = fourcc('R', 'A', '2', '4')
	FormatBGRA8888 = fourcc('B', 'A', '2', '4')

	FormatXRGB2101010 = fourcc('X', 'R', '3', '0')
	FormatXBGR2101010 = fourcc('X', 'B', '3', '0')
	FormatARGB2101010 = fourcc('A', 'R', '3', '0')
	FormatABGR2101010 = fourcc('A', 'B', '3', '0')

	FormatXBGR16161616F = fourcc('X', 'B', '4', 'H')
	FormatABGR16161616F = fourcc('A', 'B', '4', 'H')

	FormatYUYV   = fourcc('Y', 'U', 'Y', 'V')
	FormatUYVY   = fourcc('U', 'Y', 'V', 'Y')
	FormatNV12   = fourcc('N', 'V', '1', '2')
	FormatNV21   = fourcc('N', 'V', '2', '1')
	FormatNV16   = fourcc('N', 'V', '1', '6')
	FormatP010   = fourcc('P', '0', '1', '0')
	FormatYUV420 = fourcc('Y', 'U', '1', '2')
	FormatYVU420 = fourcc('Y', 'V', '1', '2')
)

var formatNames = map[Format]string{
	FormatC8:            "C8",
	FormatR8:            "R8",
	FormatR16:           "R16",
	FormatRG88:          "RG88",
	FormatGR88:          "GR88",
	FormatRGB565:        "RGB565",
	FormatBGR565:        "BGR565",
	FormatRGB888:        "RGB888",
	FormatBGR888:        "BGR888",
	FormatXRGB8888:      "XRGB8888",
	FormatXBGR8888:      "XBGR8888",
	FormatRGBX8888:      "RGBX8888",
	FormatBGRX8888:      "BGRX8888",
	FormatARGB8888:      "ARGB8888",
	FormatABGR8888:      "ABGR8888",
	FormatRGBA8888:      "RGBA8888",
	FormatBGRA8888:      "BGRA8888",
	FormatXRGB2101010:   "XRGB2101010",
	FormatXBGR2101010:   "XBGR2101010",
	FormatARGB2101010:   "ARGB2101010",
	FormatABGR2101010:   "ABGR2101010",
	FormatXBGR16161616F: "XBGR16161616F",
	FormatABGR16161616F: "ABGR16161616F",
	FormatYUYV:          "YUYV",
	FormatUYVY:          "UYVY",
	FormatNV12:          "NV12",
	FormatNV21:          "NV21",
	FormatNV16:          "NV16",
	FormatP010:          "P010",
	FormatYUV420:        "YUV420",
	FormatYVU420:        "YVU420",
}

// String returns the four character code, e.g. "XR24". Codes with
// unprintable bytes are rendered in hex.
func (f Format) String() string {
	if f == FormatInvalid {
		return "INVALID"
	}
	suffix := ""
	if f&FormatBigEndian != 0 {
		suffix = "_BE"
	}
	v := uint32(f &^ FormatBigEndian)
	code := make([]byte, 4)
	for i := range code {
		c := byte(v >> (8 * i))
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(f))
		}
		code[i] = c
	}
	return string(code) + suffix
}

// Name returns the drm_fourcc.h name without the DRM_FORMAT_ prefix, or the
// fourcc itself for formats this package has no name for.
func (f Format) Name() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return f.String()
}

// ParseFormat accepts a four character code ("XR24"), a name ("XRGB8888")
// or a hex value as printed by String for unprintable codes. A "_BE"
// suffix selects the big endian variant.
func ParseFormat(s string) (Format, error) {
	if base, ok := strings.CutSuffix(s, "_BE"); ok {
		f, err := ParseFormat(base)
		if err != nil {
			return FormatInvalid, err
		}
		if f == FormatInvalid || f&FormatBigEndian != 0 {
			return FormatInvalid, fmt.Errorf("unknown format %q", s)
		}
		return f | FormatBigEndian, nil
	}
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return FormatInvalid, fmt.Errorf("unknown format %q: %w", s, err)
		}
		return Format(v), nil
	}
	for f, name := range formatNames {
		if strings.EqualFold(name, s) {
			return f, nil
		}
	}
	if len(s) == 4 {
		f := fourcc(s[0], s[1], s[2], s[3])
		if f.String() == s {
			return f, nil
		}
	}
	return FormatInvalid, fmt.Errorf("unknown format %q", s)
}

// JoinFormats renders formats as space separated four character codes.
func JoinFormats(formats []Format) string {
	codes := make([]string, len(formats))
	for i, f := range formats {
		codes[i] = f.String()
	}
	return strings.Join(codes, " ")
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
