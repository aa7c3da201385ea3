package mode

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/NeowayLabs/drmcheck"
)

// ErrInFormatsBlob is returned for IN_FORMATS blobs that cannot be decoded.
var ErrInFormatsBlob = errors.New("malformed IN_FORMATS blob")

// Layout of struct drm_format_modifier_blob and struct drm_format_modifier.
const (
	inFormatsVersion    = 1
	inFormatsHeaderSize = 24
	formatModifierSize  = 24
)

// InFormat is one format of an IN_FORMATS blob together with the modifiers
// the plane accepts for it.
type InFormat struct {
	Format    drm.Format
	Modifiers []drm.Modifier
}

// ParseInFormats decodes the IN_FORMATS plane property blob. Formats are
// returned in blob order; each modifier record applies to up to 64
// consecutive formats selected by its bitmask.
func ParseInFormats(blob []byte) ([]InFormat, error) {
	if len(blob) < inFormatsHeaderSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrInFormatsBlob, len(blob))
	}

	le := binary.NativeEndian
	version := le.Uint32(blob[0:])
	countFormats := le.Uint32(blob[8:])
	formatsOffset := le.Uint32(blob[12:])
	countModifiers := le.Uint32(blob[16:])
	modifiersOffset := le.Uint32(blob[20:])

	if version != inFormatsVersion {
		return nil, fmt.Errorf("%w: version %d", ErrInFormatsBlob, version)
	}
	if !fits(len(blob), formatsOffset, countFormats, 4) {
		return nil, fmt.Errorf("%w: %d formats at offset %d overflow %d bytes",
			ErrInFormatsBlob, countFormats, formatsOffset, len(blob))
	}
	if !fits(len(blob), modifiersOffset, countModifiers, formatModifierSize) {
		return nil, fmt.Errorf("%w: %d modifiers at offset %d overflow %d bytes",
			ErrInFormatsBlob, countModifiers, modifiersOffset, len(blob))
	}

	result := make([]InFormat, countFormats)
	for i := range result {
		off := int(formatsOffset) + 4*i
		result[i].Format = drm.Format(le.Uint32(blob[off:]))
	}

	for i := 0; i < int(countModifiers); i++ {
		rec := blob[int(modifiersOffset)+formatModifierSize*i:]
		mask := le.Uint64(rec[0:])
		offset := le.Uint32(rec[8:])
		modifier := drm.Modifier(le.Uint64(rec[16:]))

		for bit := uint32(0); bit < 64; bit++ {
			if mask&(1<<bit) == 0 {
				continue
			}
			idx := uint64(offset) + uint64(bit)
			if idx >= uint64(countFormats) {
				break
			}
			result[idx].Modifiers = append(result[idx].Modifiers, modifier)
		}
	}
	return result, nil
}

func fits(size int, offset, count uint32, elem int) bool {
	if count == 0 {
		return true
	}
	end := uint64(offset) + uint64(count)*uint64(elem)
	return end <= uint64(size)
}
