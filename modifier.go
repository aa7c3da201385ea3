package drm

import (
	"fmt"
	"strconv"
	"strings"
)

// Modifier describes a vendor specific memory layout (tiling, compression)
// of a buffer. The top 8 bits name the vendor, the rest is vendor defined.
type Modifier uint64

const (
	VendorNone      = 0x00
	VendorIntel     = 0x01
	VendorAMD       = 0x02
	VendorNVIDIA    = 0x03
	VendorSamsung   = 0x04
	VendorQualcomm  = 0x05
	VendorVivante   = 0x06
	VendorBroadcom  = 0x07
	VendorARM       = 0x08
	VendorAllwinner = 0x09
	VendorAmlogic   = 0x0a
)

const (
	modifierReserved = 1<<56 - 1

	// ModifierLinear is the untiled, row-major layout.
	ModifierLinear Modifier = 0

	// ModifierInvalid means no explicit modifier was negotiated and the
	// driver picks the layout.
	ModifierInvalid Modifier = VendorNone<<56 | modifierReserved

	// ModifierImplicit is the name the import path uses for ModifierInvalid.
	ModifierImplicit = ModifierInvalid
)

// ModifierCode builds a modifier from a vendor and a vendor specific value.
func ModifierCode(vendor uint8, val uint64) Modifier {
	return Modifier(uint64(vendor)<<56 | val&modifierReserved)
}

var (
	ModifierIntelXTiled        = ModifierCode(VendorIntel, 1)
	ModifierIntelYTiled        = ModifierCode(VendorIntel, 2)
	ModifierIntelYfTiled       = ModifierCode(VendorIntel, 3)
	ModifierIntelYTiledCCS     = ModifierCode(VendorIntel, 4)
	ModifierIntelYfTiledCCS    = ModifierCode(VendorIntel, 5)
	ModifierIntel4Tiled        = ModifierCode(VendorIntel, 9)
	ModifierSamsung64x32Tile   = ModifierCode(VendorSamsung, 1)
	ModifierQualcommCompressed = ModifierCode(VendorQualcomm, 1)
	ModifierBroadcomVC4TTiled  = ModifierCode(VendorBroadcom, 1)
)

var modifierNames = map[Modifier]string{
	ModifierLinear:             "LINEAR",
	ModifierInvalid:            "INVALID",
	ModifierIntelXTiled:        "I915_X_TILED",
	ModifierIntelYTiled:        "I915_Y_TILED",
	ModifierIntelYfTiled:       "I915_Yf_TILED",
	ModifierIntelYTiledCCS:     "I915_Y_TILED_CCS",
	ModifierIntelYfTiledCCS:    "I915_Yf_TILED_CCS",
	ModifierIntel4Tiled:        "I915_4_TILED",
	ModifierSamsung64x32Tile:   "SAMSUNG_64_32_TILE",
	ModifierQualcommCompressed: "QCOM_COMPRESSED",
	ModifierBroadcomVC4TTiled:  "BROADCOM_VC4_T_TILED",
}

var vendorNames = [...]string{
	VendorNone:      "NONE",
	VendorIntel:     "INTEL",
	VendorAMD:       "AMD",
	VendorNVIDIA:    "NVIDIA",
	VendorSamsung:   "SAMSUNG",
	VendorQualcomm:  "QCOM",
	VendorVivante:   "VIVANTE",
	VendorBroadcom:  "BROADCOM",
	VendorARM:       "ARM",
	VendorAllwinner: "ALLWINNER",
	VendorAmlogic:   "AMLOGIC",
}

func (m Modifier) Vendor() uint8 {
	return uint8(m >> 56)
}

// VendorName returns the drm_fourcc.h vendor name, or the vendor id in hex.
func (m Modifier) VendorName() string {
	if v := m.Vendor(); int(v) < len(vendorNames) {
		return vendorNames[v]
	}
	return fmt.Sprintf("0x%02x", m.Vendor())
}

func (m Modifier) String() string {
	if name, ok := modifierNames[m]; ok {
		return name
	}
	return fmt.Sprintf("%s:0x%014x", m.VendorName(), uint64(m)&modifierReserved)
}

// ParseModifier accepts the names and the VENDOR:0x... form printed by
// String, and plain hex values.
func ParseModifier(s string) (Modifier, error) {
	for m, name := range modifierNames {
		if strings.EqualFold(name, s) {
			return m, nil
		}
	}
	vendor, val, found := strings.Cut(s, ":")
	if !found {
		hex, ok := strings.CutPrefix(s, "0x")
		if !ok {
			return ModifierInvalid, fmt.Errorf("unknown modifier %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return ModifierInvalid, fmt.Errorf("unknown modifier %q: %w", s, err)
		}
		return Modifier(v), nil
	}

	id := -1
	for i, name := range vendorNames {
		if strings.EqualFold(name, vendor) {
			id = i
		}
	}
	if id < 0 {
		v, err := strconv.ParseUint(strings.TrimPrefix(vendor, "0x"), 16, 8)
		if err != nil {
			return ModifierInvalid, fmt.Errorf("unknown modifier vendor %q", vendor)
		}
		id = int(v)
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(val, "0x"), 16, 56)
	if err != nil {
		return ModifierInvalid, fmt.Errorf("unknown modifier %q: %w", s, err)
	}
	return ModifierCode(uint8(id), v), nil
}

func (m Modifier) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Modifier) UnmarshalText(text []byte) error {
	parsed, err := ParseModifier(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
