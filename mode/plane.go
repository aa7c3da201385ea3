package mode

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/ioctl"
)

// KMS object types, as used by GetObjectProperties.
const (
	ObjectAny       = 0
	ObjectCrtc      = 0xcccccccc
	ObjectConnector = 0xc0c0c0c0
	ObjectEncoder   = 0xe0e0e0e0
	ObjectMode      = 0xdededede
	ObjectProperty  = 0xb0b0b0b0
	ObjectFB        = 0xfbfbfbfb
	ObjectBlob      = 0xbbbbbbbb
	ObjectPlane     = 0xeeeeeeee
)

// Property flags.
const (
	PropPending   = 1 << 0
	PropRange     = 1 << 1
	PropImmutable = 1 << 2
	PropEnum      = 1 << 3
	PropBlob      = 1 << 4
	PropBitmask   = 1 << 5
)

// Values of the plane "type" property.
const (
	PlaneOverlay = 0
	PlanePrimary = 1
	PlaneCursor  = 2
)

type (
	sysPlaneRes struct {
		planeIDPtr  uint64
		countPlanes uint32
		pad         uint32
	}

	sysGetPlane struct {
		planeID       uint32
		crtcID        uint32
		fbID          uint32
		possibleCrtcs uint32
		gammaSize     uint32

		countFormatTypes uint32
		formatTypePtr    uint64
	}

	sysObjGetProperties struct {
		propsPtr      uint64
		propValuesPtr uint64
		countProps    uint32
		objID         uint32
		objType       uint32
		pad           uint32
	}

	sysGetProperty struct {
		valuesPtr   uint64
		enumBlobPtr uint64

		propID uint32
		flags  uint32
		name   [PropNameLen]byte

		countValues    uint32
		countEnumBlobs uint32
	}

	sysGetBlob struct {
		blobID uint32
		length uint32
		data   uint64
	}

	Plane struct {
		ID            uint32
		CrtcID        uint32
		FbID          uint32
		PossibleCrtcs uint32
		GammaSize     uint32

		Formats []drm.Format
	}

	// ObjectProperties are the property ids attached to a KMS object and
	// their current values.
	ObjectProperties struct {
		IDs    []uint32
		Values []uint64
	}

	Property struct {
		ID     uint32
		Flags  uint32
		Name   string
		Values []uint64
	}
)

var (
	// DRM_IOWR(0xAA, struct drm_mode_get_property)
	IOCTLModeGetProperty = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetProperty{})), drm.IOCTLBase, 0xAA)

	// DRM_IOWR(0xAC, struct drm_mode_get_blob)
	IOCTLModeGetPropBlob = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetBlob{})), drm.IOCTLBase, 0xAC)

	// DRM_IOWR(0xB5, struct drm_mode_get_plane_res)
	IOCTLModeGetPlaneResources = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysPlaneRes{})), drm.IOCTLBase, 0xB5)

	// DRM_IOWR(0xB6, struct drm_mode_get_plane)
	IOCTLModeGetPlane = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetPlane{})), drm.IOCTLBase, 0xB6)

	// DRM_IOWR(0xB9, struct drm_mode_obj_get_properties)
	IOCTLModeObjGetProperties = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysObjGetProperties{})), drm.IOCTLBase, 0xB9)
)

// GetPlaneResources returns the plane ids of the device. Without the
// universal planes client capability only overlay planes are listed.
func GetPlaneResources(file *os.File) ([]uint32, error) {
	for retry := 0; ; retry++ {
		res := &sysPlaneRes{}
		err := do(file, IOCTLModeGetPlaneResources, unsafe.Pointer(res))
		if err != nil {
			return nil, err
		}

		count := res.countPlanes
		ids := make([]uint32, count)
		res.planeIDPtr = ptr(ids)
		err = do(file, IOCTLModeGetPlaneResources, unsafe.Pointer(res))
		runtime.KeepAlive(ids)
		if err != nil {
			return nil, err
		}
		if res.countPlanes > count && retry < maxHotplugRetries {
			continue
		}
		return ids[:min(count, res.countPlanes)], nil
	}
}

func GetPlane(file *os.File, id uint32) (*Plane, error) {
	p := &sysGetPlane{planeID: id}
	err := do(file, IOCTLModeGetPlane, unsafe.Pointer(p))
	if err != nil {
		return nil, err
	}

	count := p.countFormatTypes
	formats := make([]drm.Format, count)
	p.formatTypePtr = ptr(formats)
	err = do(file, IOCTLModeGetPlane, unsafe.Pointer(p))
	runtime.KeepAlive(formats)
	if err != nil {
		return nil, err
	}

	return &Plane{
		ID:            p.planeID,
		CrtcID:        p.crtcID,
		FbID:          p.fbID,
		PossibleCrtcs: p.possibleCrtcs,
		GammaSize:     p.gammaSize,
		Formats:       formats[:min(count, p.countFormatTypes)],
	}, nil
}

func GetObjectProperties(file *os.File, objID, objType uint32) (*ObjectProperties, error) {
	for retry := 0; ; retry++ {
		req := &sysObjGetProperties{objID: objID, objType: objType}
		err := do(file, IOCTLModeObjGetProperties, unsafe.Pointer(req))
		if err != nil {
			return nil, err
		}

		count := req.countProps
		ids := make([]uint32, count)
		values := make([]uint64, count)
		req.propsPtr = ptr(ids)
		req.propValuesPtr = ptr(values)
		err = do(file, IOCTLModeObjGetProperties, unsafe.Pointer(req))
		runtime.KeepAlive(ids)
		runtime.KeepAlive(values)
		if err != nil {
			return nil, err
		}
		if req.countProps > count && retry < maxHotplugRetries {
			continue
		}

		n := min(count, req.countProps)
		return &ObjectProperties{IDs: ids[:n], Values: values[:n]}, nil
	}
}

// GetProperty returns the property metadata and its range or enum values.
// Enum names are not fetched.
func GetProperty(file *os.File, id uint32) (*Property, error) {
	prop := &sysGetProperty{propID: id}
	err := do(file, IOCTLModeGetProperty, unsafe.Pointer(prop))
	if err != nil {
		return nil, err
	}

	count := prop.countValues
	values := make([]uint64, count)
	prop.valuesPtr = ptr(values)
	prop.countEnumBlobs = 0
	err = do(file, IOCTLModeGetProperty, unsafe.Pointer(prop))
	runtime.KeepAlive(values)
	if err != nil {
		return nil, err
	}

	name := prop.name[:]
	if n := bytes.IndexByte(name, 0); n >= 0 {
		name = name[:n]
	}
	return &Property{
		ID:     prop.propID,
		Flags:  prop.flags,
		Name:   string(name),
		Values: values[:min(count, prop.countValues)],
	}, nil
}

func GetPropertyBlob(file *os.File, blobID uint32) ([]byte, error) {
	blob := &sysGetBlob{blobID: blobID}
	err := do(file, IOCTLModeGetPropBlob, unsafe.Pointer(blob))
	if err != nil {
		return nil, err
	}

	length := blob.length
	data := make([]byte, length)
	blob.data = ptr(data)
	err = do(file, IOCTLModeGetPropBlob, unsafe.Pointer(blob))
	runtime.KeepAlive(data)
	if err != nil {
		return nil, err
	}
	if blob.length != length {
		return nil, fmt.Errorf("blob %d changed size from %d to %d", blobID, length, blob.length)
	}
	return data, nil
}

// PlaneInfo is what a plane advertises about the buffers it can scan out.
type PlaneInfo struct {
	Plane
	Type uint32

	// InFormats is nil when the plane has no IN_FORMATS property, as on
	// drivers without modifier support. InFormatsErr is set when the
	// property exists but could not be read.
	InFormats    []InFormat
	InFormatsErr error
}

// PlaneFormats describes every plane of the device. Callers wanting
// primary and cursor planes must enable drm.ClientCapUniversalPlanes first.
func PlaneFormats(file *os.File) ([]PlaneInfo, error) {
	ids, err := GetPlaneResources(file)
	if err != nil {
		return nil, fmt.Errorf("get plane resources: %w", err)
	}

	planes := make([]PlaneInfo, 0, len(ids))
	for _, id := range ids {
		plane, err := GetPlane(file, id)
		if err != nil {
			return nil, fmt.Errorf("get plane %d: %w", id, err)
		}
		info := PlaneInfo{Plane: *plane}
		info.Type, info.InFormats, info.InFormatsErr = planeProperties(file, id)
		planes = append(planes, info)
	}
	return planes, nil
}

func planeProperties(file *os.File, id uint32) (uint32, []InFormat, error) {
	typ := uint32(PlaneOverlay)
	props, err := GetObjectProperties(file, id, ObjectPlane)
	if err != nil {
		return typ, nil, fmt.Errorf("get plane %d properties: %w", id, err)
	}

	var inFormats []InFormat
	for i, propID := range props.IDs {
		prop, err := GetProperty(file, propID)
		if err != nil {
			return typ, nil, fmt.Errorf("get plane %d property %d: %w", id, propID, err)
		}
		switch prop.Name {
		case "type":
			typ = uint32(props.Values[i])
		case "IN_FORMATS":
			blob, err := GetPropertyBlob(file, uint32(props.Values[i]))
			if err != nil {
				return typ, nil, fmt.Errorf("get plane %d IN_FORMATS blob: %w", id, err)
			}
			inFormats, err = ParseInFormats(blob)
			if err != nil {
				return typ, nil, fmt.Errorf("plane %d: %w", id, err)
			}
		}
	}
	return typ, inFormats, nil
}
