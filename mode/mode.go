package mode

import (
	"bytes"
	"os"
	"runtime"
	"unsafe"

	"github.com/NeowayLabs/drmcheck"
	"github.com/NeowayLabs/drmcheck/ioctl"
)

const (
	DisplayInfoLen   = 32
	ConnectorNameLen = 32
	DisplayModeLen   = 32
	PropNameLen      = 32

	Connected         = 1
	Disconnected      = 2
	UnknownConnection = 3
)

// resources and connectors can change between the two ioctls of a query
// when a display is hotplugged; the query is restarted this many times.
const maxHotplugRetries = 8

type (
	sysResources struct {
		fbIdPtr              uint64
		crtcIdPtr            uint64
		connectorIdPtr       uint64
		encoderIdPtr         uint64
		CountFbs             uint32
		CountCrtcs           uint32
		CountConnectors      uint32
		CountEncoders        uint32
		MinWidth, MaxWidth   uint32
		MinHeight, MaxHeight uint32
	}

	sysGetConnector struct {
		encodersPtr   uint64
		modesPtr      uint64
		propsPtr      uint64
		propValuesPtr uint64

		countModes    uint32
		countProps    uint32
		countEncoders uint32

		encoderID       uint32 // current encoder
		ID              uint32
		connectorType   uint32
		connectorTypeID uint32

		connection        uint32
		mmWidth, mmHeight uint32 // HxW in millimeters
		subpixel          uint32
		pad               uint32
	}

	sysGetEncoder struct {
		id  uint32
		typ uint32

		crtcID uint32

		possibleCrtcs  uint32
		possibleClones uint32
	}

	Info struct {
		Clock                                         uint32
		Hdisplay, HsyncStart, HsyncEnd, Htotal, Hskew uint16
		Vdisplay, VsyncStart, VsyncEnd, Vtotal, Vscan uint16

		Vrefresh uint32

		Flags uint32
		Type  uint32
		Name  [DisplayModeLen]uint8
	}

	Resources struct {
		sysResources

		Fbs        []uint32
		Crtcs      []uint32
		Connectors []uint32
		Encoders   []uint32
	}

	Connector struct {
		ID            uint32
		EncoderID     uint32
		Type          uint32
		TypeID        uint32
		Connection    uint8
		Width, Height uint32
		Subpixel      uint8

		Modes []Info

		Props      []uint32
		PropValues []uint64

		Encoders []uint32
	}

	Encoder struct {
		ID   uint32
		Type uint32

		CrtcID uint32

		PossibleCrtcs  uint32
		PossibleClones uint32
	}

	sysCrtc struct {
		setConnectorsPtr uint64
		countConnectors  uint32

		id   uint32
		fbID uint32

		x, y uint32

		gammaSize uint32
		modeValid uint32
		mode      Info
	}

	// Crtc is the current state of a scanout engine.
	Crtc struct {
		ID uint32

		// FbID is the framebuffer being scanned out, 0 when disabled.
		FbID uint32
		X, Y uint32

		// Mode is only meaningful when Active is set.
		Active    bool
		Mode      Info
		GammaSize uint32
	}
)

var (
	// DRM_IOWR(0xA0, struct drm_mode_card_res)
	IOCTLModeResources = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysResources{})), drm.IOCTLBase, 0xA0)

	// DRM_IOWR(0xA1, struct drm_mode_crtc)
	IOCTLModeGetCrtc = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCrtc{})), drm.IOCTLBase, 0xA1)

	// DRM_IOWR(0xA6, struct drm_mode_get_encoder)
	IOCTLModeGetEncoder = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetEncoder{})), drm.IOCTLBase, 0xA6)

	// DRM_IOWR(0xA7, struct drm_mode_get_connector)
	IOCTLModeGetConnector = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetConnector{})), drm.IOCTLBase, 0xA7)
)

func ptr[T any](s []T) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}

func do(file *os.File, code uint32, arg unsafe.Pointer) error {
	return ioctl.Do(uintptr(file.Fd()), uintptr(code), uintptr(arg))
}

func GetResources(file *os.File) (*Resources, error) {
	for retry := 0; ; retry++ {
		mres := &sysResources{}
		err := do(file, IOCTLModeResources, unsafe.Pointer(mres))
		if err != nil {
			return nil, err
		}

		counts := *mres
		fbids := make([]uint32, mres.CountFbs)
		crtcids := make([]uint32, mres.CountCrtcs)
		encoderids := make([]uint32, mres.CountEncoders)
		connectorids := make([]uint32, mres.CountConnectors)
		mres.fbIdPtr = ptr(fbids)
		mres.crtcIdPtr = ptr(crtcids)
		mres.encoderIdPtr = ptr(encoderids)
		mres.connectorIdPtr = ptr(connectorids)

		err = do(file, IOCTLModeResources, unsafe.Pointer(mres))
		runtime.KeepAlive(fbids)
		runtime.KeepAlive(crtcids)
		runtime.KeepAlive(encoderids)
		runtime.KeepAlive(connectorids)
		if err != nil {
			return nil, err
		}

		grew := mres.CountFbs > counts.CountFbs || mres.CountCrtcs > counts.CountCrtcs ||
			mres.CountEncoders > counts.CountEncoders || mres.CountConnectors > counts.CountConnectors
		if grew && retry < maxHotplugRetries {
			continue
		}

		return &Resources{
			sysResources: *mres,
			Fbs:          fbids[:min(counts.CountFbs, mres.CountFbs)],
			Crtcs:        crtcids[:min(counts.CountCrtcs, mres.CountCrtcs)],
			Encoders:     encoderids[:min(counts.CountEncoders, mres.CountEncoders)],
			Connectors:   connectorids[:min(counts.CountConnectors, mres.CountConnectors)],
		}, nil
	}
}

func GetConnector(file *os.File, connid uint32) (*Connector, error) {
	for retry := 0; ; retry++ {
		conn := &sysGetConnector{}
		conn.ID = connid
		err := do(file, IOCTLModeGetConnector, unsafe.Pointer(conn))
		if err != nil {
			return nil, err
		}

		counts := *conn
		props := make([]uint32, conn.countProps)
		propValues := make([]uint64, conn.countProps)
		modes := make([]Info, conn.countModes)
		encoders := make([]uint32, conn.countEncoders)
		conn.propsPtr = ptr(props)
		conn.propValuesPtr = ptr(propValues)
		conn.modesPtr = ptr(modes)
		conn.encodersPtr = ptr(encoders)

		err = do(file, IOCTLModeGetConnector, unsafe.Pointer(conn))
		runtime.KeepAlive(props)
		runtime.KeepAlive(propValues)
		runtime.KeepAlive(modes)
		runtime.KeepAlive(encoders)
		if err != nil {
			return nil, err
		}

		grew := conn.countProps > counts.countProps || conn.countModes > counts.countModes ||
			conn.countEncoders > counts.countEncoders
		if grew && retry < maxHotplugRetries {
			continue
		}

		nprops := min(counts.countProps, conn.countProps)
		return &Connector{
			ID:         conn.ID,
			EncoderID:  conn.encoderID,
			Connection: uint8(conn.connection),
			Width:      conn.mmWidth,
			Height:     conn.mmHeight,

			// convert subpixel from kernel to userspace */
			Subpixel: uint8(conn.subpixel + 1),
			Type:     conn.connectorType,
			TypeID:   conn.connectorTypeID,

			Props:      props[:nprops],
			PropValues: propValues[:nprops],
			Modes:      modes[:min(counts.countModes, conn.countModes)],
			Encoders:   encoders[:min(counts.countEncoders, conn.countEncoders)],
		}, nil
	}
}

func GetEncoder(file *os.File, id uint32) (*Encoder, error) {
	encoder := &sysGetEncoder{}
	encoder.id = id

	err := do(file, IOCTLModeGetEncoder, unsafe.Pointer(encoder))
	if err != nil {
		return nil, err
	}

	return &Encoder{
		ID:             encoder.id,
		CrtcID:         encoder.crtcID,
		Type:           encoder.typ,
		PossibleCrtcs:  encoder.possibleCrtcs,
		PossibleClones: encoder.possibleClones,
	}, nil
}

// GetCrtc reads the state of a CRTC without changing it.
func GetCrtc(file *os.File, id uint32) (*Crtc, error) {
	c := &sysCrtc{id: id}
	if err := do(file, IOCTLModeGetCrtc, unsafe.Pointer(c)); err != nil {
		return nil, err
	}
	return &Crtc{
		ID:        c.id,
		FbID:      c.fbID,
		X:         c.x,
		Y:         c.y,
		Active:    c.modeValid != 0,
		Mode:      c.mode,
		GammaSize: c.gammaSize,
	}, nil
}

// ModeName returns the mode name without the C padding, e.g. "1920x1080".
func (i *Info) ModeName() string {
	name := i.Name[:]
	if n := bytes.IndexByte(name, 0); n >= 0 {
		name = name[:n]
	}
	return string(name)
}
