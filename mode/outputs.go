package mode

import (
	"fmt"
	"os"
)

var connectorTypeNames = [...]string{
	"Unknown", "VGA", "DVI-I", "DVI-D", "DVI-A", "Composite", "SVIDEO",
	"LVDS", "Component", "DIN", "DP", "HDMI-A", "HDMI-B", "TV", "eDP",
	"Virtual", "DSI", "DPI", "Writeback", "SPI", "USB",
}

// ConnectorTypeName returns the name the kernel uses for a connector type,
// as in "HDMI-A-1".
func ConnectorTypeName(typ uint32) string {
	if int(typ) < len(connectorTypeNames) {
		return connectorTypeNames[typ]
	}
	return fmt.Sprintf("Type%d", typ)
}

// Output is a connected connector and the CRTC that can drive it.
type Output struct {
	Name          string
	Connector     uint32
	Crtc          uint32
	Mode          Info
	Width, Height uint16

	// Active is set when the CRTC is currently scanning out.
	Active bool
}

// Outputs lists connected connectors with their preferred mode and a CRTC
// that is not claimed by an earlier output. It only reads KMS state.
func Outputs(file *os.File) ([]Output, error) {
	res, err := GetResources(file)
	if err != nil {
		return nil, fmt.Errorf("cannot retrieve resources: %w", err)
	}

	var outputs []Output
	for _, id := range res.Connectors {
		conn, err := GetConnector(file, id)
		if err != nil {
			return nil, fmt.Errorf("cannot retrieve connector %d: %w", id, err)
		}

		// check if a monitor is connected
		if conn.Connection != Connected || len(conn.Modes) == 0 {
			continue
		}

		out := Output{
			Name:      fmt.Sprintf("%s-%d", ConnectorTypeName(conn.Type), conn.TypeID),
			Connector: conn.ID,
			Mode:      conn.Modes[0],
			Width:     conn.Modes[0].Hdisplay,
			Height:    conn.Modes[0].Vdisplay,
		}
		out.Crtc, err = findCrtc(file, res, conn, outputs)
		if err != nil {
			return nil, err
		}
		if out.Crtc != 0 {
			crtc, err := GetCrtc(file, out.Crtc)
			if err != nil {
				return nil, fmt.Errorf("cannot retrieve crtc %d: %w", out.Crtc, err)
			}
			out.Active = crtc.Active
		}
		outputs = append(outputs, out)
	}

	return outputs, nil
}

func crtcTaken(outputs []Output, crtc uint32) bool {
	for i := range outputs {
		if outputs[i].Crtc == crtc {
			return true
		}
	}
	return false
}

// findCrtc returns 0 when every CRTC the connector could use is taken.
func findCrtc(file *os.File, res *Resources, conn *Connector, outputs []Output) (uint32, error) {
	// prefer the encoder+crtc the connector is currently bound to
	if conn.EncoderID != 0 {
		encoder, err := GetEncoder(file, conn.EncoderID)
		if err != nil {
			return 0, fmt.Errorf("cannot retrieve encoder %d: %w", conn.EncoderID, err)
		}
		if encoder.CrtcID != 0 && !crtcTaken(outputs, encoder.CrtcID) {
			return encoder.CrtcID, nil
		}
	}

	for _, encid := range conn.Encoders {
		encoder, err := GetEncoder(file, encid)
		if err != nil {
			return 0, fmt.Errorf("cannot retrieve encoder %d: %w", encid, err)
		}
		for j, crtc := range res.Crtcs {
			// check whether this CRTC works with the encoder
			if encoder.PossibleCrtcs&(1<<uint(j)) == 0 {
				continue
			}
			if !crtcTaken(outputs, crtc) {
				return crtc, nil
			}
		}
	}

	return 0, nil
}
