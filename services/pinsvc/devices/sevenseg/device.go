// services/pinsvc/devices/sevenseg/device.go
//
// sevenseg drives a single 7-segment digit. The seven segment lines occupy
// seven consecutive OUT cells of one port; when an I²C port expander is
// configured, the wire byte is also pushed out over the bus.
package sevenseg

import (
	"tinygo.org/x/drivers"

	"pinstate-go/errcode"
	"pinstate-go/pins"
	"pinstate-go/segdisp"
	"pinstate-go/services/pinsvc"
	"pinstate-go/types"
)

func init() {
	pinsvc.RegisterBuilder("sevenseg", builder{})
}

type Params struct {
	Port        string `json:"port"`
	FirstPin    int    `json:"first_pin"` // segment a; b..g follow
	CommonAnode bool   `json:"common_anode,omitempty"`
	Bus         string `json:"bus,omitempty"`  // expander bus id, optional
	Addr        uint16 `json:"addr,omitempty"` // expander address
}

type builder struct{}

func (builder) Build(in pinsvc.BuildInput) (pinsvc.Device, error) {
	var p Params
	if err := pinsvc.DecodeJSON(in.ParamsJSON, &p); err != nil {
		return nil, err
	}
	port, ok := pins.ParsePort(p.Port)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownPort, Op: "sevenseg.Build", Msg: p.Port}
	}

	d := &Device{
		id:     in.DeviceID,
		matrix: in.Matrix,
		port:   port,
		first:  p.FirstPin,
		addr:   p.Addr,
	}
	if p.CommonAnode {
		d.pol = segdisp.CommonAnode
	}
	if p.Bus != "" {
		if in.Buses == nil {
			return nil, &errcode.E{C: errcode.UnknownBus, Op: "sevenseg.Build", Msg: p.Bus}
		}
		i2c, ok := in.Buses.ByID(p.Bus)
		if !ok {
			return nil, &errcode.E{C: errcode.UnknownBus, Op: "sevenseg.Build", Msg: p.Bus}
		}
		d.i2c = i2c
	}

	// Claim the segment cells; validates the pin range up front.
	for n := 0; n < segdisp.NumLines; n++ {
		if err := in.Matrix.Set(port, p.FirstPin+n, pins.FuncOut, pins.Off); err != nil {
			return nil, err
		}
	}
	return d, nil
}

type Device struct {
	id     string
	matrix *pins.Matrix
	port   pins.Port
	first  int
	pol    segdisp.Polarity
	i2c    drivers.I2C
	addr   uint16
}

func (d *Device) ID() string { return d.id }

// Control supports:
//   - "show" with a types.DisplayValue: encode the character and latch it
//   - "blank": clear the digit
func (d *Device) Control(method string, payload any) (any, error) {
	switch method {
	case "show":
		var in types.DisplayValue
		if err := pinsvc.DecodeJSON(payload, &in); err != nil {
			return nil, &errcode.E{C: errcode.InvalidPayload, Op: "sevenseg.Control", Err: err}
		}
		r := ' '
		if in.Char != "" {
			r = []rune(in.Char)[0]
		}
		seg, err := segdisp.EncodeRune(r)
		if err != nil {
			return nil, err
		}
		return d.latch(seg)

	case "blank":
		return d.latch(segdisp.Blank)

	default:
		return nil, errcode.Unsupported
	}
}

// latch writes the wire levels into the matrix cells and, when an expander
// is attached, pushes the byte out over I²C.
func (d *Device) latch(seg segdisp.Segments) (any, error) {
	wire := seg.Wire(d.pol)
	for n := 0; n < segdisp.NumLines; n++ {
		state := pins.Off
		if wire&(1<<n) != 0 {
			state = pins.On
		}
		if err := d.matrix.Set(d.port, d.first+n, pins.FuncOut, state); err != nil {
			return nil, err
		}
	}
	if d.i2c != nil {
		if err := d.i2c.Tx(d.addr, []byte{wire}, nil); err != nil {
			return nil, &errcode.E{C: errcode.Error, Op: "sevenseg.latch", Err: err}
		}
	}
	return types.DisplayAck{Segments: wire}, nil
}
