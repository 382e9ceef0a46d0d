// services/pinsvc/devices/keyled/device.go
//
// keyled is the key-parity exercise: three user keys feed a bitmask, and the
// population parity of the pressed keys decides which of two LEDs lights.
// Even (or zero) count lights the even LED, odd count lights the odd LED.
package keyled

import (
	"math/bits"

	"pinstate-go/errcode"
	"pinstate-go/pins"
	"pinstate-go/services/pinsvc"
	"pinstate-go/types"
)

func init() {
	pinsvc.RegisterBuilder("keyled", builder{})
}

type Params struct {
	Port    string `json:"port"`
	EvenPin int    `json:"even_pin"`
	OddPin  int    `json:"odd_pin"`
	KeyMask uint8  `json:"key_mask,omitempty"` // default: three keys
}

type builder struct{}

func (builder) Build(in pinsvc.BuildInput) (pinsvc.Device, error) {
	var p Params
	if err := pinsvc.DecodeJSON(in.ParamsJSON, &p); err != nil {
		return nil, err
	}
	port, ok := pins.ParsePort(p.Port)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownPort, Op: "keyled.Build", Msg: p.Port}
	}
	if p.EvenPin == p.OddPin {
		return nil, &errcode.E{C: errcode.InvalidArgument, Op: "keyled.Build", Msg: "even and odd LEDs share a pin"}
	}
	if p.KeyMask == 0 {
		p.KeyMask = 0b111
	}

	d := &Device{
		id:      in.DeviceID,
		matrix:  in.Matrix,
		port:    port,
		evenPin: p.EvenPin,
		oddPin:  p.OddPin,
		mask:    p.KeyMask,
	}

	// Claim both LED cells as outputs; this also validates the pin range.
	if err := in.Matrix.Set(port, p.EvenPin, pins.FuncOut, pins.Off); err != nil {
		return nil, err
	}
	if err := in.Matrix.Set(port, p.OddPin, pins.FuncOut, pins.Off); err != nil {
		return nil, err
	}
	return d, nil
}

type Device struct {
	id      string
	matrix  *pins.Matrix
	port    pins.Port
	evenPin int
	oddPin  int
	mask    uint8
}

func (d *Device) ID() string { return d.id }

// Control supports method "keys" with a types.KeyInput payload.
func (d *Device) Control(method string, payload any) (any, error) {
	switch method {
	case "keys":
		var in types.KeyInput
		if err := pinsvc.DecodeJSON(payload, &in); err != nil {
			return nil, &errcode.E{C: errcode.InvalidPayload, Op: "keyled.Control", Err: err}
		}
		even := bits.OnesCount8(in.Keys&d.mask)%2 == 0

		evenState, oddState := pins.Off, pins.On
		if even {
			evenState, oddState = pins.On, pins.Off
		}
		if err := d.matrix.Set(d.port, d.evenPin, pins.FuncOut, evenState); err != nil {
			return nil, err
		}
		if err := d.matrix.Set(d.port, d.oddPin, pins.FuncOut, oddState); err != nil {
			return nil, err
		}
		return types.KeyLEDValue{Even: even, Odd: !even}, nil

	default:
		return nil, errcode.Unsupported
	}
}
