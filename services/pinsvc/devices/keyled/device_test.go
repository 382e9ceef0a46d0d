// services/pinsvc/devices/keyled/device_test.go
package keyled

import (
	"testing"

	"pinstate-go/errcode"
	"pinstate-go/pins"
	"pinstate-go/services/pinsvc"
	"pinstate-go/types"
)

func build(t *testing.T, m *pins.Matrix, params any) pinsvc.Device {
	t.Helper()
	d, err := builder{}.Build(pinsvc.BuildInput{
		Matrix:     m,
		DeviceID:   "keys0",
		Type:       "keyled",
		ParamsJSON: params,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

func cell(t *testing.T, m *pins.Matrix, pin int) pins.State {
	t.Helper()
	v, err := m.Get(pins.PortC, pin, pins.FuncOut)
	if err != nil {
		t.Fatalf("Get(C,%d,out): %v", pin, err)
	}
	return v
}

func TestParity(t *testing.T) {
	m, err := pins.New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Destroy()

	d := build(t, m, Params{Port: "C", EvenPin: 0, OddPin: 1})

	cases := []struct {
		keys uint8
		even bool
	}{
		{0b000, true},
		{0b001, false},
		{0b011, true},
		{0b111, false},
		{0b101, true},
		{0b1001, false}, // bit 3 masked off, one key left
	}
	for _, c := range cases {
		res, err := d.Control("keys", types.KeyInput{Keys: c.keys})
		if err != nil {
			t.Fatalf("keys=%#b: %v", c.keys, err)
		}
		v := res.(types.KeyLEDValue)
		if v.Even != c.even || v.Odd == c.even {
			t.Fatalf("keys=%#b: reply %+v, want even=%v", c.keys, v, c.even)
		}
		wantEven, wantOdd := pins.Off, pins.On
		if c.even {
			wantEven, wantOdd = pins.On, pins.Off
		}
		if cell(t, m, 0) != wantEven || cell(t, m, 1) != wantOdd {
			t.Fatalf("keys=%#b: cells even=%v odd=%v", c.keys, cell(t, m, 0), cell(t, m, 1))
		}
	}
}

func TestBuildValidation(t *testing.T) {
	m, err := pins.New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Destroy()

	if _, err := (builder{}).Build(pinsvc.BuildInput{Matrix: m, ParamsJSON: Params{Port: "Q", EvenPin: 0, OddPin: 1}}); errcode.Of(err) != errcode.UnknownPort {
		t.Fatalf("bad port: got %v", err)
	}
	if _, err := (builder{}).Build(pinsvc.BuildInput{Matrix: m, ParamsJSON: Params{Port: "A", EvenPin: 1, OddPin: 1}}); errcode.Of(err) != errcode.InvalidArgument {
		t.Fatalf("shared pin: got %v", err)
	}
	if _, err := (builder{}).Build(pinsvc.BuildInput{Matrix: m, ParamsJSON: Params{Port: "A", EvenPin: 0, OddPin: 5}}); errcode.Of(err) != errcode.OutOfRange {
		t.Fatalf("pin out of range: got %v", err)
	}
}

func TestUnsupportedMethod(t *testing.T) {
	m, err := pins.New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Destroy()

	d := build(t, m, Params{Port: "A", EvenPin: 0, OddPin: 1})
	if _, err := d.Control("blink", nil); errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("got %v", err)
	}
}
