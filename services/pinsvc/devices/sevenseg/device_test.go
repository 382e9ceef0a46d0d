// services/pinsvc/devices/sevenseg/device_test.go
package sevenseg

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers"

	"pinstate-go/errcode"
	"pinstate-go/pins"
	"pinstate-go/services/pinsvc"
	"pinstate-go/types"
)

// ---- fakes ----

type fakeI2C struct {
	addr   uint16
	writes [][]byte
	err    error
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if f.err != nil {
		return f.err
	}
	f.addr = addr
	cp := make([]byte, len(w))
	copy(cp, w)
	f.writes = append(f.writes, cp)
	return nil
}

type fakeBuses map[string]drivers.I2C

func (f fakeBuses) ByID(id string) (drivers.I2C, bool) {
	b, ok := f[id]
	return b, ok
}

func build(t *testing.T, m *pins.Matrix, buses pinsvc.I2CFactory, params Params) pinsvc.Device {
	t.Helper()
	d, err := builder{}.Build(pinsvc.BuildInput{
		Matrix:     m,
		Buses:      buses,
		DeviceID:   "disp0",
		Type:       "sevenseg",
		ParamsJSON: params,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

// ---- tests ----

func TestShow_LatchesCells(t *testing.T) {
	m, err := pins.New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Destroy()

	d := build(t, m, nil, Params{Port: "B", FirstPin: 0})

	res, err := d.Control("show", types.DisplayValue{Char: "1"})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	ack := res.(types.DisplayAck)
	if ack.Segments != 0b00000110 {
		t.Fatalf("ack segments = %#02x", ack.Segments)
	}

	want := []pins.State{pins.Off, pins.On, pins.On, pins.Off, pins.Off, pins.Off, pins.Off}
	for n, w := range want {
		got, err := m.Get(pins.PortB, n, pins.FuncOut)
		if err != nil {
			t.Fatalf("Get(B,%d,out): %v", n, err)
		}
		if got != w {
			t.Fatalf("segment line %d = %v, want %v", n, got, w)
		}
	}
}

func TestShow_CommonAnodeInverts(t *testing.T) {
	m, err := pins.New(7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Destroy()

	d := build(t, m, nil, Params{Port: "A", FirstPin: 0, CommonAnode: true})

	res, err := d.Control("show", types.DisplayValue{Char: "1"})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if got := res.(types.DisplayAck).Segments; got != 0b01111001 {
		t.Fatalf("anode wire = %#02x", got)
	}
}

func TestShow_PushesToExpander(t *testing.T) {
	m, err := pins.New(7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Destroy()

	i2c := &fakeI2C{}
	d := build(t, m, fakeBuses{"i2c0": i2c}, Params{Port: "D", FirstPin: 0, Bus: "i2c0", Addr: 0x20})

	if _, err := d.Control("show", types.DisplayValue{Char: "8"}); err != nil {
		t.Fatalf("show: %v", err)
	}
	if i2c.addr != 0x20 || len(i2c.writes) != 1 || i2c.writes[0][0] != 0x7F {
		t.Fatalf("expander write: addr=%#x writes=%v", i2c.addr, i2c.writes)
	}

	i2c.err = errors.New("nak")
	if _, err := d.Control("blank", nil); err == nil {
		t.Fatal("expected expander error to surface")
	}
}

func TestBlank(t *testing.T) {
	m, err := pins.New(7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Destroy()

	d := build(t, m, nil, Params{Port: "C", FirstPin: 0})
	if _, err := d.Control("show", types.DisplayValue{Char: "8"}); err != nil {
		t.Fatalf("show: %v", err)
	}
	if _, err := d.Control("blank", nil); err != nil {
		t.Fatalf("blank: %v", err)
	}
	for n := 0; n < 7; n++ {
		if got, _ := m.Get(pins.PortC, n, pins.FuncOut); got != pins.Off {
			t.Fatalf("line %d still lit after blank", n)
		}
	}
}

func TestBuildValidation(t *testing.T) {
	m, err := pins.New(4) // too small for seven lines
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Destroy()

	if _, err := (builder{}).Build(pinsvc.BuildInput{Matrix: m, ParamsJSON: Params{Port: "A", FirstPin: 0}}); errcode.Of(err) != errcode.OutOfRange {
		t.Fatalf("short port: got %v", err)
	}
	if _, err := (builder{}).Build(pinsvc.BuildInput{Matrix: m, ParamsJSON: Params{Port: "A", Bus: "i2c9"}}); errcode.Of(err) != errcode.UnknownBus {
		t.Fatalf("missing bus factory: got %v", err)
	}

	if _, err := d7(t).Control("show", types.DisplayValue{Char: "?"}); errcode.Of(err) != errcode.OutOfRange {
		t.Fatalf("bad char: got %v", err)
	}
}

func d7(t *testing.T) pinsvc.Device {
	t.Helper()
	m, err := pins.New(7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { m.Destroy() })
	return build(t, m, nil, Params{Port: "A", FirstPin: 0})
}
