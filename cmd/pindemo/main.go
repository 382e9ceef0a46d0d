// cmd/pindemo/main.go
//
// pindemo brings up the bus and the pin service in one process, applies a
// small config and walks through the cell and device surface. Useful as a
// smoke check and as a reference for the topics the service speaks.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"pinstate-go/bus"
	"pinstate-go/pins"
	"pinstate-go/segdisp"
	"pinstate-go/services/pinsvc"
	"pinstate-go/types"

	_ "pinstate-go/services/pinsvc/devices/keyled"
	_ "pinstate-go/services/pinsvc/devices/sevenseg"
)

// demoArena counts slabs in flight so the shutdown can prove nothing leaked.
type demoArena struct{ live atomic.Int64 }

func (a *demoArena) ClaimStates(n int) ([]pins.State, error) {
	a.live.Add(1)
	return make([]pins.State, n), nil
}
func (a *demoArena) ReleaseStates([]pins.State) { a.live.Add(-1) }
func (a *demoArena) ClaimPorts(n int) ([][]pins.State, error) {
	a.live.Add(1)
	return make([][]pins.State, n), nil
}
func (a *demoArena) ReleasePorts([][]pins.State) { a.live.Add(-1) }

func main() {
	b := bus.NewBus(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	arena := &demoArena{}
	svc := pinsvc.New(b.NewConnection("pinsvc"), pinsvc.WithArena(arena))
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	// Eight pins: the display occupies lines 0..6 of port B.
	conn := b.NewConnection("pindemo")
	conn.Publish(conn.NewMessage(bus.T("config", "pins"), types.Config{
		PinCount: 8,
		Devices: []types.DeviceConfig{
			{ID: "keys0", Type: "keyled", Params: map[string]any{
				"port": "C", "even_pin": 0, "odd_pin": 1,
			}},
			{ID: "disp0", Type: "sevenseg", Params: map[string]any{
				"port": "B", "first_pin": 0,
			}},
		},
	}, true))

	waitReady(conn)

	// Cell surface: three independent cells set, read back, one toggled.
	request(conn, bus.T("pins", "cell", "A", 0, "out", "ctrl", "set"), types.CellSet{On: true})
	request(conn, bus.T("pins", "cell", "B", 2, "alt", "ctrl", "set"), types.CellSet{On: true})
	request(conn, bus.T("pins", "cell", "C", 5, "in", "ctrl", "set"), types.CellSet{On: true})
	request(conn, bus.T("pins", "cell", "A", 0, "out", "ctrl", "get"), nil)
	request(conn, bus.T("pins", "cell", "A", 0, "out", "ctrl", "toggle"), nil)

	// Key parity: even key counts light the even LED, odd counts the odd one.
	for _, keys := range []uint8{0b000, 0b001, 0b011, 0b111} {
		request(conn, bus.T("pins", "device", "keys0", "ctrl", "keys"), types.KeyInput{Keys: keys})
	}

	// Seven-segment digit, latched into port B and printed as a glyph.
	request(conn, bus.T("pins", "device", "disp0", "ctrl", "show"), types.DisplayValue{Char: "5"})
	if seg, err := segdisp.Digit(5); err == nil {
		fmt.Println(seg)
	}

	cancel()
	<-done
	if n := arena.live.Load(); n != 0 {
		fmt.Printf("arena leak: %d slabs still live\n", n)
		os.Exit(1)
	}
	fmt.Println("arena drained, done")
}

func waitReady(conn *bus.Connection) {
	sub := conn.Subscribe(bus.T("pins", "state"))
	defer conn.Unsubscribe(sub)
	for {
		select {
		case msg := <-sub.Channel():
			st := msg.Payload.(types.ServiceState)
			fmt.Printf("state: %s (%s)\n", st.Level, st.Status)
			if st.Level == "ready" {
				return
			}
			if st.Level == "error" {
				os.Exit(1)
			}
		case <-time.After(2 * time.Second):
			fmt.Println("service never became ready")
			os.Exit(1)
		}
	}
}

func request(conn *bus.Connection, topic bus.Topic, payload any) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := conn.RequestWait(ctx, conn.NewMessage(topic, payload, false))
	if err != nil {
		fmt.Printf("%v: %v\n", topic, err)
		os.Exit(1)
	}
	fmt.Printf("%v -> %+v\n", topic, reply.Payload)
}
