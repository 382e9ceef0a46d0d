// services/pinsvc/service.go
package pinsvc

import (
	"context"
	"time"

	"pinstate-go/bus"
	"pinstate-go/errcode"
	"pinstate-go/pins"
	"pinstate-go/types"
)

var (
	topicConfig   = bus.T("config", "pins")
	topicCellCtrl = bus.T("pins", "cell", "+", "+", "+", "ctrl", "+")
	topicDevCtrl  = bus.T("pins", "device", "+", "ctrl", "+")
	topicState    = bus.T("pins", "state")
)

// Service owns one live pin matrix and exposes it over the bus.
//
// It answers request/reply on
//
//	pins/cell/<port>/<pin>/<func>/ctrl/{get,set,toggle}
//	pins/device/<id>/ctrl/<method>
//
// publishes retained cell values on pins/cell/<port>/<pin>/<func>/value, and
// a retained service state on pins/state. Configuration arrives as a
// types.Config on config/pins; each new config destroys the previous matrix
// and builds a fresh one, so the single-owner rule holds throughout.
type Service struct {
	conn  *bus.Connection
	buses I2CFactory
	arena pins.Arena

	matrix  *pins.Matrix
	devices map[string]Device
}

type Option func(*Service)

// WithI2C supplies the expander bus factory handed to device builders.
func WithI2C(f I2CFactory) Option {
	return func(s *Service) { s.buses = f }
}

// WithArena routes matrix storage through a custom arena (tests).
func WithArena(a pins.Arena) Option {
	return func(s *Service) { s.arena = a }
}

func New(conn *bus.Connection, opts ...Option) *Service {
	s := &Service{
		conn:    conn,
		devices: map[string]Device{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is cancelled. The matrix is destroyed on the way out.
func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	cellSub := s.conn.Subscribe(topicCellCtrl)
	devSub := s.conn.Subscribe(topicDevCtrl)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(cellSub)
	defer s.conn.Unsubscribe(devSub)

	s.publishState("idle", "awaiting_config")

	for {
		select {
		case <-ctx.Done():
			s.teardown()
			s.publishState("stopped", "context_cancelled")
			return

		case msg := <-cfgSub.Channel():
			var cfg types.Config
			if err := DecodeJSON(msg.Payload, &cfg); err != nil {
				s.publishState("error", "config_decode_failed")
				continue
			}
			if err := s.applyConfig(cfg); err != nil {
				s.publishState("error", string(errcode.Of(err)))
				continue
			}
			s.publishState("ready", "configured")

		case msg := <-cellSub.Channel():
			s.handleCell(msg)

		case msg := <-devSub.Channel():
			s.handleDevice(msg)
		}
	}
}

// applyConfig replaces the matrix and rebuilds every device. A failure at
// any step tears the half-applied config back down: the service ends up
// either fully configured or unconfigured, mirroring the matrix's own
// full-or-absent contract.
func (s *Service) applyConfig(cfg types.Config) error {
	s.teardown()

	m, err := s.newMatrix(cfg.PinCount)
	if err != nil {
		return err
	}

	devices := map[string]Device{}
	for _, dc := range cfg.Devices {
		b, ok := Lookup(dc.Type)
		if !ok {
			_ = m.Destroy()
			return &errcode.E{C: errcode.UnknownDevice, Op: "pinsvc.applyConfig", Msg: dc.Type}
		}
		dev, err := b.Build(BuildInput{
			Matrix:     m,
			Buses:      s.buses,
			DeviceID:   dc.ID,
			Type:       dc.Type,
			ParamsJSON: dc.Params,
		})
		if err != nil {
			_ = m.Destroy()
			return err
		}
		devices[dc.ID] = dev
	}

	s.matrix = m
	s.devices = devices
	return nil
}

func (s *Service) newMatrix(pinCount int) (*pins.Matrix, error) {
	if s.arena != nil {
		return pins.New(pinCount, pins.WithArena(s.arena))
	}
	return pins.New(pinCount)
}

func (s *Service) teardown() {
	if s.matrix != nil {
		_ = s.matrix.Destroy()
		s.matrix = nil
	}
	s.devices = map[string]Device{}
}

// handleCell serves pins/cell/<port>/<pin>/<func>/ctrl/<method>.
func (s *Service) handleCell(msg *bus.Message) {
	if len(msg.Topic) != 7 {
		return
	}
	port, okPort := pins.ParsePort(asString(msg.Topic[2]))
	pin, okPin := asInt(msg.Topic[3])
	fn, okFn := pins.ParseFunc(asString(msg.Topic[4]))
	method := asString(msg.Topic[6])
	if !okPort {
		s.replyErr(msg, errcode.UnknownPort)
		return
	}
	if !okFn {
		s.replyErr(msg, errcode.UnknownFunc)
		return
	}
	if !okPin {
		s.replyErr(msg, errcode.OutOfRange)
		return
	}
	if s.matrix == nil {
		s.replyErr(msg, errcode.Busy)
		return
	}

	switch method {
	case "get":
		v, err := s.matrix.Get(port, pin, fn)
		if err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		s.conn.Reply(msg, cellValue(port, pin, fn, v), false)

	case "set":
		var p types.CellSet
		if err := DecodeJSON(msg.Payload, &p); err != nil {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		state := pins.Off
		if p.On {
			state = pins.On
		}
		if err := s.matrix.Set(port, pin, fn, state); err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		s.publishCell(port, pin, fn, state)
		s.conn.Reply(msg, types.OKReply{OK: true}, false)

	case "toggle":
		if err := s.matrix.Toggle(port, pin, fn); err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		v, _ := s.matrix.Get(port, pin, fn)
		s.publishCell(port, pin, fn, v)
		s.conn.Reply(msg, cellValue(port, pin, fn, v), false)

	default:
		s.replyErr(msg, errcode.Unsupported)
	}
}

// handleDevice serves pins/device/<id>/ctrl/<method>.
func (s *Service) handleDevice(msg *bus.Message) {
	if len(msg.Topic) != 5 {
		return
	}
	id := asString(msg.Topic[2])
	method := asString(msg.Topic[4])

	dev, ok := s.devices[id]
	if !ok {
		s.replyErr(msg, errcode.UnknownDevice)
		return
	}
	res, err := dev.Control(method, msg.Payload)
	if err != nil {
		s.replyErr(msg, errcode.Of(err))
		return
	}
	s.conn.Reply(msg, res, false)
}

func (s *Service) publishCell(port pins.Port, pin int, fn pins.Func, v pins.State) {
	topic := bus.T("pins", "cell", port.String(), pin, fn.String(), "value")
	s.conn.Publish(s.conn.NewMessage(topic, cellValue(port, pin, fn, v), true))
}

func (s *Service) publishState(level, status string) {
	st := types.ServiceState{Level: level, Status: status, TS: time.Now().UnixMilli()}
	s.conn.Publish(s.conn.NewMessage(topicState, st, true))
}

func (s *Service) replyErr(msg *bus.Message, c errcode.Code) {
	s.conn.Reply(msg, types.ErrorReply{OK: false, Error: string(c)}, false)
}

func cellValue(port pins.Port, pin int, fn pins.Func, v pins.State) types.CellValue {
	return types.CellValue{
		Port: port.String(),
		Pin:  pin,
		Func: fn.String(),
		On:   v == pins.On,
	}
}
