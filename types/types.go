// types/types.go
package types

// ---- Service state (retained) ----

type ServiceState struct {
	Level  string `json:"level"`  // e.g. "idle", "ready", "stopped"
	Status string `json:"status"` // freeform short code
	TS     int64  `json:"ts_ms"`
}

// ---- Cell payloads ----

// CellValue appears retained on pins/cell/<port>/<pin>/<func>/value and as
// the reply to a "get".
type CellValue struct {
	Port string `json:"port"`
	Pin  int    `json:"pin"`
	Func string `json:"func"`
	On   bool   `json:"on"`
}

// CellSet is the control payload for "set".
type CellSet struct {
	On bool `json:"on"`
}

// ---- Generic replies ----

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ---- Device payloads ----

// KeyInput carries the raw key bitmask for the keyled device.
type KeyInput struct {
	Keys uint8 `json:"keys"`
}

// KeyLEDValue reports which parity LED is lit after a KeyInput.
type KeyLEDValue struct {
	Even bool `json:"even"`
	Odd  bool `json:"odd"`
}

// DisplayValue asks the sevenseg device to show one character.
type DisplayValue struct {
	Char string `json:"char"`
}

// DisplayAck reports the raw segment byte that was latched.
type DisplayAck struct {
	Segments uint8 `json:"segments"`
}

// ---- Public configuration ----

type Config struct {
	PinCount int            `json:"pin_count"`
	Devices  []DeviceConfig `json:"devices,omitempty"`
}

type DeviceConfig struct {
	ID     string `json:"id"`     // logical device id, e.g. "keys0"
	Type   string `json:"type"`   // e.g. "keyled"
	Params any    `json:"params"` // device-specific params (JSON-like)
}
