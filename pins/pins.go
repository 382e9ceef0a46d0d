// pins/pins.go
package pins

import "strings"

// -----------------------------------------------------------------------------
// Enumerations
// -----------------------------------------------------------------------------

// Port is one of the four logical pin groups.
type Port uint8

const (
	PortA Port = iota
	PortB
	PortC
	PortD

	// NumPorts is fixed; the matrix always carries all four ports.
	NumPorts = 4
)

// Func is the role assigned to a pin.
type Func uint8

const (
	FuncOut Func = iota
	FuncIn
	FuncAlt

	NumFuncs = 3
)

// State is the value held by one (port, pin, func) cell. The matrix never
// interprets it; cell semantics belong to the caller.
type State uint8

const (
	Off State = iota
	On
)

func (p Port) String() string {
	switch p {
	case PortA:
		return "A"
	case PortB:
		return "B"
	case PortC:
		return "C"
	case PortD:
		return "D"
	default:
		return "?"
	}
}

func (f Func) String() string {
	switch f {
	case FuncOut:
		return "out"
	case FuncIn:
		return "in"
	case FuncAlt:
		return "alt"
	default:
		return "?"
	}
}

func (s State) String() string {
	if s == On {
		return "on"
	}
	return "off"
}

// ParsePort converts "a".."d" (case-insensitive) to a Port.
func ParsePort(s string) (Port, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return PortA, true
	case "B":
		return PortB, true
	case "C":
		return PortC, true
	case "D":
		return PortD, true
	default:
		return 0, false
	}
}

// ParseFunc converts "out", "in" or "alt" (case-insensitive) to a Func.
func ParseFunc(s string) (Func, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "out":
		return FuncOut, true
	case "in":
		return FuncIn, true
	case "alt":
		return FuncAlt, true
	default:
		return 0, false
	}
}

// ParseState recognises on/off, 1/0, true/false (case-insensitive).
func ParseState(s string) (State, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "1", "true":
		return On, true
	case "off", "0", "false":
		return Off, true
	default:
		return Off, false
	}
}
