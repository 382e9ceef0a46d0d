// pins/matrix.go
package pins

import (
	"pinstate-go/errcode"
)

// Matrix owns a port × pin × function grid of cells. It has exactly two
// observable states: live (fully allocated, every cell addressable) and
// absent (never constructed, or destroyed). A caller never sees a partially
// built matrix: New either returns a live one or rolls back everything it
// claimed and returns an error.
//
// Cells for one port live in a single flat slab indexed by
// pin*NumFuncs+func; there is no per-pin or per-cell allocation. The port
// directory and the four slabs are separate Arena claims, so a failure
// mid-construction exercises real rollback.
//
// A Matrix has one owner. It is not safe for concurrent use.
type Matrix struct {
	pinCount int
	arena    Arena
	ports    [][]State
}

type Option func(*Matrix)

// WithArena replaces the default heap arena. Tests use it to track and
// inject allocation failures.
func WithArena(a Arena) Option {
	return func(m *Matrix) { m.arena = a }
}

// New builds a live matrix with pinCount pins per port, all cells Off.
//
// Claims happen in order: the port directory, then one slab per port. If any
// claim fails, everything claimed so far is released before New returns, and
// the error carries errcode.OutOfMemory. pinCount < 1 is
// errcode.InvalidArgument.
func New(pinCount int, opts ...Option) (*Matrix, error) {
	if pinCount < 1 {
		return nil, &errcode.E{C: errcode.InvalidArgument, Op: "pins.New", Msg: "pin count must be positive"}
	}

	m := &Matrix{pinCount: pinCount, arena: heapArena{}}
	for _, opt := range opts {
		opt(m)
	}

	committed := false
	defer func() {
		if !committed {
			m.release()
		}
	}()

	dir, err := m.arena.ClaimPorts(NumPorts)
	if err != nil {
		return nil, &errcode.E{C: errcode.OutOfMemory, Op: "pins.New", Err: err}
	}
	m.ports = dir

	for p := range m.ports {
		slab, err := m.arena.ClaimStates(pinCount * NumFuncs)
		if err != nil {
			return nil, &errcode.E{C: errcode.OutOfMemory, Op: "pins.New", Err: err}
		}
		m.ports[p] = slab
	}

	committed = true
	return m, nil
}

// release gives every claimed slab back to the arena, bottom-up, nulling
// each reference as it goes. Safe on a partially built matrix and safe to
// call again after it has already run.
func (m *Matrix) release() {
	if m.ports == nil {
		return
	}
	for p := range m.ports {
		if m.ports[p] != nil {
			m.arena.ReleaseStates(m.ports[p])
			m.ports[p] = nil
		}
	}
	m.arena.ReleasePorts(m.ports)
	m.ports = nil
}

// Destroy releases all storage and leaves the matrix absent.
//
// A nil receiver is caller misuse and reports errcode.InvalidArgument, never
// success. A repeated Destroy on the same handle is a safe no-op: every
// reference was cleared on the first call, so there is nothing left to
// double-release.
func (m *Matrix) Destroy() error {
	if m == nil {
		return &errcode.E{C: errcode.InvalidArgument, Op: "pins.Destroy", Msg: "no matrix"}
	}
	m.release()
	return nil
}

// Live reports whether the matrix currently owns its storage.
func (m *Matrix) Live() bool { return m != nil && m.ports != nil }

// PinCount is fixed at construction.
func (m *Matrix) PinCount() int {
	if m == nil {
		return 0
	}
	return m.pinCount
}

func (m *Matrix) index(port Port, pin int, fn Func) (int, error) {
	if !m.Live() {
		return 0, &errcode.E{C: errcode.InvalidArgument, Op: "pins.index", Msg: "matrix is not live"}
	}
	if port >= NumPorts {
		return 0, &errcode.E{C: errcode.UnknownPort, Op: "pins.index"}
	}
	if fn >= NumFuncs {
		return 0, &errcode.E{C: errcode.UnknownFunc, Op: "pins.index"}
	}
	if pin < 0 || pin >= m.pinCount {
		return 0, &errcode.E{C: errcode.OutOfRange, Op: "pins.index", Msg: "pin index outside [0,pinCount)"}
	}
	return pin*NumFuncs + int(fn), nil
}

// Get reads one cell.
func (m *Matrix) Get(port Port, pin int, fn Func) (State, error) {
	i, err := m.index(port, pin, fn)
	if err != nil {
		return Off, err
	}
	return m.ports[port][i], nil
}

// Set writes one cell. Cells are independent; no other cell changes.
func (m *Matrix) Set(port Port, pin int, fn Func, s State) error {
	i, err := m.index(port, pin, fn)
	if err != nil {
		return err
	}
	m.ports[port][i] = s
	return nil
}

// Toggle flips one cell between Off and On.
func (m *Matrix) Toggle(port Port, pin int, fn Func) error {
	i, err := m.index(port, pin, fn)
	if err != nil {
		return err
	}
	if m.ports[port][i] == On {
		m.ports[port][i] = Off
	} else {
		m.ports[port][i] = On
	}
	return nil
}
