// pins/arena.go
package pins

// Arena supplies the storage a Matrix owns. A Claim is atomic: it either
// returns a usable, zeroed (all-Off) slab or an error; it never partially
// succeeds. Release must tolerate slabs it has already been given back
// exactly once; the matrix guarantees it never releases the same slab twice.
type Arena interface {
	// ClaimStates returns a slab of n cells, all Off.
	ClaimStates(n int) ([]State, error)
	ReleaseStates(s []State)

	// ClaimPorts returns the port directory: n empty slab slots.
	ClaimPorts(n int) ([][]State, error)
	ReleasePorts(p [][]State)
}

// heapArena is the production arena: plain Go allocations, releases are
// no-ops and the collector reclaims dropped slabs.
type heapArena struct{}

func (heapArena) ClaimStates(n int) ([]State, error)  { return make([]State, n), nil }
func (heapArena) ReleaseStates([]State)               {}
func (heapArena) ClaimPorts(n int) ([][]State, error) { return make([][]State, n), nil }
func (heapArena) ReleasePorts([][]State)              {}
