package types

import "fmt"

// State is one configuration of the intersection: the grid index of each
// vertical (V0, V1) and horizontal (H0, H1) vehicle at time index T.
// Equality is plain struct equality, so a State can be a map key.
type State struct {
	V0 int
	V1 int
	H0 int
	H1 int
	T  int
}

// Origin is the universal start state: every vehicle at index 0 at time 0.
var Origin = State{}

// Coords returns the four vehicle coordinates in record order.
func (s State) Coords() [4]int {
	return [4]int{s.V0, s.V1, s.H0, s.H1}
}

// Vertical returns the vertical vehicle coordinates.
func (s State) Vertical() [2]int {
	return [2]int{s.V0, s.V1}
}

// Horizontal returns the horizontal vehicle coordinates.
func (s State) Horizontal() [2]int {
	return [2]int{s.H0, s.H1}
}

// WithCoords returns a state at time t with the given coordinates.
func WithCoords(c [4]int, t int) State {
	return State{V0: c[0], V1: c[1], H0: c[2], H1: c[3], T: t}
}

// IsGoal reports whether all four vehicles sit on the goal index.
func (s State) IsGoal(goal int) bool {
	return s.V0 == goal && s.V1 == goal && s.H0 == goal && s.H1 == goal
}

// String renders the state as grid indices, e.g. "(1,0,2,2)@3".
func (s State) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)@%d", s.V0, s.V1, s.H0, s.H1, s.T)
}

// Adjacent reports whether b can follow a in one time step: the time index
// rises by exactly one and every coordinate either holds or advances by
// exactly advance grid steps. There is no reversal and no skipping.
func Adjacent(a, b State, advance int) bool {
	if b.T != a.T+1 {
		return false
	}
	ac, bc := a.Coords(), b.Coords()
	for i := range ac {
		if bc[i] != ac[i] && bc[i] != ac[i]+advance {
			return false
		}
	}
	return true
}

// Successors returns the 16 hold/advance combinations reachable from s in
// one step. Bounds are not checked; callers filter by membership.
func Successors(s State, advance int) [16]State {
	var out [16]State
	c := s.Coords()
	for mask := 0; mask < 16; mask++ {
		var n [4]int
		for i := range c {
			n[i] = c[i]
			if mask&(1<<i) != 0 {
				n[i] += advance
			}
		}
		out[mask] = WithCoords(n, s.T+1)
	}
	return out
}

// Predecessors returns the 16 hold/retreat combinations that could precede
// s. Candidates may have negative coordinates; callers filter by membership.
func Predecessors(s State, advance int) [16]State {
	var out [16]State
	c := s.Coords()
	for mask := 0; mask < 16; mask++ {
		var n [4]int
		for i := range c {
			n[i] = c[i]
			if mask&(1<<i) != 0 {
				n[i] -= advance
			}
		}
		out[mask] = WithCoords(n, s.T-1)
	}
	return out
}
