package statespace

import (
	"sort"

	"github.com/daslerpc/mech-checker/pkg/types"
)

// level is one time index: a membership set plus a stable listing.
type level struct {
	set  map[types.State]struct{}
	list []types.State
}

// Space is a write-once collection of states bucketed by time index. It is
// filled by Add and then only read; reads are safe for concurrent use once
// filling is done.
type Space struct {
	levels []level
}

var _ types.Space = (*Space)(nil)

// NewSpace returns an empty space with levels 0..horizon.
func NewSpace(horizon int) *Space {
	s := &Space{levels: make([]level, horizon+1)}
	for i := range s.levels {
		s.levels[i].set = make(map[types.State]struct{})
	}
	return s
}

// Add inserts st into level st.T. It reports false when st is out of range
// or already present.
func (s *Space) Add(st types.State) bool {
	if st.T < 0 || st.T >= len(s.levels) {
		return false
	}
	l := &s.levels[st.T]
	if _, ok := l.set[st]; ok {
		return false
	}
	l.set[st] = struct{}{}
	l.list = append(l.list, st)
	return true
}

// Contains reports whether st is in level st.T.
func (s *Space) Contains(st types.State) bool {
	if st.T < 0 || st.T >= len(s.levels) {
		return false
	}
	_, ok := s.levels[st.T].set[st]
	return ok
}

// NeighborsAt returns the states at time index t.
func (s *Space) NeighborsAt(t int) []types.State {
	if t < 0 || t >= len(s.levels) {
		return nil
	}
	return s.levels[t].list
}

// Horizon returns the largest time index.
func (s *Space) Horizon() int {
	return len(s.levels) - 1
}

// Len returns the number of states across all levels.
func (s *Space) Len() int {
	n := 0
	for _, l := range s.levels {
		n += len(l.list)
	}
	return n
}

// LevelSizes returns the number of states at each time index.
func (s *Space) LevelSizes() []int {
	out := make([]int, len(s.levels))
	for i, l := range s.levels {
		out[i] = len(l.list)
	}
	return out
}

// Sort orders every level by coordinates so that output is deterministic.
func (s *Space) Sort() {
	for i := range s.levels {
		sortStates(s.levels[i].list)
	}
}

// Equal reports whether both spaces hold the same states at every level.
func (s *Space) Equal(o *Space) bool {
	if len(s.levels) != len(o.levels) {
		return false
	}
	for i := range s.levels {
		if len(s.levels[i].set) != len(o.levels[i].set) {
			return false
		}
		for st := range s.levels[i].set {
			if _, ok := o.levels[i].set[st]; !ok {
				return false
			}
		}
	}
	return true
}

func sortStates(list []types.State) {
	sort.Slice(list, func(i, j int) bool {
		return Less(list[i], list[j])
	})
}

// Less orders states by time index, then v0, v1, h0, h1.
func Less(a, b types.State) bool {
	if a.T != b.T {
		return a.T < b.T
	}
	ac, bc := a.Coords(), b.Coords()
	for k := range ac {
		if ac[k] != bc[k] {
			return ac[k] < bc[k]
		}
	}
	return false
}
