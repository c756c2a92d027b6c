package types

// Space is a time-indexed set of states. The scan and generate search
// strategies are two ways of answering the same adjacency question against
// it: scanning a level or testing generated candidates for membership.
type Space interface {
	// Contains reports whether s is a member of level s.T.
	Contains(s State) bool

	// NeighborsAt returns every state at time index t. The returned slice
	// must not be modified. Out-of-range levels return nil.
	NeighborsAt(t int) []State

	// Horizon returns the largest time index the space covers.
	Horizon() int
}
