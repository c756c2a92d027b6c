// Package statespace builds and prunes time-indexed sets of legal states.
//
// Build enumerates every combination of the four vehicle coordinates at
// every time index and keeps the legal ones. Prune then walks the levels
// forward from the origin and keeps only states with an adjacent
// predecessor in the previous reachable level; the rest are returned as the
// rejected space. Pruning removes forward-unreachable states only, so dead
// ends that cannot reach the goal may remain.
//
// Both stages accept a context and check it between units of work, and both
// can spread work across a bounded number of goroutines.
package statespace
