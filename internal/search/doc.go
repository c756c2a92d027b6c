// Package search enumerates every motion plan through a state space: each
// path that starts at the origin, moves between adjacent states one time
// step at a time, and ends at the first goal state it reaches.
//
// The search is an explicit-stack depth-first walk, so plan length is
// bounded by the horizon rather than by goroutine stack depth. Plans are
// streamed to a types.PlanSink as they are found.
package search
