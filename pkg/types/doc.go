// Package types defines the state model, the Space membership abstraction,
// pipeline configuration, and the standard errors shared by every mechcheck
// stage.
//
// A State is five integers: two vertical coordinates, two horizontal
// coordinates and a time index. Coordinates are grid indices, never
// positions; the grid package converts them to exact decimals for display
// and I/O.
package types
