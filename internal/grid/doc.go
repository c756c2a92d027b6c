// Package grid discretizes the crossing: it maps grid and time indices to
// exact positions and times, derives the grid bounds and horizon, and
// expresses every geometric constant in a shared fixed-point unit so that
// legality and adjacency comparisons are exact integer comparisons.
//
// Positions are kept as math/big.Rat at the edges (parsing, formatting, file
// names) and as int64 multiples of 1/Scale() everywhere else. Scale is the
// least common multiple of the denominators of every configured rational,
// so each conversion is exact.
package grid
