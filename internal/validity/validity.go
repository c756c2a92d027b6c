// Package validity decides whether a full intersection state is legal.
//
// A state is illegal when a vertical and a horizontal vehicle overlap in the
// crossing, when a vehicle overlaps a guard vehicle travelling in the
// perpendicular lane, or when a vehicle is ahead of the speed limit or
// further behind it than the allowed delay. Guards always travel at the
// speed limit with no delay; they stand in for the nearest real traffic in
// the perpendicular lane.
//
// All comparisons are strict and run on the grid package's fixed-point
// units, so a vehicle exactly touching a lane edge does not collide.
package validity

import (
	"fmt"

	"github.com/daslerpc/mech-checker/internal/grid"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// Kind classifies a legality violation.
type Kind int

// Violation kinds.
const (
	OrthogonalCollision Kind = iota + 1
	HorizontalGuardCollision
	VerticalGuardCollision
	SpeedLimit
	DelayExceeded
)

func (k Kind) String() string {
	switch k {
	case OrthogonalCollision:
		return "orthogonal collision"
	case HorizontalGuardCollision:
		return "horizontal/guard collision"
	case VerticalGuardCollision:
		return "vertical/guard collision"
	case SpeedLimit:
		return "speed limit"
	case DelayExceeded:
		return "delay exceeded"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Violation is one reason a state is illegal.
type Violation struct {
	Kind   Kind
	Detail string
}

func (v Violation) String() string {
	return v.Kind.String() + ": " + v.Detail
}

// TraceFunc observes every illegal state together with its violations.
type TraceFunc func(s types.State, violations []Violation)

// Option configures a Checker.
type Option func(*Checker)

// WithTrace installs a hook that receives the violations of every state
// judged illegal. Tracing makes Valid compute the full explanation, so it is
// meant for diagnostics, not for bulk enumeration.
func WithTrace(fn TraceFunc) Option {
	return func(c *Checker) { c.trace = fn }
}

// Checker is a pure legality predicate bound to one grid model.
type Checker struct {
	m     *grid.Model
	trace TraceFunc

	vehicleLen int64
	guardLen   int64
	delay      int64
	guardLane  int64
	lanes      [2]int64
	vGuards    [2]int64
	hGuards    [2]int64
}

// New returns a checker for model m.
func New(m *grid.Model, opts ...Option) *Checker {
	c := &Checker{
		m:          m,
		vehicleLen: m.VehicleLengthUnits(),
		guardLen:   m.GuardLengthUnits(),
		delay:      m.DelayUnits(),
		guardLane:  m.GuardLaneUnits(),
		lanes:      [2]int64{m.LaneUnits(0), m.LaneUnits(1)},
		vGuards:    m.VerticalGuardStartUnits(),
		hGuards:    m.HorizontalGuardStartUnits(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the grid model the checker was built for.
func (c *Checker) Model() *grid.Model {
	return c.m
}

// Valid reports whether s is legal.
func (c *Checker) Valid(s types.State) bool {
	if c.trace != nil {
		v := c.Explain(s)
		if len(v) > 0 {
			c.trace(s, v)
			return false
		}
		return true
	}

	travel := c.m.TravelUnits(s.T)
	vert := [2]int64{c.m.Units(s.V0), c.m.Units(s.V1)}
	hor := [2]int64{c.m.Units(s.H0), c.m.Units(s.H1)}

	for _, p := range [4]int64{vert[0], vert[1], hor[0], hor[1]} {
		if p > travel || p < travel-c.delay {
			return false
		}
	}
	if c.orthogonal(vert, hor) {
		return false
	}
	if c.guardHit(hor, c.guardsAt(c.vGuards, travel)) >= 0 {
		return false
	}
	return c.guardHit(vert, c.guardsAt(c.hGuards, travel)) < 0
}

// Explain returns every violation of s, or nil when s is legal.
func (c *Checker) Explain(s types.State) []Violation {
	var out []Violation
	travel := c.m.TravelUnits(s.T)
	vert := [2]int64{c.m.Units(s.V0), c.m.Units(s.V1)}
	hor := [2]int64{c.m.Units(s.H0), c.m.Units(s.H1)}

	for vi := range vert {
		for hi := range hor {
			if c.pairCollides(vert[vi], hor[hi], vi, hi) {
				out = append(out, Violation{
					Kind:   OrthogonalCollision,
					Detail: fmt.Sprintf("v%d and h%d overlap in the crossing", vi, hi),
				})
			}
		}
	}

	vGuards := c.guardsAt(c.vGuards, travel)
	if k := c.guardHit(hor, vGuards); k >= 0 {
		out = append(out, Violation{
			Kind:   HorizontalGuardCollision,
			Detail: fmt.Sprintf("h%d overlaps a vertical guard", k),
		})
	}
	hGuards := c.guardsAt(c.hGuards, travel)
	if k := c.guardHit(vert, hGuards); k >= 0 {
		out = append(out, Violation{
			Kind:   VerticalGuardCollision,
			Detail: fmt.Sprintf("v%d overlaps a horizontal guard", k),
		})
	}

	names := [4]string{"v0", "v1", "h0", "h1"}
	for i, idx := range s.Coords() {
		p := c.m.Units(idx)
		if p > travel {
			out = append(out, Violation{
				Kind: SpeedLimit,
				Detail: fmt.Sprintf("%s at %s is ahead of the speed limit at time %s",
					names[i], c.m.FormatPosition(idx), c.m.FormatTime(s.T)),
			})
		}
		if p < travel-c.delay {
			out = append(out, Violation{
				Kind: DelayExceeded,
				Detail: fmt.Sprintf("%s at %s exceeds the allowed delay at time %s",
					names[i], c.m.FormatPosition(idx), c.m.FormatTime(s.T)),
			})
		}
	}
	return out
}

// intersects reports whether pos lies strictly inside (lane, lane+length).
func intersects(pos, length, lane int64) bool {
	return pos > lane && pos < lane+length
}

func (c *Checker) pairCollides(v, h int64, vi, hi int) bool {
	return intersects(h, c.vehicleLen, c.lanes[vi]) && intersects(v, c.vehicleLen, c.lanes[hi])
}

func (c *Checker) orthogonal(vert, hor [2]int64) bool {
	for vi := range vert {
		for hi := range hor {
			if c.pairCollides(vert[vi], hor[hi], vi, hi) {
				return true
			}
		}
	}
	return false
}

func (c *Checker) guardsAt(start [2]int64, travel int64) [2]int64 {
	return [2]int64{start[0] + travel, start[1] + travel}
}

// guardHit returns the index of the first vehicle overlapping one of the
// perpendicular guards, or -1.
func (c *Checker) guardHit(vehicles, guards [2]int64) int {
	for k, pos := range vehicles {
		for _, g := range guards {
			if intersects(g, c.guardLen, c.lanes[k]) && intersects(pos, c.vehicleLen, c.guardLane) {
				return k
			}
		}
	}
	return -1
}
