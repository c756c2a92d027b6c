package types

import "fmt"

// Plan is an ordered sequence of states from the origin to a goal state.
type Plan []State

// Last returns the final state of the plan. It panics on an empty plan.
func (p Plan) Last() State {
	return p[len(p)-1]
}

// Clone returns a copy that does not share backing storage with p.
func (p Plan) Clone() Plan {
	out := make(Plan, len(p))
	copy(out, p)
	return out
}

// Holds counts the coordinate-steps in which a vehicle did not advance.
func (p Plan) Holds() int {
	n := 0
	for i := 1; i < len(p); i++ {
		a, b := p[i-1].Coords(), p[i].Coords()
		for k := range a {
			if a[k] == b[k] {
				n++
			}
		}
	}
	return n
}

// CheckShape verifies the structural plan invariants: the plan starts at the
// origin, ends on the goal, and every consecutive pair is adjacent. It does
// not evaluate state legality.
func (p Plan) CheckShape(goal, advance int) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty plan", ErrInvalidPlan)
	}
	if p[0] != Origin {
		return fmt.Errorf("%w: first state %s is not the origin", ErrInvalidPlan, p[0])
	}
	for i := 1; i < len(p); i++ {
		if !Adjacent(p[i-1], p[i], advance) {
			return fmt.Errorf("%w: step %d %s -> %s is not adjacent", ErrInvalidPlan, i, p[i-1], p[i])
		}
	}
	if !p.Last().IsGoal(goal) {
		return fmt.Errorf("%w: last state %s is not the goal", ErrInvalidPlan, p.Last())
	}
	return nil
}

// PlanSink receives each plan as it is found. The plan slice is only valid
// for the duration of the call; sinks that retain it must Clone it.
type PlanSink func(Plan) error
