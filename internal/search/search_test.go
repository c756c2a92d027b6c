package search

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daslerpc/mech-checker/internal/grid"
	"github.com/daslerpc/mech-checker/internal/statespace"
	"github.com/daslerpc/mech-checker/internal/validity"
	"github.com/daslerpc/mech-checker/pkg/types"
)

type fixture struct {
	model *grid.Model
	check *validity.Checker
	space *statespace.Space
}

func build(t *testing.T, p types.Params) fixture {
	t.Helper()
	m, err := grid.New(p)
	require.NoError(t, err)
	c := validity.New(m)
	valid, err := statespace.Build(context.Background(), c)
	require.NoError(t, err)
	res, err := statespace.Prune(context.Background(), valid, m.Advance())
	require.NoError(t, err)
	return fixture{model: m, check: c, space: res.Reachable}
}

func pointParams(delay string) types.Params {
	return types.Params{
		SpaceSize:     "1",
		Resolution:    "1/2",
		TopSpeed:      "1",
		AllowedDelay:  delay,
		GuardLength:   "0",
		VehicleLength: "0",
	}
}

func collect(t *testing.T, f fixture, opts ...Option) ([]types.Plan, Stats) {
	t.Helper()
	s, err := New(f.space, f.model.GoalIndex(), f.model.Advance(), opts...)
	require.NoError(t, err)
	var plans []types.Plan
	st, err := s.Run(context.Background(), func(p types.Plan) error {
		plans = append(plans, p.Clone())
		return nil
	})
	require.NoError(t, err)
	return plans, st
}

func sortPlans(plans []types.Plan) {
	sort.Slice(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return statespace.Less(a[k], b[k])
			}
		}
		return len(a) < len(b)
	})
}

func TestSinglePlanWithoutDelay(t *testing.T) {
	f := build(t, pointParams("0"))
	plans, st := collect(t, f)

	want := []types.Plan{{
		types.Origin,
		{V0: 1, V1: 1, H0: 1, H1: 1, T: 1},
		{V0: 2, V1: 2, H0: 2, H1: 2, T: 2},
	}}
	if diff := cmp.Diff(want, plans); diff != "" {
		t.Errorf("plans mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, st.Plans)
}

func TestPlansWithDelay(t *testing.T) {
	f := build(t, pointParams("1/2"))
	plans, st := collect(t, f)

	require.Len(t, plans, 81)
	assert.Equal(t, 81, st.Plans)

	byLen := map[int]int{}
	for _, p := range plans {
		byLen[len(p)]++
		require.NoError(t, p.CheckShape(f.model.GoalIndex(), f.model.Advance()))
	}
	assert.Equal(t, map[int]int{3: 1, 4: 80}, byLen)
}

func TestNoPlanWithinShortHorizon(t *testing.T) {
	p := pointParams("0")
	p.Horizon = "0.5"
	f := build(t, p)
	plans, st := collect(t, f)
	assert.Empty(t, plans)
	assert.Zero(t, st.Plans)
}

func TestStrategiesAgree(t *testing.T) {
	f := build(t, types.Params{
		SpaceSize:    "2",
		Resolution:   "1/4",
		TopSpeed:     "1",
		AllowedDelay: "1/4",
	})

	scan, _ := collect(t, f, WithStrategy(types.StrategyScan))
	gen, _ := collect(t, f, WithStrategy(types.StrategyGenerate), WithWorkers(4))
	sortPlans(scan)
	sortPlans(gen)
	if diff := cmp.Diff(scan, gen); diff != "" {
		t.Errorf("scan and generate disagree (-scan +generate):\n%s", diff)
	}
}

func TestPlansAreCompleteAndLegal(t *testing.T) {
	f := build(t, types.Params{
		SpaceSize:    "2",
		Resolution:   "1/4",
		TopSpeed:     "1",
		AllowedDelay: "1/4",
	})
	plans, _ := collect(t, f)

	for _, p := range plans {
		require.NoError(t, p.CheckShape(f.model.GoalIndex(), f.model.Advance()))
		for i, s := range p {
			require.Empty(t, f.check.Explain(s), "state %s", s)
			if i < len(p)-1 {
				require.False(t, s.IsGoal(f.model.GoalIndex()), "plans stop at the first goal")
			}
		}
	}
}

func TestMissingOrigin(t *testing.T) {
	space := statespace.NewSpace(1)
	space.Add(types.State{V0: 1, T: 1})
	s, err := New(space, 1, 1)
	require.NoError(t, err)
	_, err = s.Run(context.Background(), func(types.Plan) error { return nil })
	assert.ErrorIs(t, err, types.ErrMissingOrigin)
}

func TestUnknownStrategy(t *testing.T) {
	_, err := New(statespace.NewSpace(0), 1, 1, WithStrategy("bfs"))
	assert.ErrorIs(t, err, types.ErrStrategyUnknown)
}

func TestSinkErrorStops(t *testing.T) {
	f := build(t, pointParams("1/2"))
	stop := errors.New("stop")

	for _, workers := range []int{1, 4} {
		s, err := New(f.space, f.model.GoalIndex(), f.model.Advance(), WithWorkers(workers))
		require.NoError(t, err)
		calls := 0
		_, err = s.Run(context.Background(), func(types.Plan) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls, "workers=%d", workers)
	}
}

func TestOriginIsGoal(t *testing.T) {
	space := statespace.NewSpace(0)
	space.Add(types.Origin)
	s, err := New(space, 0, 1)
	require.NoError(t, err)
	var got []types.Plan
	st, err := s.Run(context.Background(), func(p types.Plan) error {
		got = append(got, p.Clone())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Plans)
	assert.Equal(t, []types.Plan{{types.Origin}}, got)
}

func TestSequentialProgressPerSubtree(t *testing.T) {
	f := build(t, pointParams("1/2"))
	type event struct{ done, total int }
	var events []event
	s, err := New(f.space, f.model.GoalIndex(), f.model.Advance(),
		WithWorkers(1),
		WithProgress(func(stage string, done, total int) {
			assert.Equal(t, StageSearch, stage)
			events = append(events, event{done, total})
		}))
	require.NoError(t, err)

	st, err := s.Run(context.Background(), func(types.Plan) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 81, st.Plans)

	// Every origin successor, holds included, is legal with point vehicles.
	require.Len(t, events, 16)
	for i, e := range events {
		assert.Equal(t, event{i + 1, 16}, e)
	}
}
