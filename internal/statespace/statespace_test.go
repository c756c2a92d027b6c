package statespace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daslerpc/mech-checker/internal/grid"
	"github.com/daslerpc/mech-checker/internal/validity"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// pointChecker models vehicles with no length, so only the speed envelope
// constrains states.
func pointChecker(t *testing.T, delay string) *validity.Checker {
	t.Helper()
	m, err := grid.New(types.Params{
		SpaceSize:     "1",
		Resolution:    "1/2",
		TopSpeed:      "1",
		AllowedDelay:  delay,
		GuardLength:   "0",
		VehicleLength: "0",
	})
	require.NoError(t, err)
	return validity.New(m)
}

// smallChecker uses the default geometry on a coarse grid.
func smallChecker(t *testing.T) *validity.Checker {
	t.Helper()
	m, err := grid.New(types.Params{
		SpaceSize:    "2",
		Resolution:   "1/4",
		TopSpeed:     "1",
		AllowedDelay: "1/4",
	})
	require.NoError(t, err)
	return validity.New(m)
}

func TestSpaceAddContains(t *testing.T) {
	s := NewSpace(2)
	a := types.State{V0: 1, T: 1}

	assert.True(t, s.Add(a))
	assert.False(t, s.Add(a), "duplicate")
	assert.False(t, s.Add(types.State{T: 3}), "beyond horizon")
	assert.False(t, s.Add(types.State{T: -1}))

	assert.True(t, s.Contains(a))
	assert.False(t, s.Contains(types.State{V0: 1, T: 2}), "membership is per level")
	assert.Nil(t, s.NeighborsAt(5))
	assert.Equal(t, []int{0, 1, 0}, s.LevelSizes())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, s.Horizon())
}

func TestSpaceSortAndEqual(t *testing.T) {
	a, b := NewSpace(1), NewSpace(1)
	states := []types.State{{V0: 1, T: 1}, {H1: 1, T: 1}, types.Origin}
	for i := range states {
		a.Add(states[i])
		b.Add(states[len(states)-1-i])
	}
	assert.True(t, a.Equal(b))

	a.Sort()
	assert.Equal(t, []types.State{{H1: 1, T: 1}, {V0: 1, T: 1}}, a.NeighborsAt(1))

	b.Add(types.State{V1: 1, T: 1})
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(NewSpace(2)))
}

func TestBuildPointVehicles(t *testing.T) {
	valid, err := Build(context.Background(), pointChecker(t, "0"))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1, 1}, valid.LevelSizes())
	assert.True(t, valid.Contains(types.Origin))
	assert.True(t, valid.Contains(types.State{V0: 1, V1: 1, H0: 1, H1: 1, T: 1}))
	assert.True(t, valid.Contains(types.State{V0: 2, V1: 2, H0: 2, H1: 2, T: 2}))
}

func TestBuildWithDelay(t *testing.T) {
	valid, err := Build(context.Background(), pointChecker(t, "1/2"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 16, 16, 1}, valid.LevelSizes())
}

func TestBuildIndependentOfWorkers(t *testing.T) {
	c := smallChecker(t)
	one, err := Build(context.Background(), c, WithWorkers(1))
	require.NoError(t, err)
	four, err := Build(context.Background(), c, WithWorkers(4))
	require.NoError(t, err)

	assert.True(t, one.Equal(four))
	for lvl := 0; lvl <= one.Horizon(); lvl++ {
		assert.Equal(t, one.NeighborsAt(lvl), four.NeighborsAt(lvl), "level %d order", lvl)
	}
	assert.True(t, one.Contains(types.Origin))
}

func TestBuildOnlyValidStates(t *testing.T) {
	c := smallChecker(t)
	valid, err := Build(context.Background(), c)
	require.NoError(t, err)
	for lvl := 0; lvl <= valid.Horizon(); lvl++ {
		for _, s := range valid.NeighborsAt(lvl) {
			require.Empty(t, c.Explain(s), "state %s", s)
		}
	}
}

func TestBuildReportsProgress(t *testing.T) {
	var last, total int
	_, err := Build(context.Background(), pointChecker(t, "0"), WithWorkers(1),
		WithProgress(func(stage string, done, n int) {
			assert.Equal(t, StageBuild, stage)
			last, total = done, n
		}))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, last)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, smallChecker(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPruneRemovesUnreachable(t *testing.T) {
	valid := NewSpace(2)
	for _, s := range []types.State{
		types.Origin,
		{V0: 1, V1: 1, H0: 1, H1: 1, T: 1},
		{T: 1},
		{V0: 2, V1: 2, H0: 2, H1: 2, T: 2},
		{V1: 2, T: 2},
	} {
		require.True(t, valid.Add(s))
	}

	for _, strategy := range []string{types.StrategyScan, types.StrategyGenerate} {
		t.Run(strategy, func(t *testing.T) {
			res, err := Prune(context.Background(), valid, 1, WithStrategy(strategy))
			require.NoError(t, err)

			assert.Equal(t, []types.State{{V1: 2, T: 2}}, res.Rejected.NeighborsAt(2))
			assert.True(t, res.Reachable.Contains(types.State{T: 1}), "dead ends are kept")
			assert.Equal(t, Stats{Began: 5, Ended: 4, Pruned: 1}, res.Stats)
			assert.InDelta(t, 20.0, res.Stats.Reduction(), 1e-9)
		})
	}
}

func TestPruneMissingOrigin(t *testing.T) {
	valid := NewSpace(1)
	valid.Add(types.State{V0: 1, T: 1})
	_, err := Prune(context.Background(), valid, 1)
	assert.ErrorIs(t, err, types.ErrMissingOrigin)
}

func TestPruneUnknownStrategy(t *testing.T) {
	valid := NewSpace(0)
	valid.Add(types.Origin)
	_, err := Prune(context.Background(), valid, 1, WithStrategy("bogus"))
	assert.ErrorIs(t, err, types.ErrStrategyUnknown)
}

func TestPruneKeepsFullyConnectedSpace(t *testing.T) {
	valid, err := Build(context.Background(), pointChecker(t, "1/2"))
	require.NoError(t, err)

	res, err := Prune(context.Background(), valid, 1)
	require.NoError(t, err)
	assert.Equal(t, 34, res.Stats.Began)
	assert.Zero(t, res.Stats.Pruned)
	assert.True(t, res.Reachable.Equal(valid))
}

func TestPruneInvariants(t *testing.T) {
	c := smallChecker(t)
	advance := c.Model().Advance()
	valid, err := Build(context.Background(), c)
	require.NoError(t, err)

	scan, err := Prune(context.Background(), valid, advance, WithStrategy(types.StrategyScan), WithWorkers(1))
	require.NoError(t, err)
	gen, err := Prune(context.Background(), valid, advance, WithStrategy(types.StrategyGenerate), WithWorkers(4))
	require.NoError(t, err)
	require.True(t, scan.Reachable.Equal(gen.Reachable), "strategies agree")
	require.True(t, scan.Rejected.Equal(gen.Rejected))

	reach := gen.Reachable
	for lvl := 0; lvl <= reach.Horizon(); lvl++ {
		for _, s := range reach.NeighborsAt(lvl) {
			require.True(t, valid.Contains(s), "reachable is a subset of valid")
			if lvl == 0 {
				continue
			}
			found := false
			for _, p := range reach.NeighborsAt(lvl - 1) {
				if types.Adjacent(p, s, advance) {
					found = true
					break
				}
			}
			require.True(t, found, "%s has a reachable predecessor", s)
		}
		for _, s := range gen.Rejected.NeighborsAt(lvl) {
			require.False(t, reach.Contains(s))
			for _, p := range types.Predecessors(s, advance) {
				require.False(t, reach.Contains(p), "%s was rejected with reachable predecessor %s", s, p)
			}
		}
		assert.Equal(t, len(valid.NeighborsAt(lvl)),
			len(reach.NeighborsAt(lvl))+len(gen.Rejected.NeighborsAt(lvl)), "level %d partitions", lvl)
	}
}

func TestPruneIdempotent(t *testing.T) {
	c := smallChecker(t)
	valid, err := Build(context.Background(), c)
	require.NoError(t, err)

	first, err := Prune(context.Background(), valid, c.Model().Advance())
	require.NoError(t, err)
	second, err := Prune(context.Background(), first.Reachable, c.Model().Advance())
	require.NoError(t, err)

	assert.Zero(t, second.Stats.Pruned)
	assert.True(t, first.Reachable.Equal(second.Reachable))
}

func TestPruneCancelled(t *testing.T) {
	valid, err := Build(context.Background(), pointChecker(t, "1/2"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Prune(ctx, valid, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
