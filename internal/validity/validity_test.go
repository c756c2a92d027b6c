package validity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daslerpc/mech-checker/internal/grid"
	"github.com/daslerpc/mech-checker/pkg/types"
)

func referenceChecker(t *testing.T, opts ...Option) *Checker {
	t.Helper()
	m, err := grid.New(types.DefaultParams())
	require.NoError(t, err)
	return New(m, opts...)
}

func kinds(vs []Violation) []Kind {
	out := make([]Kind, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Kind)
	}
	return out
}

func TestReferenceStates(t *testing.T) {
	c := referenceChecker(t)

	tests := []struct {
		name  string
		state types.State
		want  []Kind
	}{
		{
			name:  "origin",
			state: types.Origin,
			want:  []Kind{},
		},
		{
			name:  "ahead of the speed limit",
			state: types.State{V0: 1},
			want:  []Kind{SpeedLimit},
		},
		{
			name:  "everyone waited too long",
			state: types.State{T: 17},
			want:  []Kind{DelayExceeded, DelayExceeded, DelayExceeded, DelayExceeded},
		},
		{
			name:  "v0 and h0 meet in the crossing",
			state: types.State{V0: 4, H0: 4, T: 4},
			want:  []Kind{OrthogonalCollision},
		},
		{
			name:  "h0 runs into a vertical guard",
			state: types.State{V0: 20, V1: 7, H0: 10, H1: 23, T: 23},
			want:  []Kind{HorizontalGuardCollision},
		},
		{
			name:  "v0 runs into a horizontal guard",
			state: types.State{V0: 9, T: 9},
			want:  []Kind{VerticalGuardCollision},
		},
		{
			name:  "goal at the earliest time",
			state: types.State{V0: 32, V1: 32, H0: 32, H1: 32, T: 32},
			want:  []Kind{},
		},
		{
			name:  "goal one step too early",
			state: types.State{V0: 32, V1: 32, H0: 32, H1: 32, T: 31},
			want:  []Kind{SpeedLimit, SpeedLimit, SpeedLimit, SpeedLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Explain(tt.state)
			assert.Equal(t, tt.want, kinds(got))
			assert.Equal(t, len(tt.want) == 0, c.Valid(tt.state))
		})
	}
}

func TestTouchingLaneEdgeIsNotACollision(t *testing.T) {
	c := referenceChecker(t)
	// h0 sits exactly on the far edge of lane 0 (14/16 = vehicle length).
	s := types.State{V0: 8, H0: 14, T: 14}
	assert.NotContains(t, kinds(c.Explain(s)), OrthogonalCollision)
}

func TestOriginIsAlwaysLegal(t *testing.T) {
	variants := []types.Params{
		types.DefaultParams(),
		{SpaceSize: "2", Resolution: "0.25", TopSpeed: "1", AllowedDelay: "0"},
		{SpaceSize: "1", Resolution: "0.5", TopSpeed: "2", AllowedDelay: "0.5"},
		{
			SpaceSize: "2", Resolution: "1/8", TopSpeed: "1", AllowedDelay: "1",
			GuardLength: "0.5", VehicleLength: "0.9",
			VerticalGuardOffsets:   []string{"0", "0.5"},
			HorizontalGuardOffsets: []string{"-0.25", "0"},
		},
		{SpaceSize: "3", Resolution: "1/3", TopSpeed: "1", AllowedDelay: "1"},
	}
	for _, p := range variants {
		m, err := grid.New(p)
		require.NoError(t, err)
		c := New(m)
		assert.True(t, c.Valid(types.Origin), "origin must be legal for %+v", p)
		assert.Empty(t, c.Explain(types.Origin))
	}
}

func TestTraceSeesEveryRejection(t *testing.T) {
	var traced []types.State
	c := referenceChecker(t, WithTrace(func(s types.State, vs []Violation) {
		require.NotEmpty(t, vs)
		traced = append(traced, s)
	}))

	assert.True(t, c.Valid(types.Origin))
	assert.False(t, c.Valid(types.State{V0: 1}))
	assert.False(t, c.Valid(types.State{V0: 4, H0: 4, T: 4}))
	assert.Equal(t, []types.State{{V0: 1}, {V0: 4, H0: 4, T: 4}}, traced)
}

func TestFastPathAgreesWithExplain(t *testing.T) {
	p := types.Params{SpaceSize: "2", Resolution: "0.25", TopSpeed: "1", AllowedDelay: "1"}
	m, err := grid.New(p)
	require.NoError(t, err)
	c := New(m)

	n := m.MaxIndex()
	for t0 := 0; t0 <= m.Horizon(); t0++ {
		for v0 := 0; v0 <= n; v0++ {
			for h0 := 0; h0 <= n; h0++ {
				for h1 := 0; h1 <= n; h1 += 2 {
					s := types.State{V0: v0, V1: v0 / 2, H0: h0, H1: h1, T: t0}
					require.Equal(t, len(c.Explain(s)) == 0, c.Valid(s), "state %s", s)
				}
			}
		}
	}
}
