package grid

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daslerpc/mech-checker/pkg/types"
)

func TestNewReferenceModel(t *testing.T) {
	m, err := New(types.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, 32, m.MaxIndex())
	assert.Equal(t, 48, m.Horizon(), "horizon 3.0 at 1/16 gives 49 time indices")
	assert.Equal(t, 32, m.GoalIndex())
	assert.Equal(t, 1, m.Advance())
	assert.Equal(t, int64(16), m.Scale())

	assert.Equal(t, int64(2), m.GuardLengthUnits())
	assert.Equal(t, int64(14), m.VehicleLengthUnits())
	assert.Equal(t, [2]int64{-22, -6}, m.VerticalGuardStartUnits())
	assert.Equal(t, [2]int64{-24, -8}, m.HorizontalGuardStartUnits())
	assert.Equal(t, int64(8), m.GuardLaneUnits())
	assert.Equal(t, int64(16), m.LaneUnits(1))
	assert.Equal(t, int64(16), m.DelayUnits())

	p := m.Params()
	assert.Equal(t, "3.0", p.Horizon)
	assert.Equal(t, "2.0", p.Goal)
	assert.Equal(t, "0.0625", p.Resolution)
	assert.Equal(t, "0.125", p.GuardLength)
	assert.Equal(t, "0.875", p.VehicleLength)
	assert.Equal(t, []string{"-1.375", "-0.375"}, p.VerticalGuardOffsets)
}

func TestIndexOf(t *testing.T) {
	m, err := New(types.DefaultParams())
	require.NoError(t, err)

	tests := []struct {
		name    string
		pos     *big.Rat
		want    int
		wantErr error
	}{
		{"zero", big.NewRat(0, 1), 0, nil},
		{"one step", big.NewRat(1, 16), 1, nil},
		{"goal", big.NewRat(2, 1), 32, nil},
		{"half", big.NewRat(1, 2), 8, nil},
		{"between steps", big.NewRat(1, 32), 0, types.ErrNotGridAligned},
		{"beyond grid", big.NewRat(33, 16), 0, types.ErrNotGridAligned},
		{"negative", big.NewRat(-1, 16), 0, types.ErrNotGridAligned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.IndexOf(tt.pos)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 0, m.PositionOf(got).Cmp(tt.pos))
		})
	}
}

func TestTimeIndexOf(t *testing.T) {
	m, err := New(types.DefaultParams())
	require.NoError(t, err)

	got, err := m.TimeIndexOf(big.NewRat(3, 1))
	require.NoError(t, err)
	assert.Equal(t, 48, got)

	_, err = m.TimeIndexOf(big.NewRat(49, 16))
	assert.ErrorIs(t, err, types.ErrNotGridAligned)

	idx, err := m.ParseTimeIndex("2.0")
	require.NoError(t, err)
	assert.Equal(t, 32, idx)
}

func TestNewRejectsBadParams(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.Params)
		wantErr error
	}{
		{"missing resolution", func(p *types.Params) { p.Resolution = "" }, types.ErrParamMissing},
		{"zero speed", func(p *types.Params) { p.TopSpeed = "0" }, types.ErrParamOutOfRange},
		{"negative delay", func(p *types.Params) { p.AllowedDelay = "-1" }, types.ErrParamOutOfRange},
		{"garbage", func(p *types.Params) { p.SpaceSize = "two" }, types.ErrParamNotRational},
		{"fractional advance", func(p *types.Params) { p.TopSpeed = "1.5" }, types.ErrNotGridAligned},
		{"unaligned goal", func(p *types.Params) { p.Goal = "1/3" }, types.ErrNotGridAligned},
		{"one guard offset", func(p *types.Params) { p.VerticalGuardOffsets = []string{"-1"} }, types.ErrGuardOffsets},
		{"guard longer than a lane", func(p *types.Params) { p.GuardLength = "1.5" }, types.ErrParamOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := types.DefaultParams()
			tt.mutate(&p)
			_, err := New(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, types.ErrInvalidConfig, "all parameter errors classify as invalid configuration")
		})
	}
}

func TestExplicitHorizonAndGoal(t *testing.T) {
	p := types.Params{
		SpaceSize:    "1",
		Goal:         "0.5",
		Resolution:   "0.25",
		TopSpeed:     "1",
		AllowedDelay: "0",
		Horizon:      "0.5",
	}
	m, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, 4, m.MaxIndex())
	assert.Equal(t, 2, m.GoalIndex())
	assert.Equal(t, 2, m.Horizon())
}

func TestAdvanceFromSpeed(t *testing.T) {
	p := types.DefaultParams()
	p.TopSpeed = "2"
	p.Horizon = ""
	m, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Advance())
	assert.Equal(t, int64(2), m.TravelUnits(1))
	assert.Equal(t, 32, m.Horizon(), "2/2 + 1 = 2.0 -> 32 steps")
}

func TestFormatRat(t *testing.T) {
	tests := []struct {
		in   *big.Rat
		want string
	}{
		{big.NewRat(2, 1), "2.0"},
		{big.NewRat(0, 1), "0.0"},
		{big.NewRat(1, 16), "0.0625"},
		{big.NewRat(-11, 8), "-1.375"},
		{big.NewRat(1, 10), "0.1"},
		{big.NewRat(1, 3), "1/3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRat(tt.in))
		})
	}
	assert.Equal(t, "1r3", FileToken(big.NewRat(1, 3)))
}

func TestFingerprintStable(t *testing.T) {
	a, err := New(types.DefaultParams())
	require.NoError(t, err)

	p := types.DefaultParams()
	p.Resolution = "0.0625"
	p.Horizon = "3"
	b, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "equivalent spellings normalize to one fingerprint")

	p.AllowedDelay = "0.5"
	c, err := New(p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}
