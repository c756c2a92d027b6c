package grid

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/daslerpc/mech-checker/pkg/types"
)

// Lane positions on the orthogonal axis. Vehicle k drives in lane k; guards
// are checked against the band that starts half a unit in.
var (
	guardLane = big.NewRat(1, 2)
	laneWidth = big.NewRat(1, 1)
)

// Model is an immutable discretization built from types.Params.
type Model struct {
	params types.Params

	resolution *big.Rat
	spaceSize  *big.Rat
	topSpeed   *big.Rat
	delay      *big.Rat
	goal       *big.Rat
	horizon    *big.Rat
	guardLen   *big.Rat
	vehicleLen *big.Rat
	vGuards    [2]*big.Rat
	hGuards    [2]*big.Rat

	maxIndex  int
	maxTime   int
	goalIndex int
	advance   int

	scale      int64
	resU       int64
	stepU      int64
	delayU     int64
	guardLenU  int64
	vehicleU   int64
	vGuardsU   [2]int64
	hGuardsU   [2]int64
	laneU      int64
	guardLaneU int64
}

// New validates p and derives the discretization. Optional parameters take
// their defaults: goal = space size, horizon = space/speed + delay, guard
// length = 2 x resolution, vehicle length = 1 - guard length, vertical guard
// offsets [-1.5+guard, -0.5+guard], horizontal guard offsets [-1.5, -0.5].
func New(p types.Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := &Model{}
	var err error
	if m.resolution, err = types.ParseRat(p.Resolution); err != nil {
		return nil, err
	}
	if m.spaceSize, err = types.ParseRat(p.SpaceSize); err != nil {
		return nil, err
	}
	if m.topSpeed, err = types.ParseRat(p.TopSpeed); err != nil {
		return nil, err
	}
	if m.delay, err = types.ParseRat(p.AllowedDelay); err != nil {
		return nil, err
	}

	m.goal = new(big.Rat).Set(m.spaceSize)
	if p.Goal != "" {
		if m.goal, err = types.ParseRat(p.Goal); err != nil {
			return nil, err
		}
	}

	if p.Horizon != "" {
		if m.horizon, err = types.ParseRat(p.Horizon); err != nil {
			return nil, err
		}
	} else {
		m.horizon = new(big.Rat).Quo(m.spaceSize, m.topSpeed)
		m.horizon.Add(m.horizon, m.delay)
	}

	m.guardLen = new(big.Rat).Mul(big.NewRat(2, 1), m.resolution)
	if p.GuardLength != "" {
		if m.guardLen, err = types.ParseRat(p.GuardLength); err != nil {
			return nil, err
		}
	}
	m.vehicleLen = new(big.Rat).Sub(big.NewRat(1, 1), m.guardLen)
	if p.VehicleLength != "" {
		if m.vehicleLen, err = types.ParseRat(p.VehicleLength); err != nil {
			return nil, err
		}
	}
	if m.vehicleLen.Sign() < 0 {
		return nil, fmt.Errorf("%w: vehicle length %s", types.ErrParamOutOfRange, FormatRat(m.vehicleLen))
	}

	if m.vGuards, err = guardOffsets(p.VerticalGuardOffsets, m.guardLen); err != nil {
		return nil, err
	}
	if m.hGuards, err = guardOffsets(p.HorizontalGuardOffsets, new(big.Rat)); err != nil {
		return nil, err
	}

	// One advance covers resolution*topSpeed, which must be a whole number
	// of grid steps for adjacency to stay on the grid.
	adv := new(big.Rat).Set(m.topSpeed)
	if !adv.IsInt() || !adv.Num().IsInt64() {
		return nil, fmt.Errorf("%w: %w: top speed %s is not a whole number of grid steps per time step",
			types.ErrInvalidConfig, types.ErrNotGridAligned, FormatRat(m.topSpeed))
	}
	m.advance = int(adv.Num().Int64())

	m.maxIndex = ceilQuo(m.spaceSize, m.resolution)
	m.maxTime = ceilQuo(m.horizon, m.resolution)
	if m.goalIndex, err = m.IndexOf(m.goal); err != nil {
		return nil, fmt.Errorf("%w: goal: %w", types.ErrInvalidConfig, err)
	}

	if err := m.deriveUnits(); err != nil {
		return nil, err
	}

	m.params = types.Params{
		SpaceSize:              FormatRat(m.spaceSize),
		Goal:                   FormatRat(m.goal),
		Resolution:             FormatRat(m.resolution),
		TopSpeed:               FormatRat(m.topSpeed),
		AllowedDelay:           FormatRat(m.delay),
		Horizon:                FormatRat(m.horizon),
		GuardLength:            FormatRat(m.guardLen),
		VehicleLength:          FormatRat(m.vehicleLen),
		VerticalGuardOffsets:   []string{FormatRat(m.vGuards[0]), FormatRat(m.vGuards[1])},
		HorizontalGuardOffsets: []string{FormatRat(m.hGuards[0]), FormatRat(m.hGuards[1])},
	}
	return m, nil
}

func guardOffsets(raw []string, shift *big.Rat) ([2]*big.Rat, error) {
	var out [2]*big.Rat
	if len(raw) == 0 {
		out[0] = new(big.Rat).Add(big.NewRat(-3, 2), shift)
		out[1] = new(big.Rat).Add(big.NewRat(-1, 2), shift)
		return out, nil
	}
	for i, s := range raw {
		r, err := types.ParseRat(s)
		if err != nil {
			return out, err
		}
		out[i] = r
	}
	return out, nil
}

// deriveUnits picks the common fixed-point scale and converts every
// geometric quantity to it.
func (m *Model) deriveUnits() error {
	step := new(big.Rat).Mul(m.resolution, m.topSpeed)
	quantities := []*big.Rat{
		m.resolution, step, m.delay, m.guardLen, m.vehicleLen,
		m.vGuards[0], m.vGuards[1], m.hGuards[0], m.hGuards[1],
		guardLane, laneWidth,
	}

	lcm := big.NewInt(1)
	for _, q := range quantities {
		d := q.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	if !lcm.IsInt64() {
		return fmt.Errorf("%w: fixed-point scale overflows int64", types.ErrParamOutOfRange)
	}
	m.scale = lcm.Int64()

	conv := func(q *big.Rat) (int64, error) {
		v := new(big.Rat).Mul(q, new(big.Rat).SetInt64(m.scale))
		if !v.IsInt() || !v.Num().IsInt64() {
			return 0, fmt.Errorf("%w: %s does not fit the fixed-point scale", types.ErrParamOutOfRange, FormatRat(q))
		}
		return v.Num().Int64(), nil
	}

	targets := []struct {
		q   *big.Rat
		dst *int64
	}{
		{m.resolution, &m.resU},
		{step, &m.stepU},
		{m.delay, &m.delayU},
		{m.guardLen, &m.guardLenU},
		{m.vehicleLen, &m.vehicleU},
		{m.vGuards[0], &m.vGuardsU[0]},
		{m.vGuards[1], &m.vGuardsU[1]},
		{m.hGuards[0], &m.hGuardsU[0]},
		{m.hGuards[1], &m.hGuardsU[1]},
		{laneWidth, &m.laneU},
		{guardLane, &m.guardLaneU},
	}
	for _, t := range targets {
		v, err := conv(t.q)
		if err != nil {
			return err
		}
		*t.dst = v
	}
	return nil
}

// ceilQuo returns ceil(a/b) for positive b.
func ceilQuo(a, b *big.Rat) int {
	q := new(big.Rat).Quo(a, b)
	n := new(big.Int).Set(q.Num())
	d := q.Denom()
	if q.Sign() <= 0 {
		return int(new(big.Int).Quo(n, d).Int64())
	}
	n.Add(n, d)
	n.Sub(n, big.NewInt(1))
	return int(n.Quo(n, d).Int64())
}

// PositionOf returns the exact position of grid index i.
func (m *Model) PositionOf(i int) *big.Rat {
	return new(big.Rat).Mul(big.NewRat(int64(i), 1), m.resolution)
}

// IndexOf returns the grid index of pos. It fails with ErrNotGridAligned
// if pos is not a whole multiple of the resolution or lies outside [0, N].
func (m *Model) IndexOf(pos *big.Rat) (int, error) {
	i, err := m.steps(pos)
	if err != nil {
		return 0, err
	}
	if i < 0 || i > m.maxIndex {
		return 0, fmt.Errorf("%w: position %s outside [0, %s]", types.ErrNotGridAligned,
			FormatRat(pos), FormatRat(m.PositionOf(m.maxIndex)))
	}
	return i, nil
}

// TimeOf returns the exact time of time index t.
func (m *Model) TimeOf(t int) *big.Rat {
	return m.PositionOf(t)
}

// TimeIndexOf returns the time index of time. It fails with
// ErrNotGridAligned if time is not a multiple of the resolution or lies
// outside [0, horizon].
func (m *Model) TimeIndexOf(time *big.Rat) (int, error) {
	t, err := m.steps(time)
	if err != nil {
		return 0, err
	}
	if t < 0 || t > m.maxTime {
		return 0, fmt.Errorf("%w: time %s outside [0, %s]", types.ErrNotGridAligned,
			FormatRat(time), FormatRat(m.TimeOf(m.maxTime)))
	}
	return t, nil
}

func (m *Model) steps(v *big.Rat) (int, error) {
	q := new(big.Rat).Quo(v, m.resolution)
	if !q.IsInt() || !q.Num().IsInt64() {
		return 0, fmt.Errorf("%w: %s is not a multiple of %s", types.ErrNotGridAligned,
			FormatRat(v), FormatRat(m.resolution))
	}
	return int(q.Num().Int64()), nil
}

// MaxIndex returns N, the largest grid index.
func (m *Model) MaxIndex() int { return m.maxIndex }

// Horizon returns T, the largest time index.
func (m *Model) Horizon() int { return m.maxTime }

// GoalIndex returns the grid index every vehicle must reach.
func (m *Model) GoalIndex() int { return m.goalIndex }

// Advance returns the number of grid steps a vehicle moves in one time step
// at top speed.
func (m *Model) Advance() int { return m.advance }

// Params returns the normalized parameters with every default filled in.
func (m *Model) Params() types.Params {
	p := m.params
	p.VerticalGuardOffsets = append([]string(nil), m.params.VerticalGuardOffsets...)
	p.HorizontalGuardOffsets = append([]string(nil), m.params.HorizontalGuardOffsets...)
	return p
}

// Fingerprint returns a canonical string of every parameter that affects
// legality. Two models with equal fingerprints build identical spaces.
func (m *Model) Fingerprint() string {
	p := m.params
	return strings.Join([]string{
		"space=" + p.SpaceSize,
		"goal=" + p.Goal,
		"res=" + p.Resolution,
		"speed=" + p.TopSpeed,
		"delay=" + p.AllowedDelay,
		"horizon=" + p.Horizon,
		"guard=" + p.GuardLength,
		"vehicle=" + p.VehicleLength,
		"vguards=" + strings.Join(p.VerticalGuardOffsets, ":"),
		"hguards=" + strings.Join(p.HorizontalGuardOffsets, ":"),
	}, ";")
}

// Contains reports whether every coordinate and the time index of s lie on
// the grid.
func (m *Model) Contains(s types.State) bool {
	for _, c := range s.Coords() {
		if c < 0 || c > m.maxIndex {
			return false
		}
	}
	return s.T >= 0 && s.T <= m.maxTime
}

// IsGoal reports whether s is a goal state.
func (m *Model) IsGoal(s types.State) bool {
	return s.IsGoal(m.goalIndex)
}

// Adjacent applies the one-step transition rule with this model's advance.
func (m *Model) Adjacent(a, b types.State) bool {
	return types.Adjacent(a, b, m.advance)
}

// Resolution returns the grid step in both space and time.
func (m *Model) Resolution() *big.Rat { return new(big.Rat).Set(m.resolution) }

// GoalPosition returns the goal coordinate.
func (m *Model) GoalPosition() *big.Rat { return new(big.Rat).Set(m.goal) }

// HorizonTime returns the time by which every vehicle must reach the goal.
func (m *Model) HorizonTime() *big.Rat { return new(big.Rat).Set(m.horizon) }

// TopSpeed returns the speed limit.
func (m *Model) TopSpeed() *big.Rat { return new(big.Rat).Set(m.topSpeed) }
