package types

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Params holds the physical and discretization parameters of a run. Values
// are exact rationals written as decimals ("0.0625") or fractions ("1/16").
// Optional fields left empty take the defaults derived by the grid package.
type Params struct {
	SpaceSize    string `json:"space_size" yaml:"space_size" mapstructure:"space_size"`
	Goal         string `json:"goal,omitempty" yaml:"goal,omitempty" mapstructure:"goal"`
	Resolution   string `json:"resolution" yaml:"resolution" mapstructure:"resolution"`
	TopSpeed     string `json:"top_speed" yaml:"top_speed" mapstructure:"top_speed"`
	AllowedDelay string `json:"allowed_delay" yaml:"allowed_delay" mapstructure:"allowed_delay"`
	Horizon      string `json:"horizon,omitempty" yaml:"horizon,omitempty" mapstructure:"horizon"`

	GuardLength            string   `json:"guard_length,omitempty" yaml:"guard_length,omitempty" mapstructure:"guard_length"`
	VehicleLength          string   `json:"vehicle_length,omitempty" yaml:"vehicle_length,omitempty" mapstructure:"vehicle_length"`
	VerticalGuardOffsets   []string `json:"vertical_guard_offsets,omitempty" yaml:"vertical_guard_offsets,omitempty" mapstructure:"vertical_guard_offsets"`
	HorizontalGuardOffsets []string `json:"horizontal_guard_offsets,omitempty" yaml:"horizontal_guard_offsets,omitempty" mapstructure:"horizontal_guard_offsets"`
}

// DefaultParams returns the reference crossing: a 2x2 space at resolution
// 1/16 with unit speed and one unit of allowed delay.
func DefaultParams() Params {
	return Params{
		SpaceSize:    "2.0",
		Resolution:   "1/16",
		TopSpeed:     "1.0",
		AllowedDelay: "1.0",
	}
}

// Config holds pipeline parameters plus execution settings.
type Config struct {
	Params   Params `json:"params" yaml:"params" mapstructure:"params"`
	DataDir  string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Workers  int    `json:"workers" yaml:"workers" mapstructure:"workers"`
	Strategy string `json:"strategy" yaml:"strategy" mapstructure:"strategy"`
}

// Search strategies.
const (
	StrategyScan     = "scan"
	StrategyGenerate = "generate"
)

// knownStrategies lists the strategies that Validate accepts.
var knownStrategies = map[string]bool{
	StrategyScan:     true,
	StrategyGenerate: true,
}

// Config validation errors.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrParamMissing     = fmt.Errorf("%w: required parameter missing", ErrInvalidConfig)
	ErrParamNotRational = fmt.Errorf("%w: parameter is not a rational number", ErrInvalidConfig)
	ErrParamOutOfRange  = fmt.Errorf("%w: parameter out of range", ErrInvalidConfig)
	ErrStrategyUnknown  = fmt.Errorf("%w: unknown search strategy", ErrInvalidConfig)
	ErrWorkersInvalid   = fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	ErrGuardOffsets     = fmt.Errorf("%w: guard offsets need exactly two values", ErrInvalidConfig)
)

// ParseRat parses a decimal or fraction into an exact rational. File names
// spell fractions with "r" instead of "/", so "1r3" is accepted too.
func ParseRat(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrParamMissing
	}
	r, ok := new(big.Rat).SetString(strings.Replace(s, "r", "/", 1))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrParamNotRational, s)
	}
	return r, nil
}

// Validate checks that every parameter is present where required and parses
// as a rational in range. Grid alignment is checked by the grid package.
func (p Params) Validate() error {
	required := []struct {
		name, value string
		allowZero   bool
	}{
		{"space_size", p.SpaceSize, false},
		{"resolution", p.Resolution, false},
		{"top_speed", p.TopSpeed, false},
		{"allowed_delay", p.AllowedDelay, true},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrParamMissing, f.name)
		}
		if err := checkNonNegative(f.name, f.value, f.allowZero); err != nil {
			return err
		}
	}

	optional := []struct{ name, value string }{
		{"goal", p.Goal},
		{"horizon", p.Horizon},
		{"guard_length", p.GuardLength},
		{"vehicle_length", p.VehicleLength},
	}
	for _, f := range optional {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		if err := checkNonNegative(f.name, f.value, true); err != nil {
			return err
		}
	}

	for _, offs := range [][]string{p.VerticalGuardOffsets, p.HorizontalGuardOffsets} {
		if len(offs) == 0 {
			continue
		}
		if len(offs) != 2 {
			return ErrGuardOffsets
		}
		for _, o := range offs {
			if _, err := ParseRat(o); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkNonNegative(name, value string, allowZero bool) error {
	r, err := ParseRat(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if r.Sign() < 0 || (!allowZero && r.Sign() == 0) {
		return fmt.Errorf("%w: %s = %s", ErrParamOutOfRange, name, value)
	}
	return nil
}

// Validate checks the execution settings and the parameters.
func (c Config) Validate() error {
	if c.Strategy != "" && !knownStrategies[c.Strategy] {
		return fmt.Errorf("%w: %q", ErrStrategyUnknown, c.Strategy)
	}
	if c.Workers < 0 {
		return ErrWorkersInvalid
	}
	return c.Params.Validate()
}
