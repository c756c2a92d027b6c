package types

import (
	"errors"
	"math/big"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	base := DefaultParams()
	with := func(fn func(*Params)) Params {
		p := base
		fn(&p)
		return p
	}

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "reference parameters are valid",
			config:  Config{Params: base, Strategy: StrategyGenerate},
			wantErr: nil,
		},
		{
			name:    "empty strategy is valid at config level",
			config:  Config{Params: base},
			wantErr: nil,
		},
		{
			name:    "unknown strategy returns ErrStrategyUnknown",
			config:  Config{Params: base, Strategy: "bfs"},
			wantErr: ErrStrategyUnknown,
		},
		{
			name:    "negative workers returns ErrWorkersInvalid",
			config:  Config{Params: base, Workers: -1},
			wantErr: ErrWorkersInvalid,
		},
		{
			name:    "missing resolution returns ErrParamMissing",
			config:  Config{Params: with(func(p *Params) { p.Resolution = "" })},
			wantErr: ErrParamMissing,
		},
		{
			name:    "zero space size returns ErrParamOutOfRange",
			config:  Config{Params: with(func(p *Params) { p.SpaceSize = "0" })},
			wantErr: ErrParamOutOfRange,
		},
		{
			name:    "zero delay is valid",
			config:  Config{Params: with(func(p *Params) { p.AllowedDelay = "0" })},
			wantErr: nil,
		},
		{
			name:    "negative delay returns ErrParamOutOfRange",
			config:  Config{Params: with(func(p *Params) { p.AllowedDelay = "-0.5" })},
			wantErr: ErrParamOutOfRange,
		},
		{
			name:    "garbage speed returns ErrParamNotRational",
			config:  Config{Params: with(func(p *Params) { p.TopSpeed = "fast" })},
			wantErr: ErrParamNotRational,
		},
		{
			name:    "three guard offsets returns ErrGuardOffsets",
			config:  Config{Params: with(func(p *Params) { p.HorizontalGuardOffsets = []string{"-1", "0", "1"} })},
			wantErr: ErrGuardOffsets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected %v to wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseRat(t *testing.T) {
	tests := []struct {
		in   string
		want *big.Rat
	}{
		{"0.0625", big.NewRat(1, 16)},
		{"1/16", big.NewRat(1, 16)},
		{"1r3", big.NewRat(1, 3)},
		{" 2.0 ", big.NewRat(2, 1)},
	}
	for _, tt := range tests {
		got, err := ParseRat(tt.in)
		if err != nil {
			t.Fatalf("ParseRat(%q): %v", tt.in, err)
		}
		if got.Cmp(tt.want) != 0 {
			t.Errorf("ParseRat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseRat(""); !errors.Is(err, ErrParamMissing) {
		t.Errorf("empty input: got %v", err)
	}
}
