package store

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/daslerpc/mech-checker/internal/grid"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// FormatState renders s as "v0,v1,h0,h1,time" in exact decimals.
func FormatState(m *grid.Model, s types.State) string {
	var b strings.Builder
	for _, c := range s.Coords() {
		b.WriteString(m.FormatPosition(c))
		b.WriteByte(',')
	}
	b.WriteString(m.FormatTime(s.T))
	return b.String()
}

// ParseState parses one record. Lines that are not five numbers fail with
// ErrMalformedRecord; numbers that do not land on m's grid fail with
// ErrConfigMismatch.
func ParseState(m *grid.Model, line string) (types.State, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 5 {
		return types.State{}, fmt.Errorf("%w: want 5 fields, got %d", types.ErrMalformedRecord, len(fields))
	}

	var vals [5]*big.Rat
	for i, f := range fields {
		r, ok := new(big.Rat).SetString(strings.TrimSpace(f))
		if !ok {
			return types.State{}, fmt.Errorf("%w: field %d %q is not a number", types.ErrMalformedRecord, i+1, f)
		}
		vals[i] = r
	}

	var coords [4]int
	for i := range coords {
		idx, err := m.IndexOf(vals[i])
		if err != nil {
			return types.State{}, fmt.Errorf("%w: %w", types.ErrConfigMismatch, err)
		}
		coords[i] = idx
	}
	t, err := m.TimeIndexOf(vals[4])
	if err != nil {
		return types.State{}, fmt.Errorf("%w: %w", types.ErrConfigMismatch, err)
	}
	return types.WithCoords(coords, t), nil
}
