package store

import (
	"fmt"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/daslerpc/mech-checker/internal/grid"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// File name prefixes, one per artifact kind.
const (
	PrefixValid    = "validStateSpaces"
	PrefixPruned   = "prunedStateSpaces"
	PrefixRejected = "rejectedStates"
	PrefixPlans    = "motionPlans"
)

const fileExt = ".dat"

// ErrUnrecognizedName means a file name does not carry the parameter suffix,
// so its parameters cannot be checked against the active model.
var ErrUnrecognizedName = fmt.Errorf("%w: unrecognized file name", types.ErrConfigMismatch)

// Name holds the parameters encoded in an artifact file name.
type Name struct {
	Prefix     string
	Goal       *big.Rat
	Resolution *big.Rat
	Horizon    *big.Rat
	TopSpeed   *big.Rat
}

// FileName returns "<prefix>_G<goal>_R<resolution>_E<horizon>_S<speed>.dat"
// for m.
func FileName(prefix string, m *grid.Model) string {
	return fmt.Sprintf("%s_G%s_R%s_E%s_S%s%s", prefix,
		grid.FileToken(m.GoalPosition()),
		grid.FileToken(m.Resolution()),
		grid.FileToken(m.HorizonTime()),
		grid.FileToken(m.TopSpeed()),
		fileExt)
}

// Path joins dir with FileName.
func Path(dir, prefix string, m *grid.Model) string {
	return filepath.Join(dir, FileName(prefix, m))
}

// ParseFileName decodes the parameter suffix of an artifact file name. Any
// leading directories are ignored.
func ParseFileName(name string) (Name, error) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, fileExt) {
		return Name{}, fmt.Errorf("%w: %q", ErrUnrecognizedName, base)
	}
	parts := strings.Split(strings.TrimSuffix(base, fileExt), "_")
	if len(parts) != 5 || parts[0] == "" {
		return Name{}, fmt.Errorf("%w: %q", ErrUnrecognizedName, base)
	}

	n := Name{Prefix: parts[0]}
	fields := []struct {
		tag byte
		dst **big.Rat
	}{
		{'G', &n.Goal},
		{'R', &n.Resolution},
		{'E', &n.Horizon},
		{'S', &n.TopSpeed},
	}
	for i, f := range fields {
		tok := parts[i+1]
		if len(tok) < 2 || tok[0] != f.tag {
			return Name{}, fmt.Errorf("%w: %q", ErrUnrecognizedName, base)
		}
		r, ok := new(big.Rat).SetString(strings.Replace(tok[1:], "r", "/", 1))
		if !ok {
			return Name{}, fmt.Errorf("%w: %q", ErrUnrecognizedName, base)
		}
		*f.dst = r
	}
	return n, nil
}

// VerifyName checks that the parameters encoded in name match m. It returns
// the decoded name so callers can inspect the prefix.
func VerifyName(name string, m *grid.Model) (Name, error) {
	n, err := ParseFileName(name)
	if err != nil {
		return Name{}, err
	}
	checks := []struct {
		label     string
		got, want *big.Rat
	}{
		{"goal", n.Goal, m.GoalPosition()},
		{"resolution", n.Resolution, m.Resolution()},
		{"horizon", n.Horizon, m.HorizonTime()},
		{"top speed", n.TopSpeed, m.TopSpeed()},
	}
	for _, c := range checks {
		if c.got.Cmp(c.want) != 0 {
			return Name{}, fmt.Errorf("%w: %s: file has %s %s, configuration has %s",
				types.ErrConfigMismatch, filepath.Base(name), c.label,
				grid.FormatRat(c.got), grid.FormatRat(c.want))
		}
	}
	return n, nil
}
