package grid

import (
	"math/big"
	"strings"

	"github.com/daslerpc/mech-checker/pkg/types"
)

// FormatRat renders r as a terminating decimal with at least one fractional
// digit ("2.0", "0.0625", "-1.375"). Values with no terminating decimal
// form fall back to a fraction ("1/3").
func FormatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String() + ".0"
	}
	d := new(big.Int).Set(r.Denom())
	two, five, zero := big.NewInt(2), big.NewInt(5), big.NewInt(0)
	twos, fives := 0, 0
	mod := new(big.Int)
	for mod.Mod(d, two).Cmp(zero) == 0 {
		d.Quo(d, two)
		twos++
	}
	for mod.Mod(d, five).Cmp(zero) == 0 {
		d.Quo(d, five)
		fives++
	}
	if d.Cmp(big.NewInt(1)) != 0 {
		return r.RatString()
	}
	return r.FloatString(max(twos, fives))
}

// FormatPosition renders grid index i as an exact decimal position.
func (m *Model) FormatPosition(i int) string {
	return FormatRat(m.PositionOf(i))
}

// FormatTime renders time index t as an exact decimal time.
func (m *Model) FormatTime(t int) string {
	return FormatRat(m.TimeOf(t))
}

// ParseIndex parses a decimal position and converts it to a grid index.
func (m *Model) ParseIndex(s string) (int, error) {
	r, err := types.ParseRat(s)
	if err != nil {
		return 0, err
	}
	return m.IndexOf(r)
}

// ParseTimeIndex parses a decimal time and converts it to a time index.
func (m *Model) ParseTimeIndex(s string) (int, error) {
	r, err := types.ParseRat(s)
	if err != nil {
		return 0, err
	}
	return m.TimeIndexOf(r)
}

// FileToken renders r for use inside a file name, where "/" is not allowed.
func FileToken(r *big.Rat) string {
	return strings.Replace(FormatRat(r), "/", "r", 1)
}
