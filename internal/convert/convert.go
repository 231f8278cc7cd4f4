// Package convert offers field-independent conversions between unit
// expressions. A nil *units.System selects units.Default().
package convert

import (
	"fmt"

	"github.com/zjrosen/fieldunits/internal/units"
)

func system(sys *units.System) *units.System {
	if sys == nil {
		return units.Default()
	}
	return sys
}

// Value converts a single magnitude between two unit expressions.
func Value(sys *units.System, value float64, from, to string) (float64, error) {
	return system(sys).ConvertString(value, from, to)
}

// Slice converts values between two unit expressions, preserving order.
// Both units are resolved and checked before any value is converted, so the
// result is either complete or nil.
func Slice(sys *units.System, values []float64, from, to string) ([]float64, error) {
	sys = system(sys)
	src, err := sys.Parse(from)
	if err != nil {
		return nil, err
	}
	dst, err := sys.Parse(to)
	if err != nil {
		return nil, err
	}
	if !sys.Compatible(src, dst) {
		_, err := sys.Convert(0, src, dst)
		return nil, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		c, err := sys.Convert(v, src, dst)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// Compatible reports whether both expressions resolve to units of the same
// dimension. Unresolvable expressions are incompatible with everything.
func Compatible(sys *units.System, a, b string) bool {
	return system(sys).CompatibleStrings(a, b)
}

// UnitString renders a unit expression. pretty selects the abbreviated form
// ("V/m", "kg/m³"); otherwise the long form ("volt / meter") is returned.
func UnitString(sys *units.System, spec string, pretty bool) (string, error) {
	u, err := system(sys).Parse(spec)
	if err != nil {
		return "", err
	}
	if pretty {
		return u.String(), nil
	}
	return u.LongName(), nil
}
