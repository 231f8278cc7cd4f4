package convert

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/fieldunits/internal/units"
)

func TestValue(t *testing.T) {
	tests := []struct {
		value    float64
		from, to string
		want     float64
	}{
		{1, "tesla", "gauss", 10000},
		{100, "millimeter", "centimeter", 10},
		{1, "bar", "Pa", 1e5},
		{25, "degC", "kelvin", 298.15},
		{212, "degF", "degC", 100},
		{3000, "rpm", "rad/s", 314.1592653589793},
		{50, "percent", "dimensionless", 0.5},
		{1, "m**3/h", "l/min", 1000.0 / 60},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			got, err := Value(nil, tt.value, tt.from, tt.to)
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestValue_Errors(t *testing.T) {
	_, err := Value(nil, 1, "tesla", "meter")
	require.ErrorIs(t, err, units.ErrIncompatibleUnits)

	_, err = Value(nil, 1, "teslas_per_fortnight", "gauss")
	require.ErrorIs(t, err, units.ErrInvalidUnit)
}

func TestSlice(t *testing.T) {
	got, err := Slice(nil, []float64{1, 2}, "meter", "centimeter")
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{100, 200}, got, 1e-9)

	got, err = Slice(nil, nil, "meter", "centimeter")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	got, err = Slice(nil, []float64{1, 2}, "meter", "second")
	require.ErrorIs(t, err, units.ErrIncompatibleUnits)
	require.Nil(t, got)
}

func TestSlice_CustomSystem(t *testing.T) {
	sys := units.New(units.Options{})
	got, err := Slice(sys, []float64{0, 100}, "degC", "K")
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{273.15, 373.15}, got, 1e-9)
}

func TestCompatible(t *testing.T) {
	require.True(t, Compatible(nil, "meter", "centimeter"))
	require.True(t, Compatible(nil, "tesla", "gauss"))
	require.True(t, Compatible(nil, "W/(m*K)", "W/(cm*degC)"))
	require.False(t, Compatible(nil, "tesla", "meter"))
	require.False(t, Compatible(nil, "bogus", "meter"))
}

func TestUnitString(t *testing.T) {
	tests := []struct {
		spec   string
		pretty bool
		want   string
	}{
		{"tesla", true, "T"},
		{"tesla", false, "tesla"},
		{"volt/meter", true, "V/m"},
		{"volt/meter", false, "volt / meter"},
		{"kilogram/meter**3", true, "kg/m³"},
		{"kilogram/meter**3", false, "kilogram / meter ** 3"},
		{"", false, "dimensionless"},
	}

	for _, tt := range tests {
		got, err := UnitString(nil, tt.spec, tt.pretty)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, tt.spec)
	}

	_, err := UnitString(nil, "m/", true)
	require.ErrorIs(t, err, units.ErrInvalidUnit)
}

func TestSlice_MatchesValue(t *testing.T) {
	pairs := [][2]string{{"T", "G"}, {"Pa", "bar"}, {"K", "degC"}, {"m/s", "km/h"}}

	rapid.Check(t, func(t *rapid.T) {
		p := rapid.SampledFrom(pairs).Draw(t, "pair")
		values := rapid.SliceOfN(rapid.Float64Range(-1e4, 1e4), 0, 16).Draw(t, "values")

		out, err := Slice(nil, values, p[0], p[1])
		if err != nil {
			t.Fatalf("slice: %v", err)
		}
		for i, v := range values {
			want, err := Value(nil, v, p[0], p[1])
			if err != nil {
				t.Fatalf("value: %v", err)
			}
			if out[i] != want {
				t.Fatalf("element %d: slice %v, value %v", i, out[i], want)
			}
		}
	})
}
