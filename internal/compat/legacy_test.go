package compat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/fieldunits/internal/domain/field"
	"github.com/zjrosen/fieldunits/internal/units"
)

var legacyUnits = UnitMap{
	"MagneticField": {"tesla", "gauss"},
	"Temperature":   {"kelvin", "degC"},
	"Broken":        {"tesla", "meter"},
}

func TestConvertData(t *testing.T) {
	got, err := ConvertData(nil, legacyUnits, []float64{1.5}, "MagneticField")
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{15000}, got, 1e-9)

	got, err = ConvertData(nil, legacyUnits, []float64{1, 2}, "MagneticField")
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{10000, 20000}, got, 1e-9)

	got, err = ConvertData(nil, legacyUnits, []float64{273.15, 373.15}, "Temperature")
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0, 100}, got, 1e-9)
}

func TestConvertData_UnknownNamePassesThrough(t *testing.T) {
	in := []float64{1, 2, 3}
	got, err := ConvertData(nil, legacyUnits, in, "Velocity")
	require.NoError(t, err)
	require.Equal(t, in, got)

	got[0] = 99
	require.Equal(t, 1.0, in[0], "result does not alias the input")
}

func TestConvertData_Errors(t *testing.T) {
	_, err := ConvertData(nil, legacyUnits, []float64{1}, "Broken")
	require.ErrorIs(t, err, units.ErrIncompatibleUnits)
	require.Contains(t, err.Error(), "Broken")

	_, err = ConvertData(nil, UnitMap{"X": {"parsec", "m"}}, []float64{1}, "X")
	require.ErrorIs(t, err, units.ErrInvalidUnit)
}

func newRegistry(t *testing.T) *field.Registry {
	t.Helper()
	reg := field.NewRegistry()
	require.NoError(t, reg.Register(
		field.NewBuilder("MagneticField").Symbol("B").Unit("tesla").Aliases("B_field").MustBuild()))
	require.NoError(t, reg.Register(
		field.NewBuilder("Temperature").Symbol("T").Unit("kelvin").ExcludeRegions("Air").MustBuild()))
	return reg
}

func TestConvertRegistryData(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		name       string
		identifier string
		fallback   bool
		want       []float64
	}{
		{"direct key", "MagneticField", false, []float64{10000}},
		{"symbol with fallback", "B", true, []float64{10000}},
		{"alias with fallback", "B_field", true, []float64{10000}},
		{"symbol without fallback", "B", false, []float64{1}},
		{"unregistered identifier", "Q", true, []float64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertRegistryData(reg, legacyUnits, []float64{1}, tt.identifier, tt.fallback)
			require.NoError(t, err)
			require.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestFieldToLegacy(t *testing.T) {
	f := field.NewBuilder("MagneticField").
		Symbol("B").
		Unit("tesla").
		LatexSymbol(`$B$`).
		ExcludeRegions("Air").
		DefaultValue(0.5).
		MustBuild()

	e := FieldToLegacy(f, "", "gauss")
	require.Equal(t, "B", e.Symbol)
	require.Equal(t, `$B$`, e.MSymbol)
	require.Equal(t, [2]string{"tesla", "gauss"}, e.Units)
	require.Equal(t, []string{"Air"}, e.Exclude)
	require.NotNil(t, e.Val)
	require.Equal(t, 0.5, *e.Val)
}

func TestFieldToLegacy_OmitsOptionalKeys(t *testing.T) {
	f := field.NewBuilder("Index").Symbol("i").MustBuild()

	raw, err := json.Marshal(FieldToLegacy(f, "", ""))
	require.NoError(t, err)
	require.JSONEq(t, `{"Symbol":"i","Units":["dimensionless","dimensionless"],"Exclude":[]}`, string(raw))
}

func TestFieldUnitsDict_RoundTripsThroughConvertData(t *testing.T) {
	reg := newRegistry(t)
	dict := FieldUnitsDict(reg.List(""))

	require.Len(t, dict, 2)
	require.Equal(t, [2]string{"kelvin", "kelvin"}, dict["Temperature"].Units)
	require.Equal(t, []string{"Air"}, dict["Temperature"].Exclude)

	m := Units(dict)
	m["Temperature"] = [2]string{m["Temperature"][0], "degF"}

	got, err := ConvertData(nil, m, []float64{273.15}, "Temperature")
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{32}, got, 1e-9)

	got, err = ConvertData(nil, m, []float64{2}, "MagneticField")
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{2}, got, 1e-12)
}
