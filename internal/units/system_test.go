package units

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse_Render(t *testing.T) {
	s := Default()

	tests := []struct {
		spec string
		want string
	}{
		{"tesla", "T"},
		{"T", "T"},
		{"gauss", "G"},
		{"Gauss", "G"},
		{"millitesla", "mT"},
		{"mT", "mT"},
		{"kelvin", "K"},
		{"degC", "°C"},
		{"celsius", "°C"},
		{"degree_Celsius", "°C"},
		{"°F", "°F"},
		{"volt/meter", "V/m"},
		{"V/m", "V/m"},
		{"A/m**2", "A/m²"},
		{"A/m^2", "A/m²"},
		{"A/m2", "A/m²"},
		{"W/(m*K)", "W/(m·K)"},
		{"W/m/K", "W/(m·K)"},
		{"J/(kg*K)", "J/(kg·K)"},
		{"kg/m**3", "kg/m³"},
		{"m**3/hour", "m³/h"},
		{"m3/h", "m³/h"},
		{"liter/minute", "l/min"},
		{"l/min", "l/min"},
		{"1/kelvin", "1/K"},
		{"1/K", "1/K"},
		{"ohm*m", "Ω·m"},
		{"Ohm m", "Ω·m"},
		{"S/m", "S/m"},
		{"megapascal", "MPa"},
		{"MPa", "MPa"},
		{"kPa", "kPa"},
		{"bar", "bar"},
		{"percent", "%"},
		{"%", "%"},
		{"ppm", "ppm"},
		{"rpm", "rpm"},
		{"revolution/minute", "rev/min"},
		{"megavar", "Mvar"},
		{"Mvar", "Mvar"},
		{"MW", "MW"},
		{"meters", "m"},
		{"millimeters", "mm"},
		{"µm", "µm"},
		{"m/s²", "m/s²"},
		{"Pa*s", "Pa·s"},
		{"m**2/s", "m²/s"},
		{"1e-4 tesla", "0.0001 T"},
		{"dimensionless", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			u, err := s.Parse(tt.spec)
			require.NoError(t, err)
			require.Equal(t, tt.want, u.String())
			require.Equal(t, tt.want, s.Render(u))
		})
	}
}

func TestParse_RenderedFormParsesBack(t *testing.T) {
	s := Default()
	for _, spec := range []string{"W/(m*K)", "A/m**2", "m**3/hour", "°C", "Ω·m", "1/K", "kg/m**3"} {
		u := s.MustParse(spec)
		back, err := s.Parse(u.String())
		require.NoError(t, err, spec)
		require.Equal(t, u.String(), back.String())
		require.InDelta(t, u.Scale(), back.Scale(), 1e-12*u.Scale())
	}
}

func TestParse_Invalid(t *testing.T) {
	s := Default()
	for _, spec := range []string{
		"not_a_unit",
		"furlongs",
		"m**x",
		"m**1.5",
		"(m",
		"m)",
		"m/",
		"0 m",
		"-1 m",
		"$",
		"m**",
	} {
		t.Run(spec, func(t *testing.T) {
			_, err := s.Parse(spec)
			require.ErrorIs(t, err, ErrInvalidUnit)
		})
	}
}

func TestParse_ExponentRange(t *testing.T) {
	s := New(Options{})

	u, err := s.Parse("m**64")
	require.NoError(t, err)
	require.Equal(t, 64, u.Dimension()[Length])

	for _, spec := range []string{
		"m**99999999999",
		"m**-99999999999",
		"m^65",
		"m99999999999",
		"m65",
		"(m**64)**2",
		"1e3**1e300",
	} {
		t.Run(spec, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := s.Parse(spec)
				done <- err
			}()
			select {
			case err := <-done:
				require.ErrorIs(t, err, ErrInvalidUnit)
			case <-time.After(time.Second):
				t.Fatalf("Parse(%q) did not return", spec)
			}
		})
	}
}

func TestParse_ExactNamesWinOverPrefixes(t *testing.T) {
	s := Default()

	minute := s.MustParse("min")
	assert.InDelta(t, 60.0, minute.Scale(), 1e-12)

	gauss := s.MustParse("G")
	assert.InDelta(t, 1e-4, gauss.Scale(), 1e-18)

	pascal := s.MustParse("Pa")
	assert.InDelta(t, 1.0, pascal.Scale(), 1e-12)

	ms := s.MustParse("ms")
	assert.InDelta(t, 1e-3, ms.Scale(), 1e-15)

	hPa := s.MustParse("hPa")
	assert.InDelta(t, 100.0, hPa.Scale(), 1e-12)
}

func TestLongName(t *testing.T) {
	s := Default()
	tests := map[string]string{
		"V/m":           "volt / meter",
		"tesla":         "tesla",
		"mT":            "millitesla",
		"m**3/h":        "meter ** 3 / hour",
		"W/(m*K)":       "watt / meter / kelvin",
		"dimensionless": "dimensionless",
		"1/K":           "1 / kelvin",
	}
	for spec, want := range tests {
		assert.Equal(t, want, s.MustParse(spec).LongName(), spec)
	}
}

func TestConvert(t *testing.T) {
	s := Default()

	tests := []struct {
		value    float64
		from, to string
		want     float64
		delta    float64
	}{
		{1, "tesla", "gauss", 10000, 1e-9},
		{3, "T", "G", 30000, 1e-9},
		{1, "tesla", "millitesla", 1000, 1e-9},
		{273.15, "kelvin", "degC", 0, 1e-9},
		{0, "degC", "K", 273.15, 1e-9},
		{100, "degC", "degF", 212, 1e-9},
		{32, "degF", "degC", 0, 1e-9},
		{1, "bar", "kPa", 100, 1e-9},
		{1, "MPa", "psi", 145.0377377, 1e-6},
		{60, "l/min", "m**3/h", 3.6, 1e-12},
		{1, "m3/h", "l/min", 1000.0 / 60, 1e-9},
		{1, "W/(m*K)", "mW/(m*K)", 1000, 1e-9},
		{60, "rpm", "rev/min", 60, 1e-9},
		{50, "percent", "dimensionless", 0.5, 1e-12},
		{1, "MW", "W", 1e6, 1e-6},
		{1, "Mvar", "kvar", 1000, 1e-9},
		{1, "kV/mm", "V/m", 1e6, 1e-6},
		{1, "1/K", "1/K", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			got, err := s.ConvertString(tt.value, tt.from, tt.to)
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestConvert_TemperatureDifferencesAreLinear(t *testing.T) {
	s := Default()
	// Inside a compound unit the Celsius offset is dropped.
	got, err := s.ConvertString(2, "W/(m*degC)", "W/(m*K)")
	require.NoError(t, err)
	require.InDelta(t, 2.0, got, 1e-12)
}

func TestConvert_Incompatible(t *testing.T) {
	s := Default()

	_, err := s.ConvertString(1, "meter", "kelvin")
	require.ErrorIs(t, err, ErrIncompatibleUnits)
	require.Contains(t, err.Error(), "meter")
	require.Contains(t, err.Error(), "[temperature]")

	_, err = s.ConvertString(1, "tesla", "volt/meter")
	require.ErrorIs(t, err, ErrIncompatibleUnits)

	_, err = s.ConvertString(1, "tesla", "nope")
	require.ErrorIs(t, err, ErrInvalidUnit)
}

func TestCompatible(t *testing.T) {
	s := Default()
	assert.True(t, s.CompatibleStrings("tesla", "gauss"))
	assert.True(t, s.CompatibleStrings("W", "var"))
	assert.True(t, s.CompatibleStrings("kelvin", "degF"))
	assert.True(t, s.CompatibleStrings("percent", "ppm"))
	assert.True(t, s.CompatibleStrings("rpm", "Hz"))
	assert.False(t, s.CompatibleStrings("tesla", "kelvin"))
	assert.False(t, s.CompatibleStrings("tesla", "bogus"))
	assert.False(t, s.CompatibleStrings("m", "m**2"))
}

func TestDimension_String(t *testing.T) {
	s := Default()
	assert.Equal(t, "[length]/[time]", s.MustParse("m/s").Dimension().String())
	assert.Equal(t, "dimensionless", s.MustParse("percent").Dimension().String())
	assert.Equal(t, "[length]^3/[time]", s.MustParse("l/min").Dimension().String())
	assert.True(t, s.MustParse("rad").IsDimensionless())
	assert.False(t, s.MustParse("T").IsDimensionless())
}

func TestNew_WithoutCache(t *testing.T) {
	s := New(Options{})
	u, err := s.Parse("mT")
	require.NoError(t, err)
	require.Equal(t, "mT", u.String())
	require.Zero(t, s.parsed.Len())
}

func TestParse_Memoized(t *testing.T) {
	s := New(DefaultOptions())
	_, err := s.Parse("W/(m*K)")
	require.NoError(t, err)
	_, err = s.Parse("  W/(m*K) ")
	require.NoError(t, err)
	require.Equal(t, 1, s.parsed.Len())

	_, err = s.Parse("bogus")
	require.Error(t, err)
	require.Equal(t, 1, s.parsed.Len())

	stats := s.CacheStats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(2), stats.Misses)
	require.Equal(t, uint64(1), stats.Errors)
}

func TestConvert_RoundTripProperty(t *testing.T) {
	s := Default()
	groups := [][]string{
		{"tesla", "gauss", "mT", "µT", "kG"},
		{"kelvin", "degC", "degF", "mK"},
		{"Pa", "bar", "psi", "MPa", "atm"},
		{"m**3/s", "l/min", "m3/h"},
		{"W", "kW", "var", "Mvar", "VA"},
	}

	rapid.Check(t, func(t *rapid.T) {
		group := rapid.SampledFrom(groups).Draw(t, "group")
		from := rapid.SampledFrom(group).Draw(t, "from")
		to := rapid.SampledFrom(group).Draw(t, "to")
		x := rapid.Float64Range(-1e6, 1e6).Draw(t, "x")

		y, err := s.ConvertString(x, from, to)
		if err != nil {
			t.Fatalf("convert %s -> %s: %v", from, to, err)
		}
		back, err := s.ConvertString(y, to, from)
		if err != nil {
			t.Fatalf("convert %s -> %s: %v", to, from, err)
		}
		tol := 1e-9 * max(1, abs(x))
		if abs(back-x) > tol {
			t.Fatalf("round trip %v %s -> %s -> %s = %v", x, from, to, from, back)
		}
	})
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
