package units

import "math"

// definition is one entry of the unit table, expressed in coherent SI base units.
type definition struct {
	names      []string // first entry is the canonical long name
	symbols    []string // first entry is the canonical short rendering
	scale      float64
	offset     float64
	dim        Dimension
	prefixable bool
}

func (d *definition) name() string   { return d.names[0] }
func (d *definition) symbol() string { return d.symbols[0] }

type prefix struct {
	name   string
	symbol string
	factor float64
}

var prefixes = []prefix{
	{"yotta", "Y", 1e24},
	{"zetta", "Z", 1e21},
	{"exa", "E", 1e18},
	{"peta", "P", 1e15},
	{"tera", "T", 1e12},
	{"giga", "G", 1e9},
	{"mega", "M", 1e6},
	{"kilo", "k", 1e3},
	{"hecto", "h", 1e2},
	{"deca", "da", 1e1},
	{"deci", "d", 1e-1},
	{"centi", "c", 1e-2},
	{"milli", "m", 1e-3},
	{"micro", "µ", 1e-6},
	{"micro", "μ", 1e-6},
	{"micro", "u", 1e-6},
	{"nano", "n", 1e-9},
	{"pico", "p", 1e-12},
	{"femto", "f", 1e-15},
	{"atto", "a", 1e-18},
}

var (
	dimForce      = dim(Mass, 1, Length, 1, Time, -2)
	dimPressure   = dim(Mass, 1, Length, -1, Time, -2)
	dimEnergy     = dim(Mass, 1, Length, 2, Time, -2)
	dimPower      = dim(Mass, 1, Length, 2, Time, -3)
	dimVoltage    = dim(Mass, 1, Length, 2, Time, -3, Current, -1)
	dimResistance = dim(Mass, 1, Length, 2, Time, -3, Current, -2)
	dimFluxDens   = dim(Mass, 1, Time, -2, Current, -1)
)

func standardDefinitions() []*definition {
	return []*definition{
		// base units
		{names: []string{"meter", "metre"}, symbols: []string{"m"}, scale: 1, dim: dim(Length, 1), prefixable: true},
		{names: []string{"gram", "gramme"}, symbols: []string{"g"}, scale: 1e-3, dim: dim(Mass, 1), prefixable: true},
		{names: []string{"second", "sec"}, symbols: []string{"s"}, scale: 1, dim: dim(Time, 1), prefixable: true},
		{names: []string{"ampere", "amp"}, symbols: []string{"A"}, scale: 1, dim: dim(Current, 1), prefixable: true},
		{names: []string{"kelvin"}, symbols: []string{"K"}, scale: 1, dim: dim(Temperature, 1), prefixable: true},
		{names: []string{"mole"}, symbols: []string{"mol"}, scale: 1, dim: dim(Substance, 1), prefixable: true},
		{names: []string{"candela"}, symbols: []string{"cd"}, scale: 1, dim: dim(Luminosity, 1), prefixable: true},

		// time
		{names: []string{"minute"}, symbols: []string{"min"}, scale: 60, dim: dim(Time, 1)},
		{names: []string{"hour"}, symbols: []string{"h", "hr"}, scale: 3600, dim: dim(Time, 1)},
		{names: []string{"day"}, symbols: []string{"d"}, scale: 86400, dim: dim(Time, 1)},
		{names: []string{"hertz"}, symbols: []string{"Hz"}, scale: 1, dim: dim(Time, -1), prefixable: true},

		// mechanics
		{names: []string{"tonne", "metric_ton"}, symbols: []string{"t"}, scale: 1e3, dim: dim(Mass, 1)},
		{names: []string{"newton"}, symbols: []string{"N"}, scale: 1, dim: dimForce, prefixable: true},
		{names: []string{"pascal"}, symbols: []string{"Pa"}, scale: 1, dim: dimPressure, prefixable: true},
		{names: []string{"bar"}, symbols: []string{"bar"}, scale: 1e5, dim: dimPressure, prefixable: true},
		{names: []string{"pound_force_per_square_inch"}, symbols: []string{"psi"}, scale: 6894.757293168361, dim: dimPressure},
		{names: []string{"atmosphere"}, symbols: []string{"atm"}, scale: 101325, dim: dimPressure},
		{names: []string{"joule"}, symbols: []string{"J"}, scale: 1, dim: dimEnergy, prefixable: true},
		{names: []string{"watt"}, symbols: []string{"W"}, scale: 1, dim: dimPower, prefixable: true},
		{names: []string{"liter", "litre"}, symbols: []string{"l", "L"}, scale: 1e-3, dim: dim(Length, 3), prefixable: true},

		// electromagnetism
		{names: []string{"volt_ampere_reactive", "var"}, symbols: []string{"var", "VAR"}, scale: 1, dim: dimPower, prefixable: true},
		{names: []string{"volt_ampere"}, symbols: []string{"VA"}, scale: 1, dim: dimPower, prefixable: true},
		{names: []string{"coulomb"}, symbols: []string{"C"}, scale: 1, dim: dim(Current, 1, Time, 1), prefixable: true},
		{names: []string{"volt"}, symbols: []string{"V"}, scale: 1, dim: dimVoltage, prefixable: true},
		{names: []string{"ohm", "Ohm"}, symbols: []string{"Ω", "\u2126"}, scale: 1, dim: dimResistance, prefixable: true},
		{names: []string{"siemens"}, symbols: []string{"S"}, scale: 1, dim: dim(Mass, -1, Length, -2, Time, 3, Current, 2), prefixable: true},
		{names: []string{"farad"}, symbols: []string{"F"}, scale: 1, dim: dim(Mass, -1, Length, -2, Time, 4, Current, 2), prefixable: true},
		{names: []string{"weber"}, symbols: []string{"Wb"}, scale: 1, dim: dim(Mass, 1, Length, 2, Time, -2, Current, -1), prefixable: true},
		{names: []string{"tesla"}, symbols: []string{"T"}, scale: 1, dim: dimFluxDens, prefixable: true},
		{names: []string{"gauss", "Gauss"}, symbols: []string{"G", "Gs"}, scale: 1e-4, dim: dimFluxDens, prefixable: true},
		{names: []string{"henry"}, symbols: []string{"H"}, scale: 1, dim: dim(Mass, 1, Length, 2, Time, -2, Current, -2), prefixable: true},

		// temperature scales
		{names: []string{"degree_Celsius", "celsius", "degC"}, symbols: []string{"°C", "degC"}, scale: 1, offset: 273.15, dim: dim(Temperature, 1)},
		{names: []string{"degree_Fahrenheit", "fahrenheit", "degF"}, symbols: []string{"°F", "degF"}, scale: 5.0 / 9.0, offset: 459.67 * 5.0 / 9.0, dim: dim(Temperature, 1)},

		// angles and ratios
		{names: []string{"radian"}, symbols: []string{"rad"}, scale: 1, prefixable: true},
		{names: []string{"degree", "arcdeg"}, symbols: []string{"deg", "°"}, scale: math.Pi / 180},
		{names: []string{"revolution", "turn"}, symbols: []string{"rev"}, scale: 2 * math.Pi},
		{names: []string{"revolutions_per_minute"}, symbols: []string{"rpm"}, scale: 2 * math.Pi / 60, dim: dim(Time, -1)},
		{names: []string{"percent"}, symbols: []string{"%"}, scale: 1e-2},
		{names: []string{"ppm"}, symbols: []string{"ppm"}, scale: 1e-6},
	}
}
