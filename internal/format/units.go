package format

// unitAliases maps unit spellings found in data-file format definitions to
// expressions the unit parser understands.
var unitAliases = map[string]string{
	"celsius":    "degC",
	"fahrenheit": "degF",
	"kelvin":     "kelvin",

	"bar":    "bar",
	"pascal": "pascal",
	"Pa":     "pascal",
	"MPa":    "megapascal",
	"psi":    "psi",

	"liter/minute":  "liter/minute",
	"l/min":         "liter/minute",
	"m3/h":          "meter**3/hour",
	"meter**3/hour": "meter**3/hour",

	"megawatt": "megawatt",
	"MW":       "megawatt",
	"watt":     "watt",
	"W":        "watt",
	"megavar":  "megavar",
	"Mvar":     "megavar",

	"ampere": "ampere",
	"A":      "ampere",
	"volt":   "volt",
	"V":      "volt",
	"tesla":  "tesla",
	"T":      "tesla",

	"rpm": "revolution/minute",

	"dimensionless": "dimensionless",
	"percent":       "percent",
	"%":             "percent",
}

// NormalizeUnit maps a format-file unit spelling to a parseable expression.
// Unknown spellings are returned unchanged.
func NormalizeUnit(unit string) string {
	if n, ok := unitAliases[unit]; ok {
		return n
	}
	return unit
}
