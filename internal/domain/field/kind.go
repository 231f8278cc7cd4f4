package field

import (
	"sort"

	"github.com/zjrosen/fieldunits/internal/units"
)

// Kind classifies a physical quantity and carries its SI defaults.
type Kind string

const (
	KindTime Kind = "time"

	KindMagneticField  Kind = "magnetic_field"
	KindElectricField  Kind = "electric_field"
	KindCurrent        Kind = "current"
	KindCurrentDensity Kind = "current_density"
	KindVoltage        Kind = "voltage"

	KindResistance             Kind = "resistance"
	KindInductance             Kind = "inductance"
	KindElectricalResistivity  Kind = "electrical_resistivity"
	KindElectricalConductivity Kind = "electrical_conductivity"
	KindRelativePermittivity   Kind = "relative_permittivity"
	KindRelativePermeability   Kind = "relative_permeability"
	KindMagneticSusceptibility Kind = "magnetic_susceptibility"

	KindPower         Kind = "power"
	KindReactivePower Kind = "reactive_power"

	KindTemperature Kind = "temperature"
	KindHeatFlux    Kind = "heat_flux"

	KindThermalConductivity     Kind = "thermal_conductivity"
	KindHeatTransferCoefficient Kind = "heat_transfer_coefficient"
	KindSpecificHeat            Kind = "specific_heat"
	KindThermalExpansion        Kind = "thermal_expansion"
	KindThermalDiffusivity      Kind = "thermal_diffusivity"

	KindPressure           Kind = "pressure"
	KindFlowRate           Kind = "flow_rate"
	KindVelocity           Kind = "velocity"
	KindDynamicViscosity   Kind = "dynamic_viscosity"
	KindKinematicViscosity Kind = "kinematic_viscosity"

	KindForce  Kind = "force"
	KindStress Kind = "stress"
	KindStrain Kind = "strain"

	KindDensity      Kind = "density"
	KindYoungModulus Kind = "young_modulus"
	KindPoissonRatio Kind = "poisson_ratio"

	KindRotationSpeed Kind = "rotation_speed"
	KindPercentage    Kind = "percentage"

	KindCoordinate Kind = "coordinate"
	KindLength     Kind = "length"
	KindArea       Kind = "area"
	KindVolume     Kind = "volume"
	KindIndex      Kind = "index"
)

type kindDefaults struct {
	unit   string
	symbol string
	latex  string
}

var kindTable = map[Kind]kindDefaults{
	KindTime: {"second", "t", `$t$`},

	KindMagneticField:  {"tesla", "B", `$B$`},
	KindElectricField:  {"volt/meter", "E", `$E$`},
	KindCurrent:        {"ampere", "I", `$I$`},
	KindCurrentDensity: {"ampere/meter**2", "J", `$J$`},
	KindVoltage:        {"volt", "U", `$U$`},

	KindResistance:             {"ohm", "R", `$R$`},
	KindInductance:             {"henry", "L", `$L$`},
	KindElectricalResistivity:  {"ohm*meter", "ρ_e", `$\rho_e$`},
	KindElectricalConductivity: {"siemens/meter", "σ", `$\sigma$`},
	KindRelativePermittivity:   {"dimensionless", "ε_r", `$\varepsilon_r$`},
	KindRelativePermeability:   {"dimensionless", "μ_r", `$\mu_r$`},
	KindMagneticSusceptibility: {"dimensionless", "χ", `$\chi$`},

	KindPower:         {"watt", "P", `$P$`},
	KindReactivePower: {"var", "Q", `$Q$`},

	KindTemperature: {"kelvin", "T", `$T$`},
	KindHeatFlux:    {"watt/meter**2", "q", `$q$`},

	KindThermalConductivity:     {"watt/(meter*kelvin)", "k", `$k$`},
	KindHeatTransferCoefficient: {"watt/(meter**2*kelvin)", "h", `$h$`},
	KindSpecificHeat:            {"joule/(kilogram*kelvin)", "c_p", `$c_p$`},
	KindThermalExpansion:        {"1/kelvin", "α", `$\alpha$`},
	KindThermalDiffusivity:      {"meter**2/second", "α_th", `$\alpha_{th}$`},

	KindPressure:           {"pascal", "P", `$P$`},
	KindFlowRate:           {"meter**3/second", "Q", `$Q$`},
	KindVelocity:           {"meter/second", "v", `$v$`},
	KindDynamicViscosity:   {"pascal*second", "μ", `$\mu$`},
	KindKinematicViscosity: {"meter**2/second", "ν", `$\nu$`},

	KindForce:  {"newton", "F", `$F$`},
	KindStress: {"pascal", "σ", `$\sigma$`},
	KindStrain: {"dimensionless", "ε", `$\varepsilon$`},

	KindDensity:      {"kilogram/meter**3", "ρ", `$\rho$`},
	KindYoungModulus: {"pascal", "E", `$E$`},
	KindPoissonRatio: {"dimensionless", "ν", `$\nu$`},

	KindRotationSpeed: {"radian/second", "ω", `$\omega$`},
	KindPercentage:    {"percent", "%", `$\%$`},

	KindCoordinate: {"meter", "x", `$x$`},
	KindLength:     {"meter", "L", `$L$`},
	KindArea:       {"meter**2", "A", `$A$`},
	KindVolume:     {"meter**3", "V", `$V$`},
	KindIndex:      {"dimensionless", "i", `$i$`},
}

// AllKinds returns every known kind, sorted by name.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, len(kindTable))
	for k := range kindTable {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ParseKind resolves a kind by its string value.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := kindTable[k]
	return k, ok
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

func (k Kind) String() string { return string(k) }

// DefaultUnitSpec returns the unit expression of the kind's SI default.
func (k Kind) DefaultUnitSpec() string { return kindTable[k].unit }

// DefaultUnit resolves the kind's SI default unit against the shared unit system.
func (k Kind) DefaultUnit() units.Unit {
	d, ok := kindTable[k]
	if !ok {
		return units.Dimensionless
	}
	return units.Default().MustParse(d.unit)
}

// DefaultSymbol returns the conventional display symbol.
func (k Kind) DefaultSymbol() string { return kindTable[k].symbol }

// LatexSymbol returns the conventional LaTeX symbol.
func (k Kind) LatexSymbol() string { return kindTable[k].latex }

// IsCompatible reports whether u has the dimension of the kind's default unit.
func (k Kind) IsCompatible(u units.Unit) bool {
	if !k.Valid() {
		return false
	}
	return units.Default().Compatible(u, k.DefaultUnit())
}
