package testutil

import "github.com/zjrosen/fieldunits/internal/domain/field"

// WithStandardFields adds a small cross-category dataset:
//
//	magnetic_field  B  tesla   electromagnetic  (latex $B$)
//	electric_field  E  V/m     electromagnetic
//	temperature     T  kelvin  thermal
//	conductivity    σ  S/m     (no category)
func (b *Builder) WithStandardFields() *Builder {
	return b.
		WithField("magnetic_field", "B", "tesla",
			Kind(field.KindMagneticField), Description("Magnetic flux density"),
			Aliases("flux_density"), Latex("$B$"), Category("electromagnetic")).
		WithField("electric_field", "E", "V/m", Category("electromagnetic")).
		WithField("temperature", "T", "kelvin",
			Kind(field.KindTemperature), Category("thermal")).
		WithField("conductivity", "σ", "S/m")
}
