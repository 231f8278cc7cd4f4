package field

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/zjrosen/fieldunits/internal/units"
)

// Builder errors
var (
	ErrEmptyName        = errors.New("field name cannot be empty")
	ErrUnknownKind      = errors.New("unknown field kind")
	ErrIncompatibleKind = errors.New("unit is not compatible with field kind")
)

// MetadataCategory is the metadata key List filters on.
const MetadataCategory = "category"

// UnitSpec is either a unit expression or an already resolved unit.
type UnitSpec struct {
	expr     string
	resolved *units.Unit
}

// UnitExpr wraps a unit expression such as "tesla" or "W/(m*K)".
func UnitExpr(expr string) UnitSpec { return UnitSpec{expr: expr} }

// UnitValue wraps a resolved unit.
func UnitValue(u units.Unit) UnitSpec { return UnitSpec{resolved: &u} }

func (s UnitSpec) resolve(sys *units.System) (units.Unit, error) {
	if s.resolved != nil {
		return *s.resolved, nil
	}
	return sys.Parse(s.expr)
}

// Builder provides a fluent API for creating fields
type Builder struct {
	name           string
	symbol         string
	unit           UnitSpec
	kind           Kind
	description    string
	latexSymbol    string
	aliases        []string
	excludeRegions []string
	defaultValue   *float64
	metadata       map[string]any
	system         *units.System
}

// NewBuilder creates a builder for the named field. Without a unit the field is dimensionless.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// FromKind starts a builder seeded with a kind's defaults: the kind value as
// name, plus its symbol, LaTeX symbol and SI unit.
func FromKind(kind Kind) *Builder {
	return NewBuilder(string(kind)).
		Kind(kind).
		Symbol(kind.DefaultSymbol()).
		LatexSymbol(kind.LatexSymbol()).
		Unit(kind.DefaultUnitSpec())
}

// Name overrides the field name.
func (b *Builder) Name(n string) *Builder {
	b.name = n
	return b
}

// Symbol sets the display symbol (defaults to the name)
func (b *Builder) Symbol(s string) *Builder {
	b.symbol = s
	return b
}

// Unit sets the unit from an expression, resolved at Build time
func (b *Builder) Unit(expr string) *Builder {
	b.unit = UnitExpr(expr)
	return b
}

// UnitOf sets an already resolved unit
func (b *Builder) UnitOf(u units.Unit) *Builder {
	b.unit = UnitValue(u)
	return b
}

// UnitSpec sets the unit from either form
func (b *Builder) UnitSpec(spec UnitSpec) *Builder {
	b.unit = spec
	return b
}

// Kind sets the quantity kind; Build checks the unit against it
func (b *Builder) Kind(k Kind) *Builder {
	b.kind = k
	return b
}

// Description sets the description
func (b *Builder) Description(d string) *Builder {
	b.description = d
	return b
}

// LatexSymbol sets the typeset symbol (defaults to the symbol)
func (b *Builder) LatexSymbol(s string) *Builder {
	b.latexSymbol = s
	return b
}

// Aliases sets the alternative lookup names
func (b *Builder) Aliases(aliases ...string) *Builder {
	b.aliases = aliases
	return b
}

// ExcludeRegions sets the regions where the field does not apply
func (b *Builder) ExcludeRegions(regions ...string) *Builder {
	b.excludeRegions = regions
	return b
}

// DefaultValue sets the default, in the field's own unit
func (b *Builder) DefaultValue(v float64) *Builder {
	b.defaultValue = &v
	return b
}

// Metadata sets one metadata entry
func (b *Builder) Metadata(key string, value any) *Builder {
	if b.metadata == nil {
		b.metadata = make(map[string]any)
	}
	b.metadata[key] = value
	return b
}

// Category is shorthand for Metadata("category", c)
func (b *Builder) Category(c string) *Builder {
	return b.Metadata(MetadataCategory, c)
}

// WithSystem resolves units against sys instead of units.Default()
func (b *Builder) WithSystem(sys *units.System) *Builder {
	b.system = sys
	return b
}

// Build resolves the unit and creates the field
func (b *Builder) Build() (*Field, error) {
	if b.name == "" {
		return nil, ErrEmptyName
	}

	sys := b.system
	if sys == nil {
		sys = units.Default()
	}

	unit, err := b.unit.resolve(sys)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", b.name, err)
	}

	if b.kind != "" {
		if !b.kind.Valid() {
			return nil, fmt.Errorf("field %s: %w: %q", b.name, ErrUnknownKind, b.kind)
		}
		if !sys.Compatible(unit, sys.MustParse(b.kind.DefaultUnitSpec())) {
			return nil, fmt.Errorf("field %s: %w: %q is not a %s unit",
				b.name, ErrIncompatibleKind, unit.LongName(), b.kind)
		}
	}

	symbol := b.symbol
	if symbol == "" {
		symbol = b.name
	}
	latex := b.latexSymbol
	if latex == "" {
		latex = symbol
	}

	regions := make(map[string]struct{}, len(b.excludeRegions))
	order := make([]string, 0, len(b.excludeRegions))
	for _, r := range b.excludeRegions {
		if _, dup := regions[r]; dup {
			continue
		}
		regions[r] = struct{}{}
		order = append(order, r)
	}

	var def *float64
	if b.defaultValue != nil {
		v := *b.defaultValue
		def = &v
	}

	return &Field{
		name:           b.name,
		symbol:         symbol,
		unit:           unit,
		kind:           b.kind,
		description:    b.description,
		latexSymbol:    latex,
		aliases:        slices.Clone(b.aliases),
		excludeRegions: regions,
		regionOrder:    order,
		defaultValue:   def,
		metadata:       maps.Clone(b.metadata),
		system:         sys,
	}, nil
}

// MustBuild is Build for static catalog literals; it panics on error.
func (b *Builder) MustBuild() *Field {
	f, err := b.Build()
	if err != nil {
		panic(err)
	}
	return f
}
