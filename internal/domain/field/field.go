package field

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/zjrosen/fieldunits/internal/units"
)

// Field is an immutable descriptor of a named physical quantity: its unit,
// display symbols, lookup aliases and the regions it does not apply to.
type Field struct {
	name           string
	symbol         string
	unit           units.Unit
	kind           Kind
	description    string
	latexSymbol    string
	aliases        []string
	excludeRegions map[string]struct{}
	regionOrder    []string
	defaultValue   *float64
	metadata       map[string]any
	system         *units.System
}

// Name returns the canonical, registry-unique name.
func (f *Field) Name() string { return f.name }

// Symbol returns the plain display symbol.
func (f *Field) Symbol() string { return f.symbol }

// Unit returns the resolved unit values are expressed in.
func (f *Field) Unit() units.Unit { return f.unit }

// UnitSystem returns the system the field resolves and converts units with.
func (f *Field) UnitSystem() *units.System { return f.system }

// Kind returns the quantity kind, or "" when untyped.
func (f *Field) Kind() Kind { return f.kind }

// Description returns the free-text description.
func (f *Field) Description() string { return f.description }

// LatexSymbol returns the typeset symbol; it falls back to Symbol.
func (f *Field) LatexSymbol() string { return f.latexSymbol }

// Aliases returns a copy of the alias list in declaration order.
func (f *Field) Aliases() []string { return slices.Clone(f.aliases) }

// ExcludeRegions returns a copy of the excluded regions in declaration order.
func (f *Field) ExcludeRegions() []string { return slices.Clone(f.regionOrder) }

// DefaultValue returns the default in the field's own unit, if one was set.
func (f *Field) DefaultValue() (float64, bool) {
	if f.defaultValue == nil {
		return 0, false
	}
	return *f.defaultValue, true
}

// Metadata returns a shallow copy of the metadata map.
func (f *Field) Metadata() map[string]any { return maps.Clone(f.metadata) }

// MetadataValue returns one metadata entry.
func (f *Field) MetadataValue(key string) (any, bool) {
	v, ok := f.metadata[key]
	return v, ok
}

// Category returns metadata["category"] when it is a string.
func (f *Field) Category() string {
	c, _ := f.metadata[MetadataCategory].(string)
	return c
}

// Convert converts value, expressed in the field's unit, to the unit named by to.
func (f *Field) Convert(value float64, to string) (float64, error) {
	target, err := f.system.Parse(to)
	if err != nil {
		return 0, fmt.Errorf("converting %s: %w", f.name, err)
	}
	return f.ConvertTo(value, target)
}

// ConvertTo converts value, expressed in the field's unit, to target.
func (f *Field) ConvertTo(value float64, target units.Unit) (float64, error) {
	out, err := f.system.Convert(value, f.unit, target)
	if err != nil {
		return 0, fmt.Errorf("converting %s: %w", f.name, err)
	}
	return out, nil
}

// ConvertSlice converts every value to the unit named by to, preserving order.
// The target is checked before any element is touched, so the call either
// converts everything or returns nil and an error.
func (f *Field) ConvertSlice(values []float64, to string) ([]float64, error) {
	target, err := f.system.Parse(to)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", f.name, err)
	}
	return f.ConvertSliceTo(values, target)
}

// ConvertSliceTo is ConvertSlice with a resolved target unit.
func (f *Field) ConvertSliceTo(values []float64, target units.Unit) ([]float64, error) {
	if !f.system.Compatible(f.unit, target) {
		_, err := f.ConvertTo(0, target)
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		converted, err := f.system.Convert(v, f.unit, target)
		if err != nil {
			return nil, fmt.Errorf("converting %s[%d]: %w", f.name, i, err)
		}
		out[i] = converted
	}
	return out, nil
}

// ValidateValue reports whether value can be read as a magnitude in the
// field's unit. It accepts Go numeric types, bools (as 0 and 1) and numeric
// strings and never panics; it is not a range check.
func (f *Field) ValidateValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// FormatLabel builds an axis label. With a target unit it returns
// "<symbol> [<unit>]" using the unit's short rendering; without one it
// returns the bare symbol. useLatex selects the LaTeX symbol.
func (f *Field) FormatLabel(target string, useLatex bool) (string, error) {
	if target == "" {
		return f.displaySymbol(useLatex), nil
	}
	u, err := f.system.Parse(target)
	if err != nil {
		return "", fmt.Errorf("label for %s: %w", f.name, err)
	}
	return f.FormatLabelFor(u, useLatex), nil
}

// FormatLabelFor is FormatLabel with a resolved unit.
func (f *Field) FormatLabelFor(target units.Unit, useLatex bool) string {
	return fmt.Sprintf("%s [%s]", f.displaySymbol(useLatex), f.system.Render(target))
}

func (f *Field) displaySymbol(useLatex bool) string {
	if useLatex {
		return f.latexSymbol
	}
	return f.symbol
}

// AppliesToRegion reports whether region is absent from the exclusion set.
func (f *Field) AppliesToRegion(region string) bool {
	_, excluded := f.excludeRegions[region]
	return !excluded
}

// HasAlias reports whether alias is one of the field's aliases.
func (f *Field) HasAlias(alias string) bool {
	return slices.Contains(f.aliases, alias)
}

// String returns a debug representation.
func (f *Field) String() string {
	return fmt.Sprintf("Field(name=%q, symbol=%q, unit=%q, aliases=%q)",
		f.name, f.symbol, f.unit.LongName(), f.aliases)
}
