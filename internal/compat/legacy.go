// Package compat adapts fields to the legacy "fieldunits" dictionary shape
// used by older post-processing scripts, and converts data described by it.
//
// A legacy unit map is keyed by field name; each entry holds an input and an
// output unit expression:
//
//	{"MagneticField": ["tesla", "gauss"], "Temperature": ["kelvin", "degC"]}
package compat

import (
	"fmt"
	"slices"

	"github.com/zjrosen/fieldunits/internal/domain/field"
	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/units"
)

// UnitMap maps a field name to its [input, output] unit expressions.
type UnitMap map[string][2]string

// Entry is one field in the legacy dictionary.
type Entry struct {
	Symbol  string    `json:"Symbol" yaml:"Symbol"`
	MSymbol string    `json:"mSymbol,omitempty" yaml:"mSymbol,omitempty"`
	Units   [2]string `json:"Units" yaml:"Units"`
	Exclude []string  `json:"Exclude" yaml:"Exclude"`
	Val     *float64  `json:"Val,omitempty" yaml:"Val,omitempty"`
}

// ConvertData converts values of the named field from its legacy input unit
// to its legacy output unit. A name missing from legacy returns values
// unchanged. The result is always a new slice.
func ConvertData(sys *units.System, legacy UnitMap, values []float64, name string) ([]float64, error) {
	pair, ok := legacy[name]
	if !ok {
		return slices.Clone(values), nil
	}
	if sys == nil {
		sys = units.Default()
	}
	return convertPair(sys, pair, values, name)
}

func convertPair(sys *units.System, pair [2]string, values []float64, name string) ([]float64, error) {
	from, err := sys.Parse(pair[0])
	if err != nil {
		return nil, fmt.Errorf("legacy %s input unit: %w", name, err)
	}
	to, err := sys.Parse(pair[1])
	if err != nil {
		return nil, fmt.Errorf("legacy %s output unit: %w", name, err)
	}
	if !sys.Compatible(from, to) {
		_, err := sys.Convert(0, from, to)
		return nil, fmt.Errorf("legacy %s: %w", name, err)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		c, err := sys.Convert(v, from, to)
		if err != nil {
			return nil, fmt.Errorf("legacy %s[%d]: %w", name, i, err)
		}
		out[i] = c
	}
	return out, nil
}

// ConvertRegistryData is ConvertData keyed by any registry identifier. With
// fallback set, an identifier missing from legacy is resolved through reg and
// the legacy map is retried with the field's name, symbol and aliases.
func ConvertRegistryData(reg field.Provider, legacy UnitMap, values []float64, identifier string, fallback bool) ([]float64, error) {
	if _, ok := legacy[identifier]; ok || !fallback {
		return ConvertData(nil, legacy, values, identifier)
	}

	f, ok := reg.Get(identifier)
	if !ok {
		log.Debug(log.CatRegistry, "legacy identifier not registered", "identifier", identifier)
		return slices.Clone(values), nil
	}

	keys := append([]string{f.Name(), f.Symbol()}, f.Aliases()...)
	for _, k := range keys {
		if _, ok := legacy[k]; ok {
			log.Debug(log.CatRegistry, "legacy key resolved through registry", "identifier", identifier, "key", k)
			return ConvertData(nil, legacy, values, k)
		}
	}
	return slices.Clone(values), nil
}

// FieldToLegacy renders f as a legacy entry. Empty in or out default to the
// field's own unit.
func FieldToLegacy(f *field.Field, in, out string) Entry {
	own := f.Unit().LongName()
	if in == "" {
		in = own
	}
	if out == "" {
		out = own
	}

	e := Entry{
		Symbol:  f.Symbol(),
		Units:   [2]string{in, out},
		Exclude: f.ExcludeRegions(),
	}
	if e.Exclude == nil {
		e.Exclude = []string{}
	}
	if latex := f.LatexSymbol(); latex != "" && latex != f.Symbol() {
		e.MSymbol = latex
	}
	if v, ok := f.DefaultValue(); ok {
		e.Val = &v
	}
	return e
}

// FieldUnitsDict builds the legacy dictionary for fields, keyed by name,
// with every field converting to and from its own unit.
func FieldUnitsDict(fields []*field.Field) map[string]Entry {
	dict := make(map[string]Entry, len(fields))
	for _, f := range fields {
		dict[f.Name()] = FieldToLegacy(f, "", "")
	}
	return dict
}

// Units extracts the legacy unit map from a legacy dictionary.
func Units(dict map[string]Entry) UnitMap {
	m := make(UnitMap, len(dict))
	for name, e := range dict {
		m[name] = e.Units
	}
	return m
}
