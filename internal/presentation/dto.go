package presentation

import (
	"github.com/zjrosen/fieldunits/internal/domain/field"
	"github.com/zjrosen/fieldunits/internal/format"
)

// FieldDTO represents a field for presentation
type FieldDTO struct {
	Name           string         `json:"name"`
	Symbol         string         `json:"symbol"`
	Unit           string         `json:"unit"`
	UnitName       string         `json:"unit_name"`
	Kind           string         `json:"kind,omitempty"`
	Description    string         `json:"description,omitempty"`
	LatexSymbol    string         `json:"latex_symbol"`
	Aliases        []string       `json:"aliases"`
	ExcludeRegions []string       `json:"exclude_regions"`
	Category       string         `json:"category,omitempty"`
	DefaultValue   *float64       `json:"default_value,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// FromField converts a domain field to a DTO
func FromField(f *field.Field) FieldDTO {
	var def *float64
	if v, ok := f.DefaultValue(); ok {
		def = &v
	}

	// Aliases and regions are always present in JSON
	aliases := f.Aliases()
	if aliases == nil {
		aliases = []string{}
	}
	regions := f.ExcludeRegions()
	if regions == nil {
		regions = []string{}
	}

	return FieldDTO{
		Name:           f.Name(),
		Symbol:         f.Symbol(),
		Unit:           f.Unit().String(),
		UnitName:       f.Unit().LongName(),
		Kind:           string(f.Kind()),
		Description:    f.Description(),
		LatexSymbol:    f.LatexSymbol(),
		Aliases:        aliases,
		ExcludeRegions: regions,
		Category:       f.Category(),
		DefaultValue:   def,
		Metadata:       f.Metadata(),
	}
}

// FromFields converts a slice of domain fields to DTOs
func FromFields(fields []*field.Field) []FieldDTO {
	dtos := make([]FieldDTO, len(fields))
	for i, f := range fields {
		dtos[i] = FromField(f)
	}
	return dtos
}

// FormatDTO represents a loaded format definition
type FormatDTO struct {
	Name     string          `json:"format_name"`
	Metadata format.Metadata `json:"metadata"`
	Columns  []string        `json:"columns"`
	Fields   []FieldDTO      `json:"fields"`
}

// FromDefinition converts a format definition to a DTO
func FromDefinition(def *format.Definition) FormatDTO {
	return FormatDTO{
		Name:     def.Name(),
		Metadata: def.Metadata(),
		Columns:  def.Columns(),
		Fields:   FromFields(def.Fields()),
	}
}

// ConversionDTO is the result of converting values of one field
type ConversionDTO struct {
	Field  string    `json:"field"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Input  []float64 `json:"input"`
	Output []float64 `json:"output"`
}
