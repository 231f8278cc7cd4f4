// Package format loads data-file format definitions: the column layout of
// a measurement file and the physical field behind each column. Definitions
// are JSON, YAML or TOML documents:
//
//	{
//	  "format_name": "pupitre",
//	  "metadata": {"delimiter": "\t", "file_extension": ".txt"},
//	  "fields": [
//	    {"name": "Field", "field_type": "magnetic_field", "unit": "tesla", "symbol": "B_res"}
//	  ]
//	}
//
// Every Definition owns its own field registry, so column fields of
// different formats never collide.
package format

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/fieldunits/internal/domain/field"
	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/tracing"
	"github.com/zjrosen/fieldunits/internal/units"
)

// Format errors
var (
	ErrUnsupportedFormat = errors.New("unsupported definition format")
	ErrInvalidField      = errors.New("invalid field definition")
	ErrDuplicateFormat   = errors.New("duplicate format name")
)

// FieldDefinition is one column of a format document.
type FieldDefinition struct {
	Name           string   `json:"name" yaml:"name" toml:"name"`
	FieldType      string   `json:"field_type,omitempty" yaml:"field_type,omitempty" toml:"field_type,omitempty"`
	Unit           string   `json:"unit,omitempty" yaml:"unit,omitempty" toml:"unit,omitempty"`
	Symbol         string   `json:"symbol,omitempty" yaml:"symbol,omitempty" toml:"symbol,omitempty"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	LatexSymbol    string   `json:"latex_symbol,omitempty" yaml:"latex_symbol,omitempty" toml:"latex_symbol,omitempty"`
	Aliases        []string `json:"aliases,omitempty" yaml:"aliases,omitempty" toml:"aliases,omitempty"`
	ExcludeRegions []string `json:"exclude_regions,omitempty" yaml:"exclude_regions,omitempty" toml:"exclude_regions,omitempty"`
}

// Metadata describes the physical layout of a data file.
type Metadata struct {
	Description   string `json:"description" yaml:"description" toml:"description"`
	FileExtension string `json:"file_extension" yaml:"file_extension" toml:"file_extension"`
	Delimiter     string `json:"delimiter" yaml:"delimiter" toml:"delimiter"`
	HeaderRow     bool   `json:"header_row" yaml:"header_row" toml:"header_row"`
	Encoding      string `json:"encoding" yaml:"encoding" toml:"encoding"`
	SkipRows      int    `json:"skip_rows" yaml:"skip_rows" toml:"skip_rows"`
	CommentChar   string `json:"comment_char,omitempty" yaml:"comment_char,omitempty" toml:"comment_char,omitempty"`
}

// DefaultMetadata is a tab-separated .txt file with a header row.
func DefaultMetadata() Metadata {
	return Metadata{
		FileExtension: ".txt",
		Delimiter:     "\t",
		HeaderRow:     true,
		Encoding:      "utf-8",
	}
}

// Options controls how a Definition turns field definitions into fields.
type Options struct {
	// Strict fails on the first field that cannot be built instead of
	// logging and skipping it.
	Strict bool

	// System resolves units; nil means units.Default().
	System *units.System

	// Tracer records load and conversion spans; nil disables tracing.
	Tracer trace.Tracer
}

// Definition is a loaded format: metadata plus the fields of its columns.
type Definition struct {
	name     string
	metadata Metadata
	defs     []FieldDefinition
	columns  map[string]*field.Field
	order    []string
	registry *field.Registry
	system   *units.System
	tracer   trace.Tracer
}

// New builds a definition. Fields that cannot be built are skipped with a
// warning unless opts.Strict is set.
func New(ctx context.Context, name string, md Metadata, defs []FieldDefinition, opts Options) (*Definition, error) {
	_, span := tracing.Start(ctx, opts.Tracer, tracing.SpanFormatLoad,
		attribute.String(tracing.AttrFormatName, name))

	sys := opts.System
	if sys == nil {
		sys = units.Default()
	}

	d := &Definition{
		name:     name,
		metadata: md,
		defs:     defs,
		columns:  make(map[string]*field.Field, len(defs)),
		registry: field.NewRegistry(),
		system:   sys,
		tracer:   opts.Tracer,
	}

	for _, fd := range defs {
		f, err := fd.ToField(sys)
		if err == nil {
			err = d.registry.Register(f)
		}
		if err != nil {
			err = fmt.Errorf("format %s column %q: %w", name, fd.Name, err)
			if opts.Strict {
				tracing.Finish(span, err)
				return nil, err
			}
			log.Warn(log.CatFormat, "Skipping field", "format", name, "column", fd.Name, "error", err)
			span.AddEvent(tracing.EventFieldSkipped, trace.WithAttributes(
				attribute.String(tracing.AttrColumn, fd.Name)))
			continue
		}
		d.columns[fd.Name] = f
		d.order = append(d.order, fd.Name)
	}

	span.SetAttributes(attribute.Int(tracing.AttrColumns, len(d.order)))
	tracing.Finish(span, nil)
	log.Debug(log.CatFormat, "Loaded format", "format", name, "fields", len(d.order), "defined", len(defs))
	return d, nil
}

// ToField converts the definition into a field. The column name is the field
// name and, absent a symbol, its symbol. An unknown or unit-incompatible
// field_type yields an untyped field rather than an error.
func (fd FieldDefinition) ToField(sys *units.System) (*field.Field, error) {
	if fd.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidField)
	}
	if sys == nil {
		sys = units.Default()
	}

	unitExpr := fd.Unit
	if unitExpr == "" {
		unitExpr = "dimensionless"
	}
	unit, err := sys.Parse(NormalizeUnit(unitExpr))
	if err != nil {
		return nil, err
	}

	var kind field.Kind
	if fd.FieldType != "" {
		k, ok := field.ParseKind(fd.FieldType)
		switch {
		case !ok:
			log.Debug(log.CatFormat, "Unknown field_type, field left untyped", "field", fd.Name, "field_type", fd.FieldType)
		case !k.IsCompatible(unit):
			log.Warn(log.CatFormat, "Unit incompatible with field_type, field left untyped",
				"field", fd.Name, "unit", unitExpr, "field_type", fd.FieldType)
		default:
			kind = k
		}
	}

	return field.NewBuilder(fd.Name).
		Symbol(fd.Symbol).
		UnitOf(unit).
		Kind(kind).
		Description(fd.Description).
		LatexSymbol(fd.LatexSymbol).
		Aliases(fd.Aliases...).
		ExcludeRegions(fd.ExcludeRegions...).
		WithSystem(sys).
		Build()
}

// Name returns the format name.
func (d *Definition) Name() string { return d.name }

// Metadata returns the file layout.
func (d *Definition) Metadata() Metadata { return d.metadata }

// Definitions returns a copy of the raw field definitions, skipped ones included.
func (d *Definition) Definitions() []FieldDefinition {
	return append([]FieldDefinition(nil), d.defs...)
}

// Column returns the field of a column.
func (d *Definition) Column(name string) (*field.Field, bool) {
	f, ok := d.columns[name]
	return f, ok
}

// HasColumn reports whether a column has a field.
func (d *Definition) HasColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// BySymbol resolves a field through the format's registry, so names,
// symbols and aliases all work.
func (d *Definition) BySymbol(symbol string) (*field.Field, bool) {
	return d.registry.Get(symbol)
}

// Registry exposes the format's registry read-only.
func (d *Definition) Registry() field.Provider { return d.registry }

// Columns returns the column names that have a field, in definition order.
func (d *Definition) Columns() []string {
	return append([]string(nil), d.order...)
}

// Fields returns the column fields in definition order.
func (d *Definition) Fields() []*field.Field {
	out := make([]*field.Field, 0, len(d.order))
	for _, c := range d.order {
		out = append(out, d.columns[c])
	}
	return out
}

// ByKind returns the fields of one kind in definition order.
func (d *Definition) ByKind(kind field.Kind) []*field.Field {
	var out []*field.Field
	for _, c := range d.order {
		if f := d.columns[c]; f.Kind() == kind {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of column fields.
func (d *Definition) Len() int { return len(d.order) }

// Summary renders a human-readable description grouped by kind.
func (d *Definition) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Format: %s\n", d.name)
	fmt.Fprintf(&b, "Description: %s\n", d.metadata.Description)
	fmt.Fprintf(&b, "File extension: %s\n", d.metadata.FileExtension)
	fmt.Fprintf(&b, "Delimiter: %s\n", strconv.Quote(d.metadata.Delimiter))
	fmt.Fprintf(&b, "Fields: %d\n\nField list:", len(d.order))

	groups := make(map[string][]*field.Field)
	for _, f := range d.Fields() {
		g := "untyped"
		if f.Kind() != "" {
			g = strings.ToUpper(string(f.Kind()))
		}
		groups[g] = append(groups[g], f)
	}
	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)

	for _, g := range names {
		fmt.Fprintf(&b, "\n  %s:", g)
		for _, f := range groups[g] {
			fmt.Fprintf(&b, "\n    - %s (%s): %s", f.Name(), f.Symbol(), f.Unit().LongName())
		}
	}
	return b.String()
}

// ToMap returns the document shape of the definition, suitable for
// re-encoding as JSON or YAML.
func (d *Definition) ToMap() map[string]any {
	fields := make([]map[string]any, 0, len(d.defs))
	for _, fd := range d.defs {
		unit := fd.Unit
		if unit == "" {
			unit = "dimensionless"
		}
		fields = append(fields, map[string]any{
			"name":        fd.Name,
			"field_type":  nilIfEmpty(fd.FieldType),
			"unit":        unit,
			"symbol":      nilIfEmpty(fd.Symbol),
			"description": nilIfEmpty(fd.Description),
		})
	}
	return map[string]any{
		"format_name": d.name,
		"metadata": map[string]any{
			"description":    d.metadata.Description,
			"file_extension": d.metadata.FileExtension,
			"delimiter":      d.metadata.Delimiter,
			"header_row":     d.metadata.HeaderRow,
			"encoding":       d.metadata.Encoding,
			"skip_rows":      d.metadata.SkipRows,
			"comment_char":   nilIfEmpty(d.metadata.CommentChar),
		},
		"fields": fields,
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (d *Definition) String() string {
	return fmt.Sprintf("Definition(name=%q, fields=%d)", d.name, len(d.order))
}
