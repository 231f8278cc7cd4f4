package format

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/tracing"
	"github.com/zjrosen/fieldunits/internal/units"
)

// Table errors
var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNoField       = errors.New("column has no field")
	ErrNotNumeric    = errors.New("non-numeric cell")
	ErrBadTarget     = errors.New("invalid conversion target")
)

// Table is a data file read through a Definition. Cells are kept as text;
// columns are parsed when converted.
type Table struct {
	def    *Definition
	header []string
	rows   [][]string
	units  map[string]units.Unit
}

// ReadTable reads a delimited data file laid out as def.Metadata describes.
// Single-character delimiters go through encoding/csv; a blank or
// multi-character delimiter splits rows on runs of whitespace.
func ReadTable(ctx context.Context, r io.Reader, def *Definition) (*Table, error) {
	_, span := tracing.Start(ctx, def.tracer, tracing.SpanTableRead,
		attribute.String(tracing.AttrFormatName, def.name))

	records, err := readRecords(r, def.metadata)
	if err != nil {
		tracing.Finish(span, err)
		return nil, err
	}

	t := &Table{def: def, units: make(map[string]units.Unit)}
	if def.metadata.HeaderRow && len(records) > 0 {
		t.header, records = records[0], records[1:]
	} else {
		t.header = positionalHeader(def, records)
	}
	t.rows = records

	for _, col := range t.header {
		if f, ok := def.Column(col); ok {
			t.units[col] = f.Unit()
		}
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrRows, len(t.rows)),
		attribute.Int(tracing.AttrColumns, len(t.header)),
	)
	tracing.Finish(span, nil)
	log.Debug(log.CatFormat, "Read table", "format", def.name, "rows", len(t.rows), "columns", len(t.header))
	return t, nil
}

func readRecords(r io.Reader, md Metadata) ([][]string, error) {
	br := bufio.NewReader(r)
	for i := 0; i < md.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("skip row %d: %w", i+1, err)
		}
	}

	delim := md.Delimiter
	if utf8.RuneCountInString(delim) != 1 || delim == " " {
		return readWhitespace(br, md.CommentChar)
	}

	cr := csv.NewReader(br)
	cr.Comma, _ = utf8.DecodeRuneInString(delim)
	if md.CommentChar != "" {
		cr.Comment, _ = utf8.DecodeRuneInString(md.CommentChar)
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = cr.Comma != '\t'
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return records, nil
}

func readWhitespace(r io.Reader, comment string) ([][]string, error) {
	var records [][]string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || (comment != "" && strings.HasPrefix(line, comment)) {
			continue
		}
		records = append(records, strings.Fields(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return records, nil
}

// positionalHeader names headerless columns after the definition's columns
// when the widths agree, and col1..colN otherwise.
func positionalHeader(def *Definition, records [][]string) []string {
	width := 0
	if len(records) > 0 {
		width = len(records[0])
	}
	cols := def.Columns()
	if len(cols) == width {
		return cols
	}
	header := make([]string, width)
	for i := range header {
		header[i] = "col" + strconv.Itoa(i+1)
	}
	return header
}

// Definition returns the format the table was read with.
func (t *Table) Definition() *Definition { return t.def }

// Header returns the column names in file order.
func (t *Table) Header() []string { return append([]string(nil), t.header...) }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Unit returns the current unit of a column that has a field.
func (t *Table) Unit(col string) (units.Unit, bool) {
	u, ok := t.units[col]
	return u, ok
}

func (t *Table) index(col string) (int, error) {
	for i, h := range t.header {
		if h == col {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
}

// Column parses a column as numbers. Short rows are an error.
func (t *Table) Column(col string) ([]float64, error) {
	idx, err := t.index(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		if idx >= len(row) {
			return nil, fmt.Errorf("%w: row %d has no %q cell", ErrNotNumeric, i+1, col)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d column %q: %q", ErrNotNumeric, i+1, col, row[idx])
		}
		out[i] = v
	}
	return out, nil
}

// ConvertColumns returns a copy of the table with each column named in
// targets converted to its target unit through the column's field. Columns
// are converted in name order; the first failure aborts and leaves the
// receiver untouched.
func (t *Table) ConvertColumns(ctx context.Context, targets map[string]string) (*Table, error) {
	ctx, span := tracing.Start(ctx, t.def.tracer, tracing.SpanTableConvert,
		attribute.String(tracing.AttrFormatName, t.def.name),
		attribute.Int(tracing.AttrRows, len(t.rows)),
		attribute.Int(tracing.AttrColumns, len(targets)),
	)

	out := t.clone()
	cols := make([]string, 0, len(targets))
	for c := range targets {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	for _, col := range cols {
		if err := out.convertColumn(ctx, col, targets[col]); err != nil {
			tracing.Finish(span, err)
			return nil, err
		}
		span.AddEvent(tracing.EventColumnConverted, trace.WithAttributes(
			attribute.String(tracing.AttrColumn, col),
			attribute.String(tracing.AttrToUnit, targets[col]),
		))
	}

	tracing.Finish(span, nil)
	return out, nil
}

func (t *Table) convertColumn(ctx context.Context, col, to string) (err error) {
	_, span := tracing.Start(ctx, t.def.tracer, tracing.SpanPrefixColumn+col,
		attribute.String(tracing.AttrColumn, col),
		attribute.String(tracing.AttrToUnit, to),
	)
	defer func() { tracing.Finish(span, err) }()

	f, ok := t.def.Column(col)
	if !ok {
		if _, err := t.index(col); err != nil {
			return err
		}
		return fmt.Errorf("%w: %q", ErrNoField, col)
	}
	span.SetAttributes(
		attribute.String(tracing.AttrFieldName, f.Name()),
		attribute.String(tracing.AttrFromUnit, t.units[col].String()),
	)

	target, err := t.def.system.Parse(NormalizeUnit(to))
	if err != nil {
		return fmt.Errorf("column %q: %w", col, err)
	}
	values, err := t.Column(col)
	if err != nil {
		return err
	}

	// Cells hold values in the column's current unit, which differs from the
	// field's unit once a column has been converted.
	current := t.units[col]
	rebase := current.String() != f.Unit().String()
	converted := make([]float64, len(values))
	for i, v := range values {
		if rebase {
			if v, err = t.def.system.Convert(v, current, f.Unit()); err != nil {
				return fmt.Errorf("column %q: %w", col, err)
			}
		}
		if converted[i], err = f.ConvertTo(v, target); err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
	}

	idx, _ := t.index(col)
	for i, v := range converted {
		t.rows[i][idx] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	t.units[col] = target
	log.Debug(log.CatFormat, "Converted column", "column", col, "to", target.String(), "rows", len(converted))
	return nil
}

func (t *Table) clone() *Table {
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rows[i] = append([]string(nil), r...)
	}
	u := make(map[string]units.Unit, len(t.units))
	for k, v := range t.units {
		u[k] = v
	}
	return &Table{def: t.def, header: append([]string(nil), t.header...), rows: rows, units: u}
}

// Labels returns one header label per column: "<symbol> [<unit>]" for
// columns with a field, the raw column name otherwise.
func (t *Table) Labels(useLatex bool) []string {
	out := make([]string, len(t.header))
	for i, col := range t.header {
		f, ok := t.def.Column(col)
		if !ok {
			out[i] = col
			continue
		}
		out[i] = f.FormatLabelFor(t.units[col], useLatex)
	}
	return out
}

// WriteOptions controls Table.Write.
type WriteOptions struct {
	// Labels replaces column names with field labels.
	Labels   bool
	UseLatex bool
}

// Write encodes the table with the definition's delimiter, tab when the
// definition splits on whitespace.
func (t *Table) Write(w io.Writer, opts WriteOptions) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if d := t.def.metadata.Delimiter; utf8.RuneCountInString(d) == 1 && d != " " {
		cw.Comma, _ = utf8.DecodeRuneInString(d)
	}

	header := t.header
	if opts.Labels {
		header = t.Labels(opts.UseLatex)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// ParseTargets parses "column=unit" pairs.
func ParseTargets(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		col, unit, ok := strings.Cut(p, "=")
		col, unit = strings.TrimSpace(col), strings.TrimSpace(unit)
		if !ok || col == "" || unit == "" {
			return nil, fmt.Errorf("%w: %q (want column=unit)", ErrBadTarget, p)
		}
		out[col] = unit
	}
	return out, nil
}
