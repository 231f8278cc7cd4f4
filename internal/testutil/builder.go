// Package testutil builds field registries and fixture files for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/fieldunits/internal/domain/field"
)

// FieldOption configures a field added through the Builder.
type FieldOption func(*field.Builder)

// Kind sets the field kind.
func Kind(k field.Kind) FieldOption {
	return func(b *field.Builder) { b.Kind(k) }
}

// Category sets the field category.
func Category(c string) FieldOption {
	return func(b *field.Builder) { b.Category(c) }
}

// Description sets the field description.
func Description(d string) FieldOption {
	return func(b *field.Builder) { b.Description(d) }
}

// Aliases sets the field aliases.
func Aliases(a ...string) FieldOption {
	return func(b *field.Builder) { b.Aliases(a...) }
}

// Latex sets the LaTeX symbol.
func Latex(s string) FieldOption {
	return func(b *field.Builder) { b.LatexSymbol(s) }
}

// Builder accumulates fields and registers them in order.
type Builder struct {
	t      *testing.T
	fields []*field.Field
}

// NewBuilder creates a builder for t.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithField adds a field. Invalid definitions fail the test.
func (b *Builder) WithField(name, symbol, unit string, opts ...FieldOption) *Builder {
	b.t.Helper()
	fb := field.NewBuilder(name).Symbol(symbol).Unit(unit)
	for _, opt := range opts {
		opt(fb)
	}
	f, err := fb.Build()
	require.NoError(b.t, err, "building field %q", name)
	b.fields = append(b.fields, f)
	return b
}

// Fields returns the accumulated fields.
func (b *Builder) Fields() []*field.Field {
	return b.fields
}

// Build registers the fields in a new registry that is closed when the
// test ends.
func (b *Builder) Build() *field.Registry {
	b.t.Helper()
	reg := field.NewRegistry()
	b.t.Cleanup(reg.Close)
	require.NoError(b.t, reg.BulkRegister(b.fields))
	return reg
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}
