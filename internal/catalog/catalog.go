// Package catalog ships the standard field catalogs: electromagnetic,
// thermal, mechanical, hydraulics and material properties.
//
// Catalogs are embedded YAML documents under data/. Each call to Fields or
// Subset builds fresh *field.Field values, so two registries never share a
// field instance.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	stdpath "path"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/fieldunits/internal/domain/field"
	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/units"
)

//go:embed data
var data embed.FS

// Catalog errors
var (
	ErrCatalogNotFound = errors.New("catalog not found")
	ErrSubsetNotFound  = errors.New("catalog subset not found")
)

// Registrar is the part of a registry catalogs need.
type Registrar interface {
	BulkRegister(fields []*field.Field) error
}

var _ Registrar = (*field.Registry)(nil)

// File is the root structure of a catalog document.
type File struct {
	Catalog Def `yaml:"catalog"`
}

// Def describes one catalog.
type Def struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Subsets     map[string][]string `yaml:"subsets"`
	Fields      []FieldDef          `yaml:"fields"`
}

// FieldDef is one field entry of a catalog document.
type FieldDef struct {
	Name           string         `yaml:"name"`
	Symbol         string         `yaml:"symbol"`
	Unit           string         `yaml:"unit"`
	Kind           string         `yaml:"kind"`
	Description    string         `yaml:"description"`
	Latex          string         `yaml:"latex"`
	Aliases        []string       `yaml:"aliases"`
	ExcludeRegions []string       `yaml:"exclude_regions"`
	Default        *float64       `yaml:"default"`
	Metadata       map[string]any `yaml:"metadata"`
}

// Catalog is a named, ordered collection of field definitions.
type Catalog struct {
	def Def
}

// Name returns the catalog name.
func (c *Catalog) Name() string { return c.def.Name }

// Description returns the one-line catalog description.
func (c *Catalog) Description() string { return c.def.Description }

// Len returns the number of fields in the catalog.
func (c *Catalog) Len() int { return len(c.def.Fields) }

// Fields builds every field of the catalog in declaration order against
// units.Default().
func (c *Catalog) Fields() []*field.Field {
	return c.FieldsIn(nil)
}

// FieldsIn is Fields with units resolved against sys.
func (c *Catalog) FieldsIn(sys *units.System) []*field.Field {
	out := make([]*field.Field, 0, len(c.def.Fields))
	for _, d := range c.def.Fields {
		out = append(out, d.build(sys))
	}
	return out
}

// Subsets returns the subset names, sorted.
func (c *Catalog) Subsets() []string {
	names := make([]string, 0, len(c.def.Subsets))
	for n := range c.def.Subsets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Subset builds the fields of one named subset in subset order.
func (c *Catalog) Subset(name string) ([]*field.Field, error) {
	return c.SubsetIn(nil, name)
}

// SubsetIn is Subset with units resolved against sys.
func (c *Catalog) SubsetIn(sys *units.System, name string) ([]*field.Field, error) {
	members, ok := c.def.Subsets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrSubsetNotFound, c.def.Name, name)
	}
	out := make([]*field.Field, 0, len(members))
	for _, m := range members {
		i := slices.IndexFunc(c.def.Fields, func(d FieldDef) bool { return d.Name == m })
		out = append(out, c.def.Fields[i].build(sys))
	}
	return out, nil
}

// RegisterAll bulk-registers every field of the catalog. A nil sys means
// units.Default().
func (c *Catalog) RegisterAll(reg Registrar, sys *units.System) error {
	if err := reg.BulkRegister(c.FieldsIn(sys)); err != nil {
		return fmt.Errorf("catalog %s: %w", c.def.Name, err)
	}
	log.Debug(log.CatCatalog, "registered catalog", "catalog", c.def.Name, "fields", len(c.def.Fields))
	return nil
}

// RegisterSubset bulk-registers one subset of the catalog.
func (c *Catalog) RegisterSubset(reg Registrar, sys *units.System, subset string) error {
	fields, err := c.SubsetIn(sys, subset)
	if err != nil {
		return err
	}
	if err := reg.BulkRegister(fields); err != nil {
		return fmt.Errorf("catalog %s.%s: %w", c.def.Name, subset, err)
	}
	log.Debug(log.CatCatalog, "registered subset", "catalog", c.def.Name, "subset", subset, "fields", len(fields))
	return nil
}

// Build turns the definition into a field whose units resolve against sys,
// or units.Default() when sys is nil.
func (d FieldDef) Build(sys *units.System) (*field.Field, error) {
	b := field.NewBuilder(d.Name).
		WithSystem(sys).
		Symbol(d.Symbol).
		Unit(d.Unit).
		Kind(field.Kind(d.Kind)).
		Description(d.Description).
		LatexSymbol(d.Latex).
		Aliases(d.Aliases...).
		ExcludeRegions(d.ExcludeRegions...)
	if d.Default != nil {
		b.DefaultValue(*d.Default)
	}
	for k, v := range d.Metadata {
		b.Metadata(k, v)
	}
	return b.Build()
}

// build is Build for definitions already checked by Load.
func (d FieldDef) build(sys *units.System) *field.Field {
	f, err := d.Build(sys)
	if err != nil {
		panic(err)
	}
	return f
}

var (
	loadOnce sync.Once
	loaded   map[string]*Catalog
	loadErr  error
)

func catalogs() (map[string]*Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Load(data)
	})
	return loaded, loadErr
}

// Load reads every data/*.yaml catalog document from fsys and checks that
// each field builds and each subset member exists.
func Load(fsys fs.FS) (map[string]*Catalog, error) {
	result := make(map[string]*Catalog)

	err := fs.WalkDir(fsys, "data", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || stdpath.Ext(path) != ".yaml" {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		var file File
		if err := yaml.Unmarshal(content, &file); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		c, err := validate(file.Catalog)
		if err != nil {
			return fmt.Errorf("catalog in %s: %w", path, err)
		}
		if _, dup := result[c.Name()]; dup {
			return fmt.Errorf("catalog %q defined twice", c.Name())
		}
		result[c.Name()] = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan catalogs: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no catalogs found in data/*.yaml")
	}
	return result, nil
}

func validate(def Def) (*Catalog, error) {
	if def.Name == "" {
		return nil, errors.New("catalog name is required")
	}
	names := make(map[string]struct{}, len(def.Fields))
	for i, fd := range def.Fields {
		if _, err := fd.Build(nil); err != nil {
			return nil, fmt.Errorf("%s field %d: %w", def.Name, i, err)
		}
		names[fd.Name] = struct{}{}
	}
	for subset, members := range def.Subsets {
		for _, m := range members {
			if _, ok := names[m]; !ok {
				return nil, fmt.Errorf("%s.%s: unknown field %q", def.Name, subset, m)
			}
		}
	}
	return &Catalog{def: def}, nil
}

// Lookup returns the named catalog.
func Lookup(name string) (*Catalog, error) {
	all, err := catalogs()
	if err != nil {
		return nil, err
	}
	c, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, name)
	}
	return c, nil
}

// Names returns every catalog name, sorted.
func Names() []string {
	all, err := catalogs()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns every catalog sorted by name.
func All() ([]*Catalog, error) {
	all, err := catalogs()
	if err != nil {
		return nil, err
	}
	out := make([]*Catalog, 0, len(all))
	for _, n := range Names() {
		out = append(out, all[n])
	}
	return out, nil
}

// RegisterNamed registers catalogs or subsets into reg in the given order,
// resolving units against sys (units.Default() when nil). A name is either
// "<catalog>" or "<catalog>.<subset>". It stops at the first failure;
// earlier registrations are kept.
func RegisterNamed(reg Registrar, sys *units.System, names ...string) error {
	for _, n := range names {
		catName, subset, hasSubset := strings.Cut(n, ".")
		c, err := Lookup(catName)
		if err != nil {
			return err
		}
		if hasSubset {
			err = c.RegisterSubset(reg, sys, subset)
		} else {
			err = c.RegisterAll(reg, sys)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Sync makes reg hold exactly the fields of the named catalogs. Fields
// outside the new set are removed and missing ones registered; fields in
// both are left untouched, so subscribers only see the difference followed
// by one ReloadedEvent.
func Sync(reg *field.Registry, sys *units.System, names ...string) (added, removed []string, err error) {
	want := field.NewRegistry()
	defer want.Close()
	if err := RegisterNamed(want, sys, names...); err != nil {
		return nil, nil, err
	}

	for _, f := range reg.List("") {
		if _, ok := want.GetByName(f.Name()); !ok {
			reg.Remove(f.Name())
			removed = append(removed, f.Name())
		}
	}
	for _, f := range want.List("") {
		if _, ok := reg.GetByName(f.Name()); ok {
			continue
		}
		if err := reg.Register(f); err != nil {
			return added, removed, fmt.Errorf("sync catalogs: %w", err)
		}
		added = append(added, f.Name())
	}

	if len(added)+len(removed) > 0 {
		reg.NotifyReloaded()
	}
	log.Info(log.CatCatalog, "catalogs synced", "catalogs", names, "added", len(added), "removed", len(removed))
	return added, removed, nil
}
