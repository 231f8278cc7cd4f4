package units

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/fieldunits/internal/cachemanager"
	"github.com/zjrosen/fieldunits/internal/log"
)

// Unit system errors
var (
	ErrInvalidUnit       = errors.New("invalid unit")
	ErrIncompatibleUnits = errors.New("incompatible units")
)

// Options configures a System.
type Options struct {
	// CacheTTL bounds how long parsed expressions stay memoized. Zero disables the cache.
	CacheTTL        time.Duration
	CleanupInterval time.Duration
}

// DefaultOptions returns the options used by Default.
func DefaultOptions() Options {
	return Options{
		CacheTTL:        cachemanager.DefaultExpiration,
		CleanupInterval: cachemanager.DefaultCleanupInterval,
	}
}

// System parses, renders and converts unit expressions against a fixed
// definitions table. It is safe for concurrent use.
type System struct {
	byName   map[string]*definition
	bySymbol map[string]*definition
	parsed   *cachemanager.ReadThroughCache[string, Unit, string]
	ttl      time.Duration
}

// New creates a System over the standard definitions table.
func New(opts Options) *System {
	s := &System{
		byName:   make(map[string]*definition),
		bySymbol: make(map[string]*definition),
		ttl:      opts.CacheTTL,
	}
	for _, def := range standardDefinitions() {
		for _, n := range def.names {
			s.byName[n] = def
		}
		for _, sym := range def.symbols {
			s.bySymbol[sym] = def
		}
	}

	cache := cachemanager.NewInMemoryCacheManager[string, Unit]("units", opts.CacheTTL, opts.CleanupInterval)
	s.parsed = cachemanager.NewReadThroughCache[string, Unit, string](cache, s.parse, opts.CacheTTL <= 0)
	return s
}

var (
	defaultSystem *System
	defaultOnce   sync.Once
)

// Default returns the shared System. The definitions table is immutable, so
// sharing it carries no registry state between callers.
func Default() *System {
	defaultOnce.Do(func() {
		defaultSystem = New(DefaultOptions())
	})
	return defaultSystem
}

// Parse resolves a unit expression such as "tesla", "mT", "W/(m*K)" or "m**3/h".
// The empty string and "dimensionless" resolve to Dimensionless.
func (s *System) Parse(spec string) (Unit, error) {
	spec = strings.TrimSpace(spec)
	u, err := s.parsed.GetWithRefresh(context.Background(), spec, spec, s.ttl)
	if err != nil {
		log.Debug(log.CatUnits, "unit parse failed", "spec", spec, "error", err)
		return Unit{}, err
	}
	return u, nil
}

// CacheStats reports how parse requests were served by the expression cache.
func (s *System) CacheStats() cachemanager.Stats {
	return s.parsed.Stats()
}

// MustParse is like Parse but panics on error. Use it for static literals only.
func (s *System) MustParse(spec string) Unit {
	u, err := s.Parse(spec)
	if err != nil {
		panic(err)
	}
	return u
}

func (s *System) parse(_ context.Context, spec string) (Unit, error) {
	tokens, err := tokenize(spec)
	if err != nil {
		return Unit{}, err
	}
	p := &parser{spec: spec, tokens: tokens, lookup: s.lookup}
	return p.parse()
}

// lookup resolves a single unit name: exact names and symbols first, then a
// prefixed form, then an English plural of a long name.
func (s *System) lookup(name string) (term, bool) {
	if def, ok := s.bySymbol[name]; ok {
		return term{def: def, exp: 1}, true
	}
	if def, ok := s.byName[name]; ok {
		return term{def: def, exp: 1}, true
	}
	for i := range prefixes {
		pf := &prefixes[i]
		if rest, ok := strings.CutPrefix(name, pf.symbol); ok && rest != "" {
			if def, ok := s.bySymbol[rest]; ok && def.prefixable {
				return term{def: def, prefix: pf, exp: 1}, true
			}
		}
		if rest, ok := strings.CutPrefix(name, pf.name); ok && rest != "" {
			if def, ok := s.byName[rest]; ok && def.prefixable {
				return term{def: def, prefix: pf, exp: 1}, true
			}
		}
	}
	if singular, ok := strings.CutSuffix(name, "s"); ok && len(singular) > 2 {
		if t, ok := s.lookup(singular); ok && t.def.name() != t.def.symbol() {
			return t, true
		}
	}
	return term{}, false
}

// Render returns the canonical short rendering of u.
func (s *System) Render(u Unit) string {
	return u.String()
}

// Compatible reports whether a and b share a physical dimension.
func (s *System) Compatible(a, b Unit) bool {
	return a.Dimension() == b.Dimension()
}

// Convert converts value from one unit to another. Lone affine units
// (degC, degF) convert through their offset; everything else is linear.
func (s *System) Convert(value float64, from, to Unit) (float64, error) {
	if !s.Compatible(from, to) {
		return 0, fmt.Errorf("%w: cannot convert from %q (%s) to %q (%s)",
			ErrIncompatibleUnits, from.LongName(), from.Dimension(), to.LongName(), to.Dimension())
	}
	fromOffset, toOffset := from.offset(), to.offset()
	if fromOffset == 0 && toOffset == 0 {
		return value * (from.Scale() / to.Scale()), nil
	}
	base := value*from.Scale() + fromOffset
	return (base - toOffset) / to.Scale(), nil
}

// ConvertString parses both unit expressions and converts value between them.
func (s *System) ConvertString(value float64, from, to string) (float64, error) {
	fromUnit, err := s.Parse(from)
	if err != nil {
		return 0, err
	}
	toUnit, err := s.Parse(to)
	if err != nil {
		return 0, err
	}
	return s.Convert(value, fromUnit, toUnit)
}

// CompatibleStrings reports whether two unit expressions share a dimension.
// Unparseable expressions are never compatible.
func (s *System) CompatibleStrings(a, b string) bool {
	ua, err := s.Parse(a)
	if err != nil {
		return false
	}
	ub, err := s.Parse(b)
	if err != nil {
		return false
	}
	return s.Compatible(ua, ub)
}
