// Package flags holds the feature flags read from the `flags` config section.
// Flags are read-only after initialization; unknown flags are off.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/fieldunits/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagStrictFormatUnits makes format loading fail on a field whose unit
	// cannot be resolved, instead of logging and skipping it.
	FlagStrictFormatUnits = "strict-format-units"

	// FlagSymbolFallback lets the legacy data adapter resolve an identifier
	// through the field registry (name, symbol, alias) when the legacy unit
	// map has no entry for it.
	FlagSymbolFallback = "symbol-fallback"
)

var descriptions = map[string]string{
	FlagStrictFormatUnits: "fail format loading on unresolvable units instead of skipping the field",
	FlagSymbolFallback:    "resolve legacy conversions through registry symbols and aliases",
}

// Known returns the names of every flag this build understands, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(descriptions))
}

// Describe returns the one-line help text of a known flag.
func Describe(name string) string {
	return descriptions[name]
}

// Defaults returns the value every known flag takes when config omits it.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagStrictFormatUnits: false,
		FlagSymbolFallback:    true,
	}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. Known flags missing from the map
// take their Defaults value. A nil map yields the defaults alone.
func New(flags map[string]bool) *Registry {
	merged := Defaults()
	maps.Copy(merged, flags)
	r := &Registry{flags: merged}
	for name := range flags {
		if _, ok := descriptions[name]; !ok {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.All())
	return r
}

// Enabled reports whether the named flag is on. Unknown flags and a nil
// registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags. Returns an empty map if the registry is nil.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}
