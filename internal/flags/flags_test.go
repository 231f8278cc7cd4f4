package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "explicitly enabled",
			registry: New(map[string]bool{FlagStrictFormatUnits: true}),
			flag:     FlagStrictFormatUnits,
			expected: true,
		},
		{
			name:     "explicitly disabled overrides default",
			registry: New(map[string]bool{FlagSymbolFallback: false}),
			flag:     FlagSymbolFallback,
			expected: false,
		},
		{
			name:     "missing flag takes its default",
			registry: New(map[string]bool{}),
			flag:     FlagSymbolFallback,
			expected: true,
		},
		{
			name:     "default off",
			registry: New(nil),
			flag:     FlagStrictFormatUnits,
			expected: false,
		},
		{
			name:     "unknown flag",
			registry: New(map[string]bool{FlagStrictFormatUnits: true}),
			flag:     "unit-guessing",
			expected: false,
		},
		{
			name:     "nil registry",
			registry: nil,
			flag:     FlagSymbolFallback,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_UnknownConfigFlagsAreKept(t *testing.T) {
	r := New(map[string]bool{"experimental": true})
	require.True(t, r.Enabled("experimental"))
	require.Len(t, r.All(), len(Known())+1)
}

func TestRegistry_All_ReturnsCopy(t *testing.T) {
	r := New(map[string]bool{FlagStrictFormatUnits: true})

	all := r.All()
	all[FlagStrictFormatUnits] = false
	all["new-flag"] = true

	require.True(t, r.Enabled(FlagStrictFormatUnits))
	require.False(t, r.Enabled("new-flag"))
	require.Equal(t, map[string]bool{FlagStrictFormatUnits: true, FlagSymbolFallback: true}, r.All())
}

func TestRegistry_All_Nil(t *testing.T) {
	var r *Registry
	require.Equal(t, map[string]bool{}, r.All())
}

func TestKnown(t *testing.T) {
	require.Equal(t, []string{FlagStrictFormatUnits, FlagSymbolFallback}, Known())
	for _, name := range Known() {
		require.NotEmpty(t, Describe(name))
		_, ok := Defaults()[name]
		require.True(t, ok, "%s needs a default", name)
	}
	require.Empty(t, Describe("nope"))
}
