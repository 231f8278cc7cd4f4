package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const grid = "AAAAA\nAAAAA\nAAAAA\nAAAAA\nAAAAA"

func TestPlace(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		padY int
		row  int
	}{
		{"center", Center, 0, 2},
		{"top", Top, 0, 0},
		{"top padded", Top, 1, 1},
		{"bottom", Bottom, 0, 4},
		{"bottom padded", Bottom, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(Place("XX", grid, 5, 5, tt.pos, tt.padY), "\n")
			require.Len(t, lines, 5)
			for i, l := range lines {
				if i == tt.row {
					require.Equal(t, "AXXAA", l)
				} else {
					require.Equal(t, "AAAAA", l)
				}
			}
		})
	}
}

func TestPlace_ShortBackground(t *testing.T) {
	out := Place("X", "AB", 5, 3, Center, 0)
	require.Equal(t, []string{"AB", "  X", ""}, strings.Split(out, "\n"))
}

func TestPlace_OversizedForeground(t *testing.T) {
	out := Place("XXXXXXX\nXXXXXXX\nXXXXXXX\nXXXXXXX", "AAA\nAAA", 3, 2, Center, 0)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2, "rows beyond the screen are dropped")
	require.Equal(t, "XXXXXXX", lines[0])
}

func TestPlace_WideRunes(t *testing.T) {
	out := Place("X", "ΩΩΩΩΩ", 5, 1, Center, 0)
	require.Equal(t, "ΩΩXΩΩ", out)
}
