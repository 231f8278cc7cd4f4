package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const doc = "# MagneticField\n\n**Symbol**: `B`\n\nMagnetic flux density of the resistive magnet, measured at the center of the bore."

func TestNewPlain(t *testing.T) {
	r, err := NewPlain(40)
	require.NoError(t, err)
	require.Equal(t, 40, r.Width())

	out, err := r.Render(doc)
	require.NoError(t, err)
	require.NotContains(t, out, "\x1b[")
	require.Contains(t, out, "MagneticField")
	require.Contains(t, out, "Symbol")

	for _, line := range strings.Split(out, "\n") {
		require.LessOrEqual(t, len([]rune(strings.TrimRight(line, " "))), 40, "wrapped: %q", line)
	}
}

func TestNew(t *testing.T) {
	r, err := New(60)
	require.NoError(t, err)

	out, err := r.Render(doc)
	require.NoError(t, err)
	require.Contains(t, out, "resistive magnet")
}
