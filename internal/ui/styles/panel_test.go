package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPanel_Basic(t *testing.T) {
	result := RenderPanel("magnetic_field", "Fields", 24, 5, false)

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "╭"), "missing top-left corner")
	assert.Contains(t, lines[0], "Fields")
	assert.Contains(t, lines[1], "magnetic_field")
	assert.True(t, strings.HasPrefix(lines[4], "╰"), "missing bottom-left corner")

	for i, l := range lines {
		assert.Equal(t, 24, lipgloss.Width(l), "line %d width", i)
	}
}

func TestRenderPanel_ClipsOverflow(t *testing.T) {
	content := strings.Repeat("row\n", 20)
	lines := strings.Split(RenderPanel(content, "Detail", 12, 6, true), "\n")
	require.Len(t, lines, 6)
}

func TestRenderPanel_UnicodeContent(t *testing.T) {
	result := RenderPanel("σ  S/m\nρ  Ω·m", "Symbols", 16, 4, false)
	for i, l := range strings.Split(result, "\n") {
		assert.Equal(t, 16, lipgloss.Width(l), "line %d width", i)
	}
}

func TestPanelTop(t *testing.T) {
	border := lipgloss.NewStyle()
	title := lipgloss.NewStyle()

	tests := []struct {
		name       string
		title      string
		innerWidth int
		wantTitle  bool
	}{
		{"normal", "Fields", 20, true},
		{"empty title", "", 20, false},
		{"narrow", "Fields", 3, false},
		{"just enough", "F", 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := panelTop(tt.title, tt.innerWidth, border, title)
			assert.True(t, strings.HasPrefix(got, "╭"))
			assert.True(t, strings.HasSuffix(got, "╮"))
			assert.Equal(t, tt.innerWidth+2, lipgloss.Width(got))
			if tt.wantTitle {
				assert.Contains(t, got, tt.title)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "tesla", 10, "tesla"},
		{"exact", "tesla", 5, "tesla"},
		{"truncate", "electromagnetic", 8, "elect..."},
		{"very short", "tesla", 3, "..."},
		{"minimal", "tesla", 1, "."},
		{"zero", "tesla", 0, ""},
		{"wide runes", "Ω·m Ω·m Ω·m", 6, "Ω·m..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.maxWidth))
		})
	}
}
