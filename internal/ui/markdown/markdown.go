// Package markdown renders field documentation for the terminal.
package markdown

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// noMarginStyle is layered over the standard style to drop document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with fieldunits-specific configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a markdown renderer with the given width, styled for the
// terminal's background and color profile. The background is read through
// lipgloss, which caches it before the browser takes over stdin.
func New(width int) (*Renderer, error) {
	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}
	return newRenderer(width,
		glamour.WithStandardStyle(style),
		glamour.WithColorProfile(termenv.ColorProfile()),
	)
}

// NewPlain creates a renderer that emits no ANSI styling, for piped output.
func NewPlain(width int) (*Renderer, error) {
	return newRenderer(width, glamour.WithStandardStyle("notty"))
}

func newRenderer(width int, opts ...glamour.TermRendererOption) (*Renderer, error) {
	opts = append(opts,
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}
