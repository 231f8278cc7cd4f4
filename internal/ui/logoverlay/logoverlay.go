// Package logoverlay provides an in-browser viewer for recent debug log
// entries. Entries arrive through the log broker while debug logging is on.
package logoverlay

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/ui/overlay"
	"github.com/zjrosen/fieldunits/internal/ui/styles"
)

const (
	maxEntries        = 500
	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40
)

type entry struct {
	level log.Level
	known bool // level parsed from the entry
	text  string
}

// Model is the log overlay state.
type Model struct {
	listener *log.LogListener
	entries  []entry
	visible  bool
	minLevel log.Level
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden overlay. It subscribes to log events when a logger
// is installed; otherwise the overlay stays disabled.
func New(ctx context.Context) Model {
	return Model{
		listener: log.NewListener(ctx),
		minLevel: log.LevelDebug,
	}
}

// Enabled reports whether log events are being received.
func (m Model) Enabled() bool {
	return m.listener != nil
}

// Listen waits for the next log event. Re-issue it after each event.
func (m Model) Listen() tea.Cmd {
	if m.listener == nil {
		return nil
	}
	return m.listener.Listen()
}

// Receive records a log event, preceded by a marker when the listener lost
// entries to a full subscription buffer since the previous event.
func (m Model) Receive(event log.LogEvent) Model {
	if m.listener != nil {
		if n := m.listener.TakeMissed(); n > 0 {
			m = m.Append(fmt.Sprintf("... %d log entries dropped", n))
		}
	}
	return m.Append(event.Payload)
}

// Append records one formatted log line, dropping the oldest entries past
// the buffer size.
func (m Model) Append(text string) Model {
	e := entry{text: strings.TrimSuffix(text, "\n")}
	e.level, e.known = levelOf(e.text)

	m.entries = append(m.entries, e)
	if len(m.entries) > maxEntries {
		m.entries = slices.Clone(m.entries[len(m.entries)-maxEntries:])
	}
	if m.visible {
		m.refreshViewport()
	}
	return m
}

// Entries returns the buffered lines that pass the level filter.
func (m Model) Entries() []string {
	var out []string
	for _, e := range m.entries {
		if m.matches(e) {
			out = append(out, e.text)
		}
	}
	return out
}

// MinLevel returns the active level filter.
func (m Model) MinLevel() log.Level {
	return m.minLevel
}

// Update handles keys while the overlay is visible.
func (m Model) Update(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg.String() {
	case "c":
		m.entries = nil
	case "d":
		m.minLevel = log.LevelDebug
	case "i":
		m.minLevel = log.LevelInfo
	case "w":
		m.minLevel = log.LevelWarn
	case "e":
		m.minLevel = log.LevelError
	case "j", "down":
		m.viewport.ScrollDown(1)
		return m, nil
	case "k", "up":
		m.viewport.ScrollUp(1)
		return m, nil
	case "g":
		m.viewport.GotoTop()
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+x", "esc":
		m.visible = false
		return m, nil
	default:
		return m, nil
	}
	m.refreshViewport()
	return m, nil
}

// Visible returns whether the overlay is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Toggle shows or hides the overlay.
func (m Model) Toggle() Model {
	m.visible = !m.visible
	if m.visible {
		m.refreshViewport()
	}
	return m
}

// SetSize records the screen size the overlay is centered in.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.refreshViewport()
	return m
}

// View renders the overlay box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	width := m.boxWidth()

	title := lipgloss.NewStyle().Bold(true).Foreground(styles.PanelTitleColor).PaddingLeft(1).Render("Logs")
	divider := lipgloss.NewStyle().Foreground(styles.BorderDefaultColor).Render(strings.Repeat("─", width))

	body := strings.Join([]string{title, divider, m.viewport.View(), divider, m.filterHint()}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderFocusColor).
		Width(width).
		Render(body)
}

// Overlay renders the overlay centered on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(m.View(), bg, m.width, m.height, overlay.Center, 0)
}

func (m *Model) refreshViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// title, two dividers, hint and border take six lines
	height := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)
	width := m.boxWidth() - 2

	m.viewport = viewport.New(width, height)
	m.viewport.SetContent(m.content(width))
	m.viewport.GotoBottom()
}

func (m Model) content(width int) string {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if m.matches(e) {
			lines = append(lines, colorize(e, width))
		}
	}
	if len(lines) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true).Render("No logs to display")
	}
	return strings.Join(lines, "\n")
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

// matches keeps entries at or above the filter level. Lines without a
// recognizable level are always shown.
func (m Model) matches(e entry) bool {
	return !e.known || e.level >= m.minLevel
}

// levelOf reads the level from a "<time> [LEVEL] [category] msg" line.
func levelOf(text string) (log.Level, bool) {
	_, rest, ok := strings.Cut(text, " [")
	if !ok {
		return log.LevelDebug, false
	}
	name, _, ok := strings.Cut(rest, "]")
	if !ok {
		return log.LevelDebug, false
	}
	return log.ParseLevel(name)
}

func colorize(e entry, width int) string {
	text := e.text
	if ansi.StringWidth(text) > width {
		text = ansi.Truncate(text, width, "...")
	}

	color := styles.TextPrimaryColor
	if e.known {
		switch e.level {
		case log.LevelError:
			color = styles.StatusErrorColor
		case log.LevelWarn:
			color = styles.StatusWarningColor
		case log.LevelInfo:
			color = styles.StatusInfoColor
		case log.LevelDebug:
			color = styles.TextMutedColor
		}
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func (m Model) filterHint() string {
	hint := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)

	parts := []string{hint.Render("[c] Clear")}
	for _, f := range []struct {
		label string
		level log.Level
	}{
		{"[d] Debug", log.LevelDebug},
		{"[i] Info", log.LevelInfo},
		{"[w] Warn", log.LevelWarn},
		{"[e] Error", log.LevelError},
	} {
		if f.level == m.minLevel {
			parts = append(parts, active.Render(f.label))
		} else {
			parts = append(parts, hint.Render(f.label))
		}
	}
	return strings.Join(parts, "  ")
}
