// Package toaster shows short-lived notifications at the bottom of the
// browser, such as fields appearing after a catalog reload.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/fieldunits/internal/ui/overlay"
	"github.com/zjrosen/fieldunits/internal/ui/styles"
)

// Style determines the border color and marker of a toast.
type Style int

const (
	StyleInfo Style = iota
	StyleSuccess
	StyleWarn
	StyleError
)

// DismissMsg hides the toast it was scheduled for.
type DismissMsg struct {
	ID int
}

// Model holds the toaster state. Each Show gets a new ID so a dismissal
// scheduled for an older toast leaves a newer one on screen.
type Model struct {
	message string
	style   Style
	id      int
	visible bool
}

// New creates a hidden toaster.
func New() Model {
	return Model{}
}

// Show displays message until the returned command's DismissMsg arrives.
func (m Model) Show(message string, style Style, after time.Duration) (Model, tea.Cmd) {
	m.id++
	m.message = message
	m.style = style
	m.visible = true

	id := m.id
	return m, tea.Tick(after, func(time.Time) tea.Msg {
		return DismissMsg{ID: id}
	})
}

// Update hides the toast when msg belongs to it.
func (m Model) Update(msg DismissMsg) Model {
	if msg.ID == m.id {
		m.visible = false
		m.message = ""
	}
	return m
}

// Visible reports whether a toast is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text of the visible toast.
func (m Model) Message() string {
	return m.message
}

// View renders the toast box, or "" when hidden.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	color := styles.StatusInfoColor
	marker := "•"
	switch m.style {
	case StyleSuccess:
		color, marker = styles.StatusSuccessColor, "✓"
	case StyleWarn:
		color, marker = styles.StatusWarningColor, "!"
	case StyleError:
		color, marker = styles.StatusErrorColor, "✗"
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Render(marker + " " + m.message)
}

// Overlay draws the toast one line above the bottom edge of bg.
func (m Model) Overlay(bg string, width, height int) string {
	fg := m.View()
	if fg == "" {
		return bg
	}
	return overlay.Place(fg, bg, width, height, overlay.Bottom, 1)
}
