// Package browser implements the interactive field browser: a filterable
// field list grouped by category next to a rendered description of the
// selected field. Registry changes arrive as pubsub events and refresh the
// list while the browser runs.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/fieldunits/internal/domain/field"
	"github.com/zjrosen/fieldunits/internal/keys"
	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/presentation"
	"github.com/zjrosen/fieldunits/internal/pubsub"
	"github.com/zjrosen/fieldunits/internal/ui/logoverlay"
	"github.com/zjrosen/fieldunits/internal/ui/markdown"
	"github.com/zjrosen/fieldunits/internal/ui/styles"
	"github.com/zjrosen/fieldunits/internal/ui/toaster"
)

// AllCategories labels the unfiltered category tab.
const AllCategories = "all"

// Pane identifies which side of the browser has focus.
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
)

const (
	minListWidth  = 28
	toastDuration = 3 * time.Second
)

// Model holds the browser state.
type Model struct {
	ctx      context.Context
	provider field.Provider
	events   <-chan pubsub.Event[*field.Field]
	version  uint64 // provider version the list was last read at
	keys     keys.KeyMap

	categories []string // "" first, meaning every category
	category   int
	visible    []*field.Field
	cursor     int
	offset     int // first visible list row

	filter    textinput.Model
	filtering bool

	detail     viewport.Model
	renderer   *markdown.Renderer
	detailName string // field currently rendered into detail
	latex      bool

	help   help.Model
	toast  toaster.Model
	logs   logoverlay.Model
	focus  Pane
	width  int
	height int
	status string
}

// New creates a browser over provider. events may be nil when the registry
// is not expected to change.
func New(ctx context.Context, provider field.Provider, events <-chan pubsub.Event[*field.Field]) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "name, symbol or alias"

	m := Model{
		ctx:      ctx,
		provider: provider,
		events:   events,
		keys:     keys.Browser,
		filter:   ti,
		detail:   viewport.New(0, 0),
		help:     help.New(),
		toast:    toaster.New(),
		logs:     logoverlay.New(ctx),
	}
	m = m.refresh()
	return m
}

// Init starts listening for registry and log events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenRegistry(), m.logs.Listen())
}

func (m Model) listenRegistry() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return pubsub.ListenCmd(m.ctx, m.events)
}

// Selected returns the field under the cursor, or nil when the list is empty.
func (m Model) Selected() *field.Field {
	if m.cursor >= 0 && m.cursor < len(m.visible) {
		return m.visible[m.cursor]
	}
	return nil
}

// Category returns the active category, or AllCategories.
func (m Model) Category() string {
	if m.categories[m.category] == "" {
		return AllCategories
	}
	return m.categories[m.category]
}

// Visible returns the fields shown in the list.
func (m Model) Visible() []*field.Field {
	return m.visible
}

// Focus returns the focused pane.
func (m Model) Focus() Pane {
	return m.focus
}

// Status returns the last status line message.
func (m Model) Status() string {
	return m.status
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil

	case pubsub.Event[*field.Field]:
		// a reload delivers one event per field; the first refresh already
		// reads the state the rest describe
		if !msg.Stale(m.version) {
			log.Debug(log.CatUI, "registry event", "type", msg.Type, "seq", msg.Seq, "fields", m.provider.Len())
			m = m.refresh()
		}
		var cmd tea.Cmd
		m, cmd = m.announce(msg)
		return m, tea.Batch(cmd, m.listenRegistry())

	case toaster.DismissMsg:
		m.toast = m.toast.Update(msg)
		return m, nil

	case log.LogEvent:
		m.logs = m.logs.Receive(msg)
		return m, m.logs.Listen()

	case tea.KeyMsg:
		if m.logs.Visible() {
			var cmd tea.Cmd
			m.logs, cmd = m.logs.Update(msg)
			return m, cmd
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}

	if m.focus == PaneDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

// announce records a registry change in the status and, for a completed
// reload, pops a toast. Single registrations stay in the status line since
// a catalog reload sends one per field.
func (m Model) announce(ev pubsub.Event[*field.Field]) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case ev.Type == pubsub.ReloadedEvent:
		m.status = fmt.Sprintf("catalogs reloaded: %d fields", m.provider.Len())
		m.toast, cmd = m.toast.Show(m.status, toaster.StyleSuccess, toastDuration)
	case ev.Payload != nil:
		m.status = fmt.Sprintf("%s %s", ev.Type, ev.Payload.Name())
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logs):
		if !m.logs.Enabled() {
			var cmd tea.Cmd
			m.toast, cmd = m.toast.Show("debug logging is off (run with --debug)", toaster.StyleInfo, toastDuration)
			return m, cmd
		}
		m.logs = m.logs.Toggle()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m.resizeDetail().clampCursor(), nil
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.focus = PaneList
		cmd := m.filter.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m = m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.SwitchPane):
		if m.focus == PaneList {
			m.focus = PaneDetail
		} else {
			m.focus = PaneList
		}
		return m, nil
	case key.Matches(msg, m.keys.NextCategory):
		m.category = (m.category + 1) % len(m.categories)
		m.cursor, m.offset, m.visible = 0, 0, nil
		return m.refresh(), nil
	case key.Matches(msg, m.keys.PrevCategory):
		m.category = (m.category + len(m.categories) - 1) % len(m.categories)
		m.cursor, m.offset, m.visible = 0, 0, nil
		return m.refresh(), nil
	case key.Matches(msg, m.keys.Latex):
		m.latex = !m.latex
		m.detailName = ""
		return m.syncDetail(), nil
	}

	if m.focus == PaneDetail {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.detail.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.detail.ScrollDown(1)
		case key.Matches(msg, m.keys.Top):
			m.detail.GotoTop()
		case key.Matches(msg, m.keys.Bottom):
			m.detail.GotoBottom()
		default:
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.listRows()
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.listRows()
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.visible) - 1
	default:
		return m, nil
	}
	return m.clampCursor().syncDetail(), nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		return m.refresh(), nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor = 0
	return m.refresh(), cmd
}

// SetSize lays out both panes for a terminal of the given size.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height

	m.help.Width = width
	m.logs = m.logs.SetSize(width, height)
	m = m.resizeDetail()

	_, detailWidth, _ := m.layout()
	r, err := markdown.New(max(detailWidth-4, 20))
	if err != nil {
		log.ErrorErr(log.CatUI, "markdown renderer unavailable", err)
	}
	m.renderer = r
	m.detailName = ""
	return m.clampCursor().syncDetail()
}

func (m Model) resizeDetail() Model {
	_, detailWidth, panelHeight := m.layout()
	m.detail.Width = max(detailWidth-2, 1)
	m.detail.Height = max(panelHeight-2, 1)
	return m
}

// refresh rebuilds categories and the visible list from the provider,
// keeping the cursor on the same field when it is still visible.
func (m Model) refresh() Model {
	var current string
	if f := m.Selected(); f != nil {
		current = f.Name()
	}

	m.version = m.provider.Version()
	active := ""
	if m.categories != nil {
		active = m.categories[m.category]
	}
	m.categories = append([]string{""}, m.provider.Categories()...)
	m.category = 0
	for i, c := range m.categories {
		if c == active {
			m.category = i
		}
	}

	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = make([]*field.Field, 0, m.provider.Len())
	for _, f := range m.provider.List(m.categories[m.category]) {
		if matches(f, query) {
			m.visible = append(m.visible, f)
		}
	}

	for i, f := range m.visible {
		if f.Name() == current {
			m.cursor = i
		}
	}
	m.detailName = ""
	return m.clampCursor().syncDetail()
}

func matches(f *field.Field, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(f.Name()), query) ||
		strings.Contains(strings.ToLower(f.Symbol()), query) ||
		strings.Contains(strings.ToLower(f.Description()), query) {
		return true
	}
	for _, a := range f.Aliases() {
		if strings.Contains(strings.ToLower(a), query) {
			return true
		}
	}
	return false
}

func (m Model) clampCursor() Model {
	m.cursor = max(min(m.cursor, len(m.visible)-1), 0)

	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(min(m.offset, len(m.visible)-rows), 0)
	return m
}

// syncDetail renders the selected field into the detail viewport when the
// selection changed since the last render.
func (m Model) syncDetail() Model {
	f := m.Selected()
	if f == nil {
		m.detailName = ""
		m.detail.SetContent(styles.HintStyle.Render("No fields match."))
		return m
	}
	if f.Name() == m.detailName {
		return m
	}

	doc := fmt.Sprintf("**Label**: `%s`\n\n", f.FormatLabelFor(f.Unit(), m.latex)) +
		presentation.RenderFieldMarkdown(presentation.FromField(f))

	content := doc
	if m.renderer != nil {
		out, err := m.renderer.Render(doc)
		if err != nil {
			log.ErrorErr(log.CatUI, "render field description", err, "field", f.Name())
		} else {
			content = out
		}
	}
	m.detail.SetContent(content)
	m.detail.GotoTop()
	m.detailName = f.Name()
	return m
}

func (m Model) layout() (listWidth, detailWidth, panelHeight int) {
	listWidth = max(m.width*2/5, minListWidth)
	detailWidth = max(m.width-listWidth, 1)
	footer := 1
	if m.help.ShowAll {
		footer = lipgloss.Height(m.help.View(m.keys))
	}
	// the category tabs take one line
	panelHeight = max(m.height-1-footer, 3)
	return listWidth, detailWidth, panelHeight
}

// listRows is the number of field rows the list panel can show.
func (m Model) listRows() int {
	_, _, panelHeight := m.layout()
	rows := panelHeight - 2
	if m.filtering || m.filter.Value() != "" {
		rows--
	}
	return max(rows, 1)
}

// View renders the browser.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	listWidth, detailWidth, panelHeight := m.layout()

	list := styles.RenderPanel(m.renderList(listWidth-2), fmt.Sprintf("Fields (%d)", len(m.visible)),
		listWidth, panelHeight, m.focus == PaneList)
	detailTitle := "Detail"
	if f := m.Selected(); f != nil {
		detailTitle = f.Name()
	}
	detail := styles.RenderPanel(m.detail.View(), detailTitle, detailWidth, panelHeight, m.focus == PaneDetail)

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		lipgloss.JoinHorizontal(lipgloss.Top, list, detail),
		m.renderFooter(),
	)
	view = m.toast.Overlay(view, m.width, m.height)
	return m.logs.Overlay(view)
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(m.categories))
	for i, c := range m.categories {
		if c == "" {
			c = AllCategories
		}
		if i == m.category {
			tabs[i] = styles.CategoryActiveStyle.Render(c)
		} else {
			tabs[i] = styles.CategoryInactiveStyle.Render(c)
		}
	}
	return styles.Truncate(" "+strings.Join(tabs, "  "), m.width)
}

func (m Model) renderList(width int) string {
	var b strings.Builder
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	end := min(m.offset+m.listRows(), len(m.visible))
	for i := m.offset; i < end; i++ {
		f := m.visible[i]
		symbol := styles.SymbolStyle.Render(f.Symbol())
		row := styles.Truncate(f.Name(), max(width-lipgloss.Width(f.Symbol())-3, 1)) + " " + symbol
		if i == m.cursor {
			b.WriteString(styles.SelectionIndicatorStyle.Render(">") + row)
		} else {
			b.WriteString(" " + row)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderFooter() string {
	if m.help.ShowAll {
		return m.help.View(m.keys)
	}
	footer := m.help.View(m.keys)
	if m.status != "" {
		footer = styles.StatusBarStyle.Render(m.status) + footer
	}
	return footer
}
