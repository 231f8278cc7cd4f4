package logoverlay

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/fieldunits/internal/log"
)

const (
	debugLine = "2026-03-02T10:45:00 [DEBUG] [units] parsed unit=mT"
	infoLine  = "2026-03-02T10:45:01 [INFO] [config] configuration loaded fields=23"
	warnLine  = "2026-03-02T10:45:02 [WARN] [format] skipped column=Tin9"
	errorLine = "2026-03-02T10:45:03 [ERROR] [watcher] watch failed error=boom"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func filled() Model {
	m := Model{minLevel: log.LevelDebug}
	for _, l := range []string{debugLine, infoLine, warnLine, errorLine, "plain text"} {
		m = m.Append(l + "\n")
	}
	return m.SetSize(120, 40).Toggle()
}

func TestNew_DisabledWithoutLogger(t *testing.T) {
	log.Reset()
	m := New(context.Background())
	require.False(t, m.Enabled())
	require.Nil(t, m.Listen())
}

func TestListen_ReceivesLogEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	log.InitWriter(&buf, log.LevelDebug)
	t.Cleanup(log.Reset)

	m := New(ctx)
	require.True(t, m.Enabled())

	cmd := m.Listen()
	log.Warn(log.CatWatcher, "config watch failed", "path", "config.yaml")

	event, ok := cmd().(log.LogEvent)
	require.True(t, ok)
	m = m.Append(event.Payload)

	entries := m.Entries()
	require.Len(t, entries, 1)
	require.Contains(t, entries[0], "[WARN] [watcher] config watch failed path=config.yaml")
}

func TestReceive_MarksDroppedEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	log.InitWriter(&buf, log.LevelDebug)
	t.Cleanup(log.Reset)

	m := New(ctx)
	// the subscription buffers 64 events; the rest are lost
	for i := range 100 {
		log.Info(log.CatUI, "tick", "n", i)
	}
	for range 64 {
		m = m.Receive(m.Listen()().(log.LogEvent))
	}
	require.Len(t, m.Entries(), 64)

	log.Info(log.CatUI, "after")
	m = m.Receive(m.Listen()().(log.LogEvent))

	entries := m.Entries()
	require.Len(t, entries, 66)
	require.Equal(t, "... 36 log entries dropped", entries[64])
	require.Contains(t, entries[65], "[INFO] [ui] after")
}

func TestLevelFilter(t *testing.T) {
	m := filled()
	require.Len(t, m.Entries(), 5)

	tests := []struct {
		key   string
		level log.Level
		want  []string
	}{
		{"i", log.LevelInfo, []string{infoLine, warnLine, errorLine, "plain text"}},
		{"w", log.LevelWarn, []string{warnLine, errorLine, "plain text"}},
		{"e", log.LevelError, []string{errorLine, "plain text"}},
		{"d", log.LevelDebug, []string{debugLine, infoLine, warnLine, errorLine, "plain text"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, _ = m.Update(key(tt.key))
			require.Equal(t, tt.level, m.MinLevel())
			require.Equal(t, tt.want, m.Entries())
		})
	}
}

func TestUpdate_ClearAndClose(t *testing.T) {
	m := filled()

	m, _ = m.Update(key("c"))
	require.Empty(t, m.Entries())
	require.Contains(t, m.View(), "No logs to display")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.Visible())
	require.Empty(t, m.View())

	// keys are ignored while hidden
	m = m.Append(infoLine)
	m, _ = m.Update(key("c"))
	require.Len(t, m.Entries(), 1)
}

func TestAppend_BoundedBuffer(t *testing.T) {
	var m Model
	for i := 0; i < maxEntries+20; i++ {
		m = m.Append(fmt.Sprintf("2026-03-02T10:45:00 [INFO] [ui] entry %d", i))
	}
	entries := m.Entries()
	require.Len(t, entries, maxEntries)
	require.Contains(t, entries[0], "entry 20")
}

func TestView(t *testing.T) {
	m := filled()
	view := m.View()
	require.Contains(t, view, "Logs")
	require.Contains(t, view, "[e] Error")
	require.Contains(t, view, "skipped column=Tin9")

	bg := ""
	out := m.Overlay(bg)
	require.Contains(t, out, "configuration loaded")
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		line  string
		level log.Level
		known bool
	}{
		{debugLine, log.LevelDebug, true},
		{warnLine, log.LevelWarn, true},
		{errorLine, log.LevelError, true},
		{"no level here", log.LevelDebug, false},
		{"2026 [TRACE] [x] y", log.LevelDebug, false},
	}
	for _, tt := range tests {
		level, known := levelOf(tt.line)
		require.Equal(t, tt.known, known, tt.line)
		require.Equal(t, tt.level, level, tt.line)
	}
}
