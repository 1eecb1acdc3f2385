package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/console"
	"github.com/Zachkp/portfolio/internal/theme"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func submit(t *testing.T, m Model, s string) (Model, tea.Cmd) {
	t.Helper()
	m = typeText(t, m, s)
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNew_ShowsBanner(t *testing.T) {
	m := New(Options{})
	assert.Equal(t, console.Banner, console.Strings(m.session.Transcript()))
	assert.Contains(t, m.View(), "NathanPortfolioOS")
	assert.Equal(t, "> ", m.input.Prompt)
}

func TestSubmit(t *testing.T) {
	m := New(Options{})
	m, _ = submit(t, m, "help")

	lines := console.Strings(m.session.Transcript())
	assert.Contains(t, lines, "> help")
	assert.Contains(t, lines, "Available commands:")
	assert.Empty(t, m.input.Value())
	assert.Equal(t, m.session.Revision(), m.revision)
}

func TestPromptFollowsPrivilege(t *testing.T) {
	m := New(Options{})
	m, _ = submit(t, m, "sudo")
	assert.Equal(t, "# ", m.input.Prompt)
	m, _ = submit(t, m, "sudo exit")
	assert.Equal(t, "> ", m.input.Prompt)
}

func TestHistoryKeys(t *testing.T) {
	m := New(Options{})
	m, _ = submit(t, m, "about")
	m, _ = submit(t, m, "skills")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "skills", m.input.Value())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "about", m.input.Value())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "skills", m.input.Value())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.input.Value())
}

func TestTabCompletion(t *testing.T) {
	tests := []struct {
		typed string
		want  string
	}{
		{"wh", "whoami "},
		{"CL", "clear "},
		{"e", "e"},
		{"zz", "zz"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.typed, func(t *testing.T) {
			m := New(Options{})
			if tt.typed != "" {
				m = typeText(t, m, tt.typed)
			}
			m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
			assert.Equal(t, tt.want, m.input.Value())
		})
	}
}

func TestExitQuitsAfterDelay(t *testing.T) {
	m := New(Options{})
	m, cmd := submit(t, m, "exit")
	assert.False(t, m.Closed())
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.sched.pending())

	m, cmd = update(t, m, timerMsg{id: 1})
	assert.True(t, m.Closed())
	assert.True(t, isQuit(cmd))
	assert.Empty(t, m.View())
}

func TestEscCloses(t *testing.T) {
	m := New(Options{})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.Closed())
	assert.True(t, isQuit(cmd))
}

func TestCtrlCStopsPendingClose(t *testing.T) {
	m := New(Options{})
	m, _ = submit(t, m, "exit")
	require.Equal(t, 1, m.sched.pending())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
	assert.Equal(t, 0, m.sched.pending())

	// A tick that was already in flight is ignored.
	m, _ = update(t, m, timerMsg{id: 1})
	assert.False(t, m.Closed())
}

func TestLinksResolveAgainstBaseURL(t *testing.T) {
	m := New(Options{BaseURL: "http://localhost:8080/"})
	m, _ = submit(t, m, "projects")
	out := m.renderTranscript()
	assert.Contains(t, out, "http://localhost:8080/projects")

	m, _ = submit(t, m, "contact")
	assert.Contains(t, m.renderTranscript(), "mailto:n-hunter@hotmail.com")
}

func TestThemeToggle(t *testing.T) {
	prefs := theme.Open(theme.NewMemory(), nil)
	m := New(Options{Theme: prefs})
	assert.True(t, m.dark)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.False(t, m.dark)

	dark, err := prefs.Dark(context.Background(), localUser)
	require.NoError(t, err)
	assert.False(t, dark)
}

func TestWindowResize(t *testing.T) {
	m := New(Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 96, m.viewport.Width)
	assert.Equal(t, 25, m.viewport.Height)
	assert.True(t, strings.Contains(m.View(), "esc close"))
}

func TestScheduler(t *testing.T) {
	s := newTeaScheduler()
	fired := 0
	a := s.AfterFunc(0, func() { fired++ })
	b := s.AfterFunc(0, func() { fired += 10 })
	assert.NotNil(t, s.flush())
	assert.Nil(t, s.flush())

	assert.True(t, b.Stop())
	assert.False(t, b.Stop())
	s.fire(1)
	s.fire(2)
	assert.Equal(t, 1, fired)
	assert.False(t, a.Stop())
	assert.Equal(t, 0, s.pending())
}

func TestCommonPrefix(t *testing.T) {
	assert.Equal(t, "s", commonPrefix("skills", "sudo"))
	assert.Equal(t, "ex", commonPrefix("exit", "ex"))
	assert.Equal(t, "", commonPrefix("a", "b"))
}
