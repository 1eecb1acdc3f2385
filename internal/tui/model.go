// Package tui runs the portfolio console in a terminal.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/console"
	"github.com/Zachkp/portfolio/internal/theme"
)

const localUser = "terminal"

// Options configures the terminal console.
type Options struct {
	// BaseURL prefixes site-relative links, e.g. "http://localhost:8080".
	BaseURL   string
	ExitDelay time.Duration
	Registry  *console.Registry
	Theme     *theme.Preferences
	Logger    *zap.Logger
}

// Model is the bubbletea model wrapping one console session.
type Model struct {
	session  *console.Session
	sched    *teaScheduler
	input    textinput.Model
	viewport viewport.Model
	styles   styles
	opts     Options

	dark     bool
	revision uint64
	width    int
	height   int
}

// New mounts a session and returns the model driving it.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Theme == nil {
		opts.Theme = theme.Open(theme.NewMemory(), opts.Logger)
	}

	sched := newTeaScheduler()
	sessionOpts := []console.SessionOption{console.WithScheduler(sched)}
	if opts.Registry != nil {
		sessionOpts = append(sessionOpts, console.WithRegistry(opts.Registry))
	}
	if opts.ExitDelay > 0 {
		sessionOpts = append(sessionOpts, console.WithExitDelay(opts.ExitDelay))
	}

	dark, err := opts.Theme.Dark(context.Background(), localUser)
	if err != nil {
		opts.Logger.Warn("loading theme preference", zap.Error(err))
	}

	in := textinput.New()
	in.Placeholder = `type "help"`
	in.Focus()

	m := Model{
		session:  console.Mount(nil, sessionOpts...),
		sched:    sched,
		input:    in,
		viewport: viewport.New(80, 20),
		opts:     opts,
		dark:     dark,
		width:    80,
		height:   24,
	}
	m.applyTheme()
	m.revision = m.session.Revision()
	m.viewport.SetContent(m.renderTranscript())
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()

	case timerMsg:
		m.sched.fire(msg.id)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.session.Unmount()
			return m, tea.Quit
		case tea.KeyEsc:
			m.session.PointerDown(console.TargetOutside)
		case tea.KeyEnter:
			m.session.SetInput(m.input.Value())
			m.session.SubmitInput()
			m.syncInput()
		case tea.KeyUp:
			m.session.HistoryPrev()
			m.syncInput()
		case tea.KeyDown:
			m.session.HistoryNext()
			m.syncInput()
		case tea.KeyTab:
			m.complete()
		case tea.KeyCtrlT:
			m.toggleTheme()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.session.SetInput(m.input.Value())
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.session.Closed() {
		return m, tea.Quit
	}
	m.refresh()
	cmds = append(cmds, m.sched.flush())
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.session.Closed() {
		return ""
	}
	title := m.styles.title.Render(console.Banner[0])
	body := m.styles.frame.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.input.View(),
	))
	help := m.styles.help.Render("enter run • ↑/↓ history • tab complete • ctrl+t theme • esc close")
	return lipgloss.JoinVertical(lipgloss.Left, title, body, help)
}

// Closed reports whether the session asked to close.
func (m Model) Closed() bool {
	return m.session.Closed()
}

// syncInput copies the session's buffer into the text field.
func (m *Model) syncInput() {
	m.input.SetValue(m.session.Input())
	m.input.CursorEnd()
}

// refresh redraws the transcript when it changed and keeps the prompt
// in step with the privilege flag.
func (m *Model) refresh() {
	if m.session.Elevated() {
		m.input.PromptStyle = m.styles.root
	} else {
		m.input.PromptStyle = m.styles.prompt
	}
	m.input.Prompt = m.session.Prompt() + " "

	if rev := m.session.Revision(); rev != m.revision {
		m.revision = rev
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
	}
}

func (m *Model) layout() {
	// Title, help and the frame's border and input rows.
	chrome := 1 + 1 + 2 + 1
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 2
}

// complete extends the input to the longest prefix shared by every
// matching command.
func (m *Model) complete() {
	prefix := strings.ToLower(strings.TrimSpace(m.input.Value()))
	if prefix == "" {
		return
	}
	matches := m.session.Registry().Suggest(prefix)
	if len(matches) == 0 {
		return
	}
	common := matches[0]
	for _, s := range matches[1:] {
		common = commonPrefix(common, s)
	}
	if len(matches) == 1 {
		common += " "
	}
	m.input.SetValue(common)
	m.input.CursorEnd()
	m.session.SetInput(common)
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func (m *Model) toggleTheme() {
	dark, err := m.opts.Theme.Toggle(context.Background(), localUser)
	if err != nil {
		m.opts.Logger.Warn("saving theme preference", zap.Error(err))
		return
	}
	m.dark = dark
	m.applyTheme()
	m.viewport.SetContent(m.renderTranscript())
}

func (m *Model) applyTheme() {
	m.styles = newStyles(m.dark)
	m.input.TextStyle = m.styles.text
	m.input.PlaceholderStyle = m.styles.help
}

func (m Model) renderTranscript() string {
	var b strings.Builder
	for i, line := range m.session.Transcript() {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, seg := range line.Segments {
			if !seg.IsLink() {
				b.WriteString(m.styles.text.Render(seg.Text))
				continue
			}
			b.WriteString(m.styles.link.Render(seg.Text))
			b.WriteString(m.styles.href.Render(" <" + m.resolve(seg.Href) + ">"))
		}
	}
	return b.String()
}

// resolve turns site-relative links into absolute ones.
func (m Model) resolve(href string) string {
	if strings.HasPrefix(href, "/") && m.opts.BaseURL != "" {
		return strings.TrimRight(m.opts.BaseURL, "/") + href
	}
	return href
}

// Run starts the terminal console and blocks until it closes.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
