package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zachkp/portfolio/internal/console"
)

// timerMsg fires a scheduled callback inside Update, so the session only
// ever sees events from the program's own goroutine.
type timerMsg struct{ id int }

type teaScheduler struct {
	seq    int
	timers map[int]*teaTimer
	queued []tea.Cmd
}

type teaTimer struct {
	s  *teaScheduler
	id int
	f  func()
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{timers: make(map[int]*teaTimer)}
}

func (s *teaScheduler) AfterFunc(d time.Duration, f func()) console.Timer {
	s.seq++
	t := &teaTimer{s: s, id: s.seq, f: f}
	s.timers[t.id] = t
	id := t.id
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	}))
	return t
}

func (t *teaTimer) Stop() bool {
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}

// flush hands the ticks scheduled since the last call to bubbletea.
func (s *teaScheduler) flush() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

// fire runs the callback for id unless it was stopped.
func (s *teaScheduler) fire(id int) {
	t, ok := s.timers[id]
	if !ok {
		return
	}
	delete(s.timers, id)
	t.f()
}

func (s *teaScheduler) pending() int {
	return len(s.timers)
}
