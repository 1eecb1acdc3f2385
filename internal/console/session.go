package console

import (
	"strings"
	"time"
)

// DefaultExitDelay is how long "exit" waits before closing the widget.
const DefaultExitDelay = 500 * time.Millisecond

// Target classifies where a pointer-down landed relative to the widget.
type Target int

const (
	TargetInside Target = iota
	TargetToggle
	TargetOutside
)

// ParseTarget maps a host-supplied name to a Target. Unknown names count
// as inside so a malformed event never closes the widget.
func ParseTarget(s string) Target {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outside":
		return TargetOutside
	case "toggle":
		return TargetToggle
	default:
		return TargetInside
	}
}

// View is a read-only snapshot of a session for renderers.
type View struct {
	Transcript []Line `json:"transcript"`
	Input      string `json:"input"`
	Elevated   bool   `json:"elevated"`
	Prompt     string `json:"prompt"`
	Browsing   bool   `json:"browsing"`
	Closing    bool   `json:"closing"`
	Closed     bool   `json:"closed"`
	Revision   uint64 `json:"revision"`
}

// Session owns one mounted console: transcript, input buffer, command
// history with its cursor, and the privilege flag. It is not safe for
// concurrent use; hosts deliver events from one logical thread.
type Session struct {
	registry  *Registry
	scheduler Scheduler
	exitDelay time.Duration
	onClose   func()

	transcript []Line
	revision   uint64
	input      string
	history    []string
	cursor     int
	elevated   bool

	mounted bool
	closing bool
	closed  bool
	timers  []Timer
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithScheduler sets the scheduler used for the delayed close.
func WithScheduler(s Scheduler) SessionOption {
	return func(sess *Session) { sess.scheduler = s }
}

// WithExitDelay overrides DefaultExitDelay.
func WithExitDelay(d time.Duration) SessionOption {
	return func(sess *Session) { sess.exitDelay = d }
}

// WithRegistry replaces the default command registry.
func WithRegistry(r *Registry) SessionOption {
	return func(sess *Session) { sess.registry = r }
}

// Mount creates a session seeded with the welcome banner. onClose is
// called at most once, when the session asks its host to remove it.
func Mount(onClose func(), opts ...SessionOption) *Session {
	s := &Session{
		scheduler: RealScheduler{},
		exitDelay: DefaultExitDelay,
		onClose:   onClose,
		cursor:    -1,
		mounted:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = Default()
	}
	s.transcript = textLines(Banner...)
	return s
}

// Registry returns the registry the session dispatches to.
func (s *Session) Registry() *Registry { return s.registry }

// Elevated reports the privilege flag.
func (s *Session) Elevated() bool { return s.elevated }

// SetElevated sets the privilege flag.
func (s *Session) SetElevated(v bool) { s.elevated = v }

// ClearTranscript empties the transcript.
func (s *Session) ClearTranscript() {
	s.transcript = nil
	s.revision++
}

// RequestClose schedules the host close after the exit delay.
func (s *Session) RequestClose() {
	if !s.mounted || s.closed || s.closing {
		return
	}
	s.closing = true
	s.timers = append(s.timers, s.scheduler.AfterFunc(s.exitDelay, s.close))
}

// Input returns the current input buffer.
func (s *Session) Input() string { return s.input }

// SetInput replaces the input buffer, as typing does.
func (s *Session) SetInput(v string) { s.input = v }

// History returns a copy of submitted commands, oldest first.
func (s *Session) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Cursor returns the history cursor; -1 means not browsing.
func (s *Session) Cursor() int { return s.cursor }

// Transcript returns a copy of the transcript.
func (s *Session) Transcript() []Line {
	out := make([]Line, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Revision changes whenever the transcript does; renderers scroll to the
// bottom when it moves.
func (s *Session) Revision() uint64 { return s.revision }

// Prompt is "#" while elevated and ">" otherwise.
func (s *Session) Prompt() string {
	if s.elevated {
		return "#"
	}
	return ">"
}

// Closed reports whether the session has asked its host to close it.
func (s *Session) Closed() bool { return s.closed }

// Mounted reports whether the session is still mounted.
func (s *Session) Mounted() bool { return s.mounted }

// Submit runs raw as a command. Blank input is ignored and reports false.
func (s *Session) Submit(raw string) bool {
	if !s.mounted || strings.TrimSpace(raw) == "" {
		return false
	}

	s.history = append(s.history, raw)
	s.cursor = -1

	prompt := s.Prompt() + " " + raw
	out := s.registry.Dispatch(raw, s)

	s.transcript = append(s.transcript, Text(prompt))
	s.transcript = append(s.transcript, out...)
	s.revision++
	s.input = ""
	return true
}

// SubmitInput submits the current input buffer.
func (s *Session) SubmitInput() bool {
	return s.Submit(s.input)
}

// HistoryPrev loads the next older history entry into the input buffer.
func (s *Session) HistoryPrev() {
	if len(s.history) == 0 {
		return
	}
	next := s.cursor + 1
	if next >= len(s.history) {
		return
	}
	s.cursor = next
	s.input = s.history[len(s.history)-1-next]
}

// HistoryNext moves toward the newest entry, leaving history mode and
// clearing the input buffer when it walks past it.
func (s *Session) HistoryNext() {
	switch {
	case s.cursor > 0:
		s.cursor--
		s.input = s.history[len(s.history)-1-s.cursor]
	case s.cursor == 0:
		s.cursor = -1
		s.input = ""
	}
}

// PointerDown handles a mouse press. Presses outside the widget close it;
// presses on the toggle control are left to the toggle.
func (s *Session) PointerDown(target Target) {
	if target == TargetOutside {
		s.close()
	}
}

// Unmount drops the session. Pending scheduled callbacks become no-ops.
func (s *Session) Unmount() {
	if !s.mounted {
		return
	}
	s.mounted = false
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

// View snapshots the session for rendering.
func (s *Session) View() View {
	return View{
		Transcript: s.Transcript(),
		Input:      s.input,
		Elevated:   s.elevated,
		Prompt:     s.Prompt(),
		Browsing:   s.cursor >= 0,
		Closing:    s.closing,
		Closed:     s.closed,
		Revision:   s.revision,
	}
}

func (s *Session) close() {
	if !s.mounted || s.closed {
		return
	}
	s.closed = true
	if s.onClose != nil {
		s.onClose()
	}
}
