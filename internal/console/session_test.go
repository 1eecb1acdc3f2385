package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCounter struct{ n int }

func (c *closeCounter) close() { c.n++ }

func newTestSession(t *testing.T) (*Session, *ManualScheduler, *closeCounter) {
	t.Helper()
	clock := &ManualScheduler{}
	closes := &closeCounter{}
	s := Mount(closes.close,
		WithScheduler(clock),
		WithRegistry(Default(WithPicker(func(int) int { return 0 }))),
	)
	return s, clock, closes
}

func TestMount_SeedsBanner(t *testing.T) {
	s, _, _ := newTestSession(t)
	assert.Equal(t, Banner, Strings(s.Transcript()))
	assert.Empty(t, s.History())
	assert.Equal(t, -1, s.Cursor())
	assert.False(t, s.Elevated())
	assert.Equal(t, ">", s.Prompt())
}

func TestSubmit_AppendsPromptAndOutput(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetInput("Easter")
	require.True(t, s.SubmitInput())

	got := Strings(s.Transcript())
	require.Len(t, got, len(Banner)+1+5)
	assert.Equal(t, "> Easter", got[len(Banner)])
	assert.Equal(t, []string{"Easter"}, s.History())
	assert.Empty(t, s.Input())
}

func TestSubmit_BlankInputIsNoop(t *testing.T) {
	s, _, _ := newTestSession(t)
	before := s.View()

	for _, raw := range []string{"", "   ", "\t\n"} {
		for i := 0; i < 3; i++ {
			assert.False(t, s.Submit(raw))
		}
	}

	assert.Equal(t, before, s.View())
	assert.Empty(t, s.History())
}

func TestSubmit_ElevatedPromptUsesHash(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Submit("sudo")
	s.Submit("whoami")

	got := Strings(s.Transcript())
	assert.Contains(t, got, "> sudo")
	assert.Contains(t, got, "# whoami")
	assert.Equal(t, whoamiRoot, got[len(got)-1])
	assert.Equal(t, "#", s.Prompt())
}

func TestSubmit_SudoTwice(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.Submit("sudo")
	afterFirst := len(s.Transcript())
	assert.Equal(t, len(Banner)+1+3, afterFirst)

	s.Submit("sudo")
	got := Strings(s.Transcript())
	assert.Len(t, got, afterFirst+2)
	assert.Equal(t, "You already have unlimited power! Try not to break anything 😅", got[len(got)-1])
	assert.True(t, s.Elevated())
}

func TestSubmit_ClearEmptiesTranscript(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Submit("help")
	s.Submit("clear")

	assert.Equal(t, []string{"> clear"}, Strings(s.Transcript()))
	assert.Equal(t, []string{"help", "clear"}, s.History())
}

func TestExitLifecycle(t *testing.T) {
	s, clock, closes := newTestSession(t)

	s.Submit("sudo")
	s.Submit("exit")
	clock.Advance(time.Second)
	assert.Zero(t, closes.n)
	assert.False(t, s.Closed())
	assert.Zero(t, clock.Pending())

	s.Submit("sudo exit")
	assert.False(t, s.Elevated())
	got := Strings(s.Transcript())
	assert.Equal(t, "You may now leave... but why would you want to? 😊", got[len(got)-1])
	assert.Zero(t, closes.n)

	s.Submit("exit")
	assert.True(t, s.View().Closing)
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(DefaultExitDelay - time.Millisecond)
	assert.Zero(t, closes.n)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, closes.n)
	assert.True(t, s.Closed())

	s.Submit("exit")
	clock.Advance(time.Second)
	assert.Equal(t, 1, closes.n)
}

func TestExit_UnmountCancelsScheduledClose(t *testing.T) {
	s, clock, closes := newTestSession(t)
	s.Submit("exit")
	s.Unmount()
	assert.Zero(t, clock.Pending())

	clock.Advance(time.Second)
	assert.Zero(t, closes.n)
	assert.False(t, s.Submit("help"))
}

func TestExit_CallbackAfterUnmountIsNoop(t *testing.T) {
	s, clock, closes := newTestSession(t)
	s.Submit("exit")

	// Unmount without stopping timers, as a host racing the callback would.
	s.mounted = false
	clock.Advance(time.Second)
	assert.Zero(t, closes.n)
}

func TestHistoryNavigation(t *testing.T) {
	s, _, _ := newTestSession(t)
	for _, cmd := range []string{"help", "skills", "about"} {
		require.True(t, s.Submit(cmd))
	}

	s.HistoryPrev()
	assert.Equal(t, "about", s.Input())
	s.HistoryPrev()
	assert.Equal(t, "skills", s.Input())
	s.HistoryPrev()
	assert.Equal(t, "help", s.Input())
	s.HistoryPrev()
	assert.Equal(t, "help", s.Input())
	assert.Equal(t, 2, s.Cursor())

	s.HistoryNext()
	assert.Equal(t, "skills", s.Input())
	s.HistoryNext()
	assert.Equal(t, "about", s.Input())
	s.HistoryNext()
	assert.Equal(t, "", s.Input())
	assert.Equal(t, -1, s.Cursor())

	s.SetInput("typed")
	s.HistoryNext()
	assert.Equal(t, "typed", s.Input())
}

func TestHistoryNavigation_EmptyHistory(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetInput("draft")
	s.HistoryPrev()
	s.HistoryNext()
	assert.Equal(t, "draft", s.Input())
	assert.Equal(t, -1, s.Cursor())
}

func TestSubmit_ResetsHistoryCursor(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Submit("help")
	s.Submit("about")
	s.HistoryPrev()
	s.HistoryPrev()
	require.Equal(t, 1, s.Cursor())

	s.SubmitInput()
	assert.Equal(t, -1, s.Cursor())
	assert.Equal(t, []string{"help", "about", "help"}, s.History())
}

func TestPointerDown(t *testing.T) {
	s, _, closes := newTestSession(t)

	s.PointerDown(TargetInside)
	s.PointerDown(TargetToggle)
	assert.Zero(t, closes.n)

	s.PointerDown(TargetOutside)
	s.PointerDown(TargetOutside)
	assert.Equal(t, 1, closes.n)
}

func TestParseTarget(t *testing.T) {
	assert.Equal(t, TargetOutside, ParseTarget(" Outside "))
	assert.Equal(t, TargetToggle, ParseTarget("toggle"))
	assert.Equal(t, TargetInside, ParseTarget("inside"))
	assert.Equal(t, TargetInside, ParseTarget("bogus"))
}

func TestRevisionTracksTranscript(t *testing.T) {
	s, _, _ := newTestSession(t)
	r0 := s.Revision()

	s.Submit("")
	assert.Equal(t, r0, s.Revision())

	s.Submit("help")
	r1 := s.Revision()
	assert.Greater(t, r1, r0)

	s.HistoryPrev()
	assert.Equal(t, r1, s.Revision())

	s.Submit("clear")
	assert.Greater(t, s.Revision(), r1)
}

func TestSessionsAreIndependent(t *testing.T) {
	a, _, _ := newTestSession(t)
	b, _, _ := newTestSession(t)
	a.Submit("sudo")
	assert.True(t, a.Elevated())
	assert.False(t, b.Elevated())
	assert.Empty(t, b.History())
}
