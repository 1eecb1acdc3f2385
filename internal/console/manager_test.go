package console

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(now *time.Time) (*Manager, *ManualScheduler) {
	clock := &ManualScheduler{}
	m := NewManager(ManagerConfig{
		IdleTTL:   10 * time.Minute,
		Scheduler: clock,
		Now:       func() time.Time { return *now },
	}, nil)
	return m, clock
}

func TestManager_MountAndSubmit(t *testing.T) {
	now := time.Now()
	m, _ := newTestManager(&now)

	id, view := m.Mount()
	require.NotEmpty(t, id)
	assert.Equal(t, Banner, Strings(view.Transcript))
	assert.Equal(t, 1, m.Len())

	view, err := m.Do(id, func(s *Session) { s.Submit("sudo") })
	require.NoError(t, err)
	assert.True(t, view.Elevated)
	assert.Equal(t, "#", view.Prompt)
}

func TestManager_UnknownSession(t *testing.T) {
	now := time.Now()
	m, _ := newTestManager(&now)
	_, err := m.Do("nope", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	m.Unmount("nope")
}

func TestManager_ExitRemovesSessionAfterDelay(t *testing.T) {
	now := time.Now()
	m, clock := newTestManager(&now)
	id, _ := m.Mount()

	view, err := m.Do(id, func(s *Session) { s.Submit("exit") })
	require.NoError(t, err)
	assert.True(t, view.Closing)
	assert.Equal(t, 1, m.Len())

	clock.Advance(DefaultExitDelay)
	assert.Zero(t, m.Len())
	_, err = m.Do(id, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ClickOutsideClosesImmediately(t *testing.T) {
	now := time.Now()
	m, _ := newTestManager(&now)
	id, _ := m.Mount()

	view, err := m.Do(id, func(s *Session) { s.PointerDown(TargetOutside) })
	require.NoError(t, err)
	assert.True(t, view.Closed)
	assert.Zero(t, m.Len())
}

func TestManager_UnmountDropsPendingClose(t *testing.T) {
	now := time.Now()
	m, clock := newTestManager(&now)
	id, _ := m.Mount()
	_, err := m.Do(id, func(s *Session) { s.Submit("exit") })
	require.NoError(t, err)

	m.Unmount(id)
	assert.Zero(t, clock.Pending())
	clock.Advance(time.Second)
	assert.Zero(t, m.Len())
}

func TestManager_ReopenStartsFresh(t *testing.T) {
	now := time.Now()
	m, _ := newTestManager(&now)
	id, _ := m.Mount()
	_, err := m.Do(id, func(s *Session) {
		s.Submit("sudo")
		s.Submit("help")
	})
	require.NoError(t, err)
	m.Unmount(id)

	id2, view := m.Mount()
	assert.NotEqual(t, id, id2)
	assert.False(t, view.Elevated)
	assert.Equal(t, Banner, Strings(view.Transcript))
}

func TestManager_Sweep(t *testing.T) {
	now := time.Now()
	m, _ := newTestManager(&now)
	stale, _ := m.Mount()

	now = now.Add(8 * time.Minute)
	fresh, _ := m.Mount()

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, m.Sweep(now))

	_, err := m.Do(stale, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Do(fresh, nil)
	assert.NoError(t, err)
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	m := NewManager(ManagerConfig{SweepInterval: time.Millisecond}, nil)
	m.Mount()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Zero(t, m.Len())
}

func TestManager_ConcurrentSessionsWithRealTimers(t *testing.T) {
	m := NewManager(ManagerConfig{ExitDelay: time.Millisecond}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := m.Mount()
			_, _ = m.Do(id, func(s *Session) {
				s.Submit("help")
				s.Submit("exit")
			})
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
}
