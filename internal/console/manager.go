package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for ids that were never mounted, were
// unmounted, closed themselves, or expired.
var ErrSessionNotFound = errors.New("console session not found")

// ManagerConfig tunes a Manager.
type ManagerConfig struct {
	ExitDelay     time.Duration
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Scheduler     Scheduler
	Registry      func() *Registry
	Now           func() time.Time
}

// Manager keeps the sessions mounted by concurrent HTTP clients. Each
// session has its own lock; scheduled callbacks take the same lock, so
// every session still sees its events one at a time.
type Manager struct {
	cfg    ManagerConfig
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastSeen time.Time
}

// NewManager returns an empty manager.
func NewManager(cfg ManagerConfig, logger *zap.Logger) *Manager {
	if cfg.ExitDelay <= 0 {
		cfg.ExitDelay = DefaultExitDelay
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler{}
	}
	if cfg.Registry == nil {
		cfg.Registry = func() *Registry { return Default() }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*entry),
	}
}

// Mount creates a new session and returns its id and first view.
func (m *Manager) Mount() (string, View) {
	id := uuid.NewString()
	e := &entry{lastSeen: m.cfg.Now()}
	e.session = Mount(
		func() { m.remove(id, e) },
		WithScheduler(lockedScheduler{mu: &e.mu, inner: m.cfg.Scheduler}),
		WithExitDelay(m.cfg.ExitDelay),
		WithRegistry(m.cfg.Registry()),
	)

	m.mu.Lock()
	m.sessions[id] = e
	m.mu.Unlock()

	m.logger.Debug("console mounted", zap.String("session", id))
	return id, e.session.View()
}

// Do runs fn with exclusive access to the session and returns its view
// afterwards. A session that closed itself is still returned once, so the
// caller can render the closed state.
func (m *Manager) Do(id string, fn func(*Session)) (View, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return View{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.session.Mounted() {
		return View{}, ErrSessionNotFound
	}
	if fn != nil {
		fn(e.session)
	}
	e.lastSeen = m.cfg.Now()
	return e.session.View(), nil
}

// Unmount drops a session. Unknown ids are ignored.
func (m *Manager) Unmount(id string) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.session.Unmount()
	e.mu.Unlock()
	m.logger.Debug("console unmounted", zap.String("session", id))
}

// ExitDelay is the delay between "exit" and the session closing.
func (m *Manager) ExitDelay() time.Duration {
	return m.cfg.ExitDelay
}

// Len reports how many sessions are mounted.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep unmounts sessions idle since before now-IdleTTL and returns how
// many it dropped.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTTL)

	// Entry locks are never taken while m.mu is held; close callbacks
	// acquire them in the opposite order.
	m.mu.Lock()
	entries := make(map[string]*entry, len(m.sessions))
	for id, e := range m.sessions {
		entries[id] = e
	}
	m.mu.Unlock()

	var stale []string
	for id, e := range entries {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		e.mu.Unlock()
		if idle {
			stale = append(stale, id)
		}
	}

	for _, id := range stale {
		m.Unmount(id)
	}
	if len(stale) > 0 {
		m.logger.Info("console sessions expired", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps idle sessions until ctx is done, then unmounts everything.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.unmountAll()
			return
		case <-ticker.C:
			m.Sweep(m.cfg.Now())
		}
	}
}

func (m *Manager) unmountAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.Unmount(id)
	}
}

// remove is the session's close callback. It runs with e.mu held.
func (m *Manager) remove(id string, e *entry) {
	m.mu.Lock()
	if cur, ok := m.sessions[id]; ok && cur == e {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	e.session.Unmount()
	m.logger.Debug("console closed", zap.String("session", id))
}

type lockedScheduler struct {
	mu    *sync.Mutex
	inner Scheduler
}

func (l lockedScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return l.inner.AfterFunc(d, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		f()
	})
}
