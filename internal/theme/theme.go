// Package theme owns the one preference the site persists: whether a
// visitor reads it in dark mode.
package theme

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// DefaultDark is the mode used until a visitor chooses.
const DefaultDark = true

// ErrClosed is returned by a Preferences after Close.
var ErrClosed = errors.New("theme preferences closed")

// Hooks are where the flag is loaded from and saved to.
type Hooks interface {
	LoadDarkMode(ctx context.Context, visitorID string) (dark, ok bool, err error)
	SaveDarkMode(ctx context.Context, visitorID string, dark bool) error
}

// Preferences is the explicitly opened and closed handle pages use to
// read and flip the flag.
type Preferences struct {
	hooks  Hooks
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// Open returns a ready Preferences.
func Open(hooks Hooks, logger *zap.Logger) *Preferences {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preferences{hooks: hooks, logger: logger}
}

// Close stops the handle. Later calls return ErrClosed.
func (p *Preferences) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Dark reports the visitor's mode. Unknown visitors and load failures
// fall back to DefaultDark; a failure is also returned so callers can log it.
func (p *Preferences) Dark(ctx context.Context, visitorID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return DefaultDark, ErrClosed
	}
	if visitorID == "" {
		return DefaultDark, nil
	}
	dark, ok, err := p.hooks.LoadDarkMode(ctx, visitorID)
	if err != nil {
		return DefaultDark, err
	}
	if !ok {
		return DefaultDark, nil
	}
	return dark, nil
}

// Set stores the visitor's mode.
func (p *Preferences) Set(ctx context.Context, visitorID string, dark bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	return p.hooks.SaveDarkMode(ctx, visitorID, dark)
}

// Toggle flips the visitor's mode and returns the new value.
func (p *Preferences) Toggle(ctx context.Context, visitorID string) (bool, error) {
	dark, err := p.Dark(ctx, visitorID)
	if errors.Is(err, ErrClosed) {
		return dark, err
	}
	if err != nil {
		p.logger.Warn("theme load failed, toggling from default", zap.Error(err))
	}
	dark = !dark
	if err := p.Set(ctx, visitorID, dark); err != nil {
		return !dark, err
	}
	return dark, nil
}

// Memory keeps flags in a map. The terminal console and tests use it.
type Memory struct {
	mu    sync.Mutex
	flags map[string]bool
}

func NewMemory() *Memory {
	return &Memory{flags: make(map[string]bool)}
}

func (m *Memory) LoadDarkMode(_ context.Context, visitorID string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dark, ok := m.flags[visitorID]
	return dark, ok, nil
}

func (m *Memory) SaveDarkMode(_ context.Context, visitorID string, dark bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[visitorID] = dark
	return nil
}
