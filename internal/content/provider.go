package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Provider hands out the current Site. Reloads swap the whole document,
// so readers never see a half-applied edit.
type Provider struct {
	path   string
	logger *zap.Logger
	site   atomic.Pointer[Site]
}

// NewProvider loads path, or the embedded document when path is empty.
func NewProvider(path string, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{path: path, logger: logger}
	if path == "" {
		p.site.Store(Default())
		return p, nil
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Static wraps an already parsed Site.
func Static(s *Site) *Provider {
	p := &Provider{logger: zap.NewNop()}
	p.site.Store(s)
	return p
}

// Site returns the current document.
func (p *Provider) Site() *Site {
	return p.site.Load()
}

// Reload re-reads the file. On error the previous document stays live.
func (p *Provider) Reload() error {
	if p.path == "" {
		return nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", p.path, err)
	}
	p.site.Store(s)
	return nil
}

// Watch reloads the document whenever its file changes, until ctx is done.
// The parent directory is watched because editors replace files by rename.
func (p *Provider) Watch(ctx context.Context) error {
	if p.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(p.path)
	if err != nil {
		return fmt.Errorf("content path: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := p.Reload(); err != nil {
				p.logger.Warn("content reload failed", zap.Error(err))
				continue
			}
			p.logger.Info("content reloaded", zap.String("path", p.path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("content watcher error", zap.Error(err))
		}
	}
}
