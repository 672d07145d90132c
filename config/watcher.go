package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// LoadFunc reads an automation profile from disk.
type LoadFunc func(path string) (AutomationConfig, error)

// Watcher reloads the automation profile into a Store when the file
// changes. A profile that fails to load is logged and the previous
// configuration stays in place.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	dir      bool // path is a profile directory
	store    *Store
	load     LoadFunc
	log      *zap.Logger
	debounce time.Duration
	pending  time.Time
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher creates a watcher for the profile at path, which may be a
// single file or a directory of .lua files.
func NewWatcher(path string, store *Store, load LoadFunc, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		watcher:  fw,
		path:     filepath.Clean(path),
		store:    store,
		load:     load,
		log:      log.Named("config"),
		debounce: 250 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Editors often replace the file, so watch the directory.
	target := filepath.Dir(w.path)
	if fi, err := os.Stat(w.path); err == nil && fi.IsDir() {
		w.dir = true
		target = w.path
	}
	if err := w.watcher.Add(target); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		_ = w.watcher.Close()
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	w.log.Info("watching profile", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop ends the watch and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("close watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.pending = time.Now()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case now := <-ticker.C:
			if w.pending.IsZero() || now.Sub(w.pending) < w.debounce {
				continue
			}
			w.pending = time.Time{}
			w.reload()
		}
	}
}

// relevant reports whether a change to name affects the profile.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	if !w.dir {
		return name == w.path
	}
	return filepath.Dir(name) == w.path && strings.EqualFold(filepath.Ext(name), ".lua")
}

func (w *Watcher) reload() {
	cfg, err := w.load(w.path)
	if err != nil {
		w.log.Warn("profile reload failed, keeping previous config", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.store.Replace(cfg)
	w.log.Info("profile reloaded", zap.String("path", w.path))
}
