package config

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Store serves immutable option snapshots to sessions and reloads them
// when the backing file is saved. Sessions hold a snapshot for at most
// one tick, so an external edit takes effect on the next tick.
type Store struct {
	path    string
	log     *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	current *Options

	done chan struct{}
}

// NewStore loads the options file and starts watching it for changes.
func NewStore(path string, log *slog.Logger) (*Store, error) {
	opts, err := Load(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch options file: %w", err)
	}

	s := &Store{
		path:    path,
		log:     log,
		watcher: watcher,
		current: opts,
		done:    make(chan struct{}),
	}
	go s.watch()

	return s, nil
}

// Snapshot returns the current options. Callers must treat the returned
// value as read-only; it is shared across sessions.
func (s *Store) Snapshot() *Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Close stops the file watcher.
func (s *Store) Close() error {
	close(s.done)
	return s.watcher.Close()
}

func (s *Store) watch() {
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			s.reload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Error("config watcher error", "error", err)
		}
	}
}

// reload swaps in a fresh snapshot. A file that fails to parse keeps the
// previous snapshot in place; a half-saved file must not take down
// running sessions.
func (s *Store) reload() {
	opts, err := Load(s.path)
	if err != nil {
		s.log.Error("config reload failed, keeping previous snapshot", "error", err)
		return
	}

	s.mu.Lock()
	s.current = opts
	s.mu.Unlock()

	s.log.Info("config snapshot reloaded", "name", opts.Name)
}
