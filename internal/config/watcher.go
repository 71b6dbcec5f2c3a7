package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the config file on change and publishes new snapshots to
// a Store. Editors typically replace-then-rename rather than writing the
// file in place, so the watcher follows the file's directory and filters
// for events on the exact path, instead of watching the (possibly
// short-lived) inode directly.
type Watcher struct {
	path     string
	store    *Store
	log      *zap.Logger
	fsw      *fsnotify.Watcher
	closed   chan struct{}
	onReload func(*Config)
}

// NewWatcher starts watching path's directory for changes and begins
// publishing reloaded snapshots into store. onReload, if non-nil, runs
// after each successful Replace so callers can rebuild config-derived
// state (e.g. the router's per-model trackers). Call Close to stop.
func NewWatcher(path string, store *Store, log *zap.Logger, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching config dir %q: %w", dir, err)
	}

	w := &Watcher{
		path:     path,
		store:    store,
		log:      log,
		fsw:      fsw,
		closed:   make(chan struct{}),
		onReload: onReload,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.closed)

	target := filepath.Clean(w.path)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed, keeping previous snapshot",
					zap.String("path", w.path), zap.Error(err))
				continue
			}

			w.store.Replace(cfg)
			w.log.Info("config reloaded", zap.String("path", w.path))
			if w.onReload != nil {
				w.onReload(cfg)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

// Close stops the underlying fsnotify watcher and waits for the run loop to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.closed
	return err
}
