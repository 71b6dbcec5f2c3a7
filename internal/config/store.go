package config

import "go.uber.org/atomic"

// Store holds the currently active Config snapshot, which the Watcher
// replaces on each successful reload. Request handlers do not read it: the
// reload callback builds a new edge server from the new snapshot, so an
// in-flight request keeps the config it started with.
type Store struct {
	snapshot atomic.Pointer[Config]
}

// NewStore wraps an initial Config in a Store.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.snapshot.Store(cfg)
	return s
}

// Load returns the current snapshot.
func (s *Store) Load() *Config {
	return s.snapshot.Load()
}

// Replace atomically swaps in a new snapshot, e.g. after a file watcher
// detects a change and a fresh Load() succeeds.
func (s *Store) Replace(cfg *Config) {
	s.snapshot.Store(cfg)
}
