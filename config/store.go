package config

import "sync"

// Store is the shared, mutable AutomationConfig. Readers take a Snapshot;
// every mutator ends by calling Notify so subscribers see the new value.
type Store struct {
	mu   sync.RWMutex
	cfg  AutomationConfig
	subs []func(AutomationConfig)
}

// NewStore creates a store holding cfg.
func NewStore(cfg AutomationConfig) *Store {
	return &Store{cfg: cfg.Clone()}
}

// Snapshot returns a deep copy of the current configuration.
func (s *Store) Snapshot() AutomationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Update applies fn to the configuration under the write lock, then notifies.
func (s *Store) Update(fn func(*AutomationConfig)) {
	s.mu.Lock()
	fn(&s.cfg)
	s.mu.Unlock()
	s.Notify()
}

// Replace swaps in a whole new configuration, then notifies.
func (s *Store) Replace(cfg AutomationConfig) {
	s.mu.Lock()
	s.cfg = cfg.Clone()
	s.mu.Unlock()
	s.Notify()
}

// Subscribe registers fn to receive every new configuration.
func (s *Store) Subscribe(fn func(AutomationConfig)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Notify delivers the current configuration to all subscribers. It runs
// them outside the lock, so a subscriber may read the store.
func (s *Store) Notify() {
	s.mu.RLock()
	cfg := s.cfg.Clone()
	subs := append([]func(AutomationConfig){}, s.subs...)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(cfg)
	}
}
