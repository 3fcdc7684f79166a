package config

import "sync"

// Change describes one transition of the Store.
type Change struct {
	Old, New Config

	// RestartRequired is set when a value only read at startup changed
	// (HyperclickPriority). Hosts surface it as a dismissible notice.
	RestartRequired bool
}

// Store holds the live Config and notifies subscribers of changes.
type Store struct {
	mu     sync.RWMutex
	cfg    Config
	subs   map[int]func(Change)
	nextID int
}

// NewStore creates a Store seeded with cfg.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg, subs: make(map[int]func(Change))}
}

// Current returns a snapshot.
func (s *Store) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set replaces the Config. Subscribers are called synchronously, outside
// the lock, only when something changed.
func (s *Store) Set(cfg Config) Change {
	s.mu.Lock()
	change, subs := s.swapLocked(cfg)
	s.mu.Unlock()
	notify(change, subs)
	return change
}

// Update applies fn to a copy of the current Config and stores the result.
// The read and the write happen under one lock, so concurrent updates
// compose.
func (s *Store) Update(fn func(*Config)) Change {
	s.mu.Lock()
	cfg := s.cfg
	fn(&cfg)
	change, subs := s.swapLocked(cfg)
	s.mu.Unlock()
	notify(change, subs)
	return change
}

func (s *Store) swapLocked(cfg Config) (Change, []func(Change)) {
	old := s.cfg
	s.cfg = cfg
	change := Change{Old: old, New: cfg, RestartRequired: old.HyperclickPriority != cfg.HyperclickPriority}
	if old == cfg {
		return change, nil
	}
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return change, subs
}

func notify(change Change, subs []func(Change)) {
	for _, fn := range subs {
		fn(change)
	}
}

// Subscribe registers fn for future changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
