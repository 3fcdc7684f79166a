package checker

import (
	"sort"
	"sync"
)

// Servers records project roots where a coverage call started a background
// checker server, so they can be stopped at shutdown.
type Servers struct {
	mu    sync.Mutex
	roots map[string]struct{}
}

// NewServers creates an empty registry.
func NewServers() *Servers {
	return &Servers{roots: make(map[string]struct{})}
}

// Add records root.
func (s *Servers) Add(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots[root] = struct{}{}
}

// Has reports whether root was recorded.
func (s *Servers) Has(root string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.roots[root]
	return ok
}

// Len returns the number of recorded roots.
func (s *Servers) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.roots)
}

// Roots returns the recorded roots in sorted order.
func (s *Servers) Roots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// Drain returns the recorded roots and empties the registry.
func (s *Servers) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	roots := s.sortedLocked()
	s.roots = make(map[string]struct{})
	return roots
}

func (s *Servers) sortedLocked() []string {
	roots := make([]string, 0, len(s.roots))
	for r := range s.roots {
		roots = append(roots, r)
	}
	sort.Strings(roots)
	return roots
}
