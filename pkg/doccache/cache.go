// Package doccache keeps the most recent coverage report per open document.
package doccache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dkoosis/flowcov/pkg/coverage"
)

// DefaultSize bounds the number of documents held.
const DefaultSize = 512

// DocumentID identifies an open document. Hosts use the absolute path unless
// they have a better stable handle.
type DocumentID string

// Cache maps documents to their last successfully parsed report.
// It is safe for concurrent use; concurrent Puts for one document resolve
// last-writer-wins.
//
// Each document carries a generation that Evict advances. PutAt refuses a
// report taken at an older generation, so a lint that outlives its
// document's close cannot bring the entry back.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[DocumentID, *coverage.Report]
	gens    map[DocumentID]uint64
}

// New creates a cache holding up to size documents (DefaultSize if size <= 0).
func New(size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[DocumentID, *coverage.Report](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &Cache{entries: entries, gens: make(map[DocumentID]uint64)}
}

// Put records report as the latest for id. Nil reports are ignored so a
// failed lint can never clear a good entry.
func (c *Cache) Put(id DocumentID, report *coverage.Report) {
	if report == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(id, report)
}

// Generation returns id's current generation. Callers read it before
// starting work whose result they will hand to PutAt.
func (c *Cache) Generation(id DocumentID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id]
}

// PutAt is Put guarded by gen: it stores report only if id has not been
// evicted since gen was read, and reports whether it did.
func (c *Cache) PutAt(id DocumentID, gen uint64, report *coverage.Report) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[id] != gen {
		return false
	}
	if report != nil {
		c.entries.Add(id, report)
	}
	return true
}

// Get returns the latest report for id.
func (c *Cache) Get(id DocumentID) (*coverage.Report, bool) {
	return c.entries.Get(id)
}

// Evict drops id. Hosts call it when the document closes.
func (c *Cache) Evict(id DocumentID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[id]++
	c.entries.Remove(id)
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Documents lists cached document ids, least recently used first.
func (c *Cache) Documents() []DocumentID {
	return c.entries.Keys()
}
