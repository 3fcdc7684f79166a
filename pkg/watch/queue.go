package watch

import (
	"sync"

	"github.com/dkoosis/flowcov/internal/config"
)

// changeQueue coalesces config changes between deliveries to the model.
// Pushing never blocks and never loses a transition: pending changes are
// merged so the model sees the oldest Old, the newest New, and
// RestartRequired if any merged change required a restart.
type changeQueue struct {
	mu      sync.Mutex
	pending *config.Change
	ready   chan struct{}
}

func newChangeQueue() *changeQueue {
	return &changeQueue{ready: make(chan struct{}, 1)}
}

func (q *changeQueue) push(c config.Change) {
	q.mu.Lock()
	if q.pending == nil {
		q.pending = &c
	} else {
		q.pending.New = c.New
		q.pending.RestartRequired = q.pending.RestartRequired || c.RestartRequired
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop blocks until a change is pending.
func (q *changeQueue) pop() config.Change {
	for {
		<-q.ready
		if c, ok := q.tryPop(); ok {
			return c
		}
	}
}

func (q *changeQueue) tryPop() (config.Change, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		return config.Change{}, false
	}
	c := *q.pending
	q.pending = nil
	return c, true
}
