package presenter

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dkoosis/flowcov/internal/config"
	"github.com/dkoosis/flowcov/internal/logging"
	"github.com/dkoosis/flowcov/pkg/coverage"
	"github.com/dkoosis/flowcov/pkg/doccache"
	"github.com/dkoosis/flowcov/pkg/lint"
)

// Stopper stops every checker server started on the workspace's behalf.
// *checker.Client satisfies it.
type Stopper interface {
	StopAll(ctx context.Context, configured string)
}

// Workspace is the host-facing controller: it tracks the active document,
// runs lints and keeps the presenter in step with the cache.
type Workspace struct {
	presenter *Presenter
	linter    *lint.Linter
	store     *config.Store
	stopper   Stopper
	logger    *slog.Logger

	mu       sync.Mutex
	active   *lint.Document
	inflight map[doccache.DocumentID]map[uint64]context.CancelFunc
	nextLint uint64
}

// NewWorkspace wires a controller. stopper may be nil.
func NewWorkspace(p *Presenter, l *lint.Linter, store *config.Store, stopper Stopper, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Workspace{
		presenter: p,
		linter:    l,
		store:     store,
		stopper:   stopper,
		logger:    logger,
		inflight:  make(map[doccache.DocumentID]map[uint64]context.CancelFunc),
	}
}

// Config returns the live configuration.
func (w *Workspace) Config() config.Config { return w.store.Current() }

// Active returns the active document, if any.
func (w *Workspace) Active() (lint.Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == nil {
		return lint.Document{}, false
	}
	return *w.active, true
}

// Activate makes doc the active document and shows its cached coverage.
func (w *Workspace) Activate(doc lint.Document) {
	w.mu.Lock()
	w.active = &doc
	w.refreshLocked()
	w.mu.Unlock()
}

// Deactivate clears the active document, as when a non-source pane gains
// focus.
func (w *Workspace) Deactivate() {
	w.mu.Lock()
	w.active = nil
	w.presenter.Reset()
	w.mu.Unlock()
}

// Close cancels doc's in-flight lints and evicts it from the cache. A lint
// that finishes after Close never re-caches the document.
func (w *Workspace) Close(doc lint.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, cancel := range w.inflight[doc.ID] {
		cancel()
	}
	delete(w.inflight, doc.ID)
	w.linter.Cache().Evict(doc.ID)

	if w.active != nil && w.active.ID == doc.ID {
		w.active = nil
		w.presenter.Reset()
	}
}

// Report returns the cached report for doc.
func (w *Workspace) Report(doc lint.Document) (*coverage.Report, bool) {
	return w.linter.Cache().Get(doc.ID)
}

// Lint lints doc with the current configuration and refreshes the
// presenter when doc is active.
func (w *Workspace) Lint(ctx context.Context, doc lint.Document) ([]coverage.Diagnostic, error) {
	ctx, done := w.track(ctx, doc.ID)
	defer done()
	diags, err := w.linter.Lint(ctx, w.store.Current(), doc)

	w.mu.Lock()
	if w.active != nil && w.active.ID == doc.ID {
		w.refreshLocked()
	}
	w.mu.Unlock()
	return diags, err
}

// Toggle flips ShowUncovered and re-lints the active document. With no
// active document it only flips the flag.
func (w *Workspace) Toggle(ctx context.Context) ([]coverage.Diagnostic, error) {
	change := w.store.Update(func(c *config.Config) { c.ShowUncovered = !c.ShowUncovered })
	w.logger.Debug("show uncovered toggled", "show_uncovered", change.New.ShowUncovered)

	doc, ok := w.Active()
	if !ok {
		return nil, nil
	}
	return w.Lint(ctx, doc)
}

// Shutdown stops every server the workspace started. It never fails.
func (w *Workspace) Shutdown(ctx context.Context) {
	if w.stopper == nil {
		return
	}
	w.stopper.StopAll(ctx, w.store.Current().ExecutablePath)
}

// track derives a context that Close(doc) cancels.
func (w *Workspace) track(ctx context.Context, id doccache.DocumentID) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	n := w.nextLint
	w.nextLint++
	if w.inflight[id] == nil {
		w.inflight[id] = make(map[uint64]context.CancelFunc)
	}
	w.inflight[id][n] = cancel
	w.mu.Unlock()

	return ctx, func() {
		cancel()
		w.mu.Lock()
		defer w.mu.Unlock()
		if lints := w.inflight[id]; lints != nil {
			delete(lints, n)
			if len(lints) == 0 {
				delete(w.inflight, id)
			}
		}
	}
}

func (w *Workspace) refreshLocked() {
	if w.active == nil {
		w.presenter.Reset()
		return
	}
	report, ok := w.linter.Cache().Get(w.active.ID)
	if !ok {
		w.presenter.Reset()
		return
	}
	w.presenter.Update(report)
}
