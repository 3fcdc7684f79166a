package presenter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/flowcov/internal/config"
	"github.com/dkoosis/flowcov/pkg/checker"
	"github.com/dkoosis/flowcov/pkg/coverage"
	"github.com/dkoosis/flowcov/pkg/doccache"
	"github.com/dkoosis/flowcov/pkg/lint"
)

type fakeSurface struct {
	text, tooltip string
	visible       bool
	calls         int
}

func (f *fakeSurface) SetText(s string) { f.text = s; f.calls++ }
func (f *fakeSurface) SetTooltip(s string) { f.tooltip = s; f.calls++ }
func (f *fakeSurface) SetVisible(v bool) { f.visible = v; f.calls++ }

type fakeReporter struct {
	mu      sync.Mutex
	reports map[string]*coverage.Report
	err     error
	calls   int
}

func (f *fakeReporter) Report(_ context.Context, _, file string) (*coverage.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.reports[file], nil
}

type fakeStopper struct {
	configured []string
}

func (f *fakeStopper) StopAll(_ context.Context, configured string) {
	f.configured = append(f.configured, configured)
}

func report(covered, uncovered int) *coverage.Report {
	return &coverage.Report{
		Expressions:        coverage.Expressions{CoveredCount: covered, UncoveredCount: uncovered},
		UncoveredLocations: []coverage.Region{{Start: coverage.Position{Line: 1, Column: 1}, End: coverage.Position{Line: 1, Column: 4}}},
	}
}

func projectDocs(t *testing.T, names ...string) []lint.Document {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, checker.ConfigMarker), nil, 0o600))
	docs := make([]lint.Document, 0, len(names))
	for _, n := range names {
		docs = append(docs, lint.NewDocument(filepath.Join(root, n)))
	}
	return docs
}

func TestPresenter_Update(t *testing.T) {
	tests := []struct {
		name        string
		report      *coverage.Report
		wantText    string
		wantTip     string
		wantVisible bool
	}{
		{"three quarters", report(3, 1), "Coverage: 75%", "Covered 75% (3 of 4)", true},
		{"empty file", report(0, 0), "Coverage: 0%", "Covered 0% (0 of 0)", true},
		{"rounds", report(1, 2), "Coverage: 33%", "Covered 33% (1 of 3)", true},
		{"nil resets", nil, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSurface{}
			New(s).Update(tt.report)
			assert.Equal(t, tt.wantText, s.text)
			assert.Equal(t, tt.wantTip, s.tooltip)
			assert.Equal(t, tt.wantVisible, s.visible)
		})
	}
}

func TestPresenter_Reset(t *testing.T) {
	s := &fakeSurface{}
	p := New(s)
	p.Update(report(1, 1))
	require.True(t, s.visible)

	p.Reset()
	assert.Empty(t, s.text)
	assert.Empty(t, s.tooltip)
	assert.False(t, s.visible)
}

func newWorkspace(t *testing.T, rep *fakeReporter) (*Workspace, *fakeSurface, *config.Store) {
	t.Helper()
	s := &fakeSurface{}
	store := config.NewStore(config.Default())
	l := lint.NewLinter(rep, doccache.New(0), nil)
	return NewWorkspace(New(s), l, store, &fakeStopper{}, nil), s, store
}

func TestWorkspace_ActivateSwitchesBetweenCachedReports(t *testing.T) {
	docs := projectDocs(t, "a.js", "b.js", "c.js")
	a, b, c := docs[0], docs[1], docs[2]
	rep := &fakeReporter{reports: map[string]*coverage.Report{
		a.Path: report(3, 1),
		b.Path: report(1, 1),
	}}
	w, s, _ := newWorkspace(t, rep)
	ctx := context.Background()

	_, err := w.Lint(ctx, a)
	require.NoError(t, err)
	_, err = w.Lint(ctx, b)
	require.NoError(t, err)
	assert.False(t, s.visible, "no active document yet")

	w.Activate(a)
	assert.Equal(t, "Coverage: 75%", s.text)
	w.Activate(b)
	assert.Equal(t, "Coverage: 50%", s.text)
	w.Activate(c)
	assert.False(t, s.visible, "uncached document resets the tile")
	assert.Empty(t, s.text)
}

func TestWorkspace_LintRefreshesOnlyActiveDocument(t *testing.T) {
	docs := projectDocs(t, "a.js", "b.js")
	a, b := docs[0], docs[1]
	rep := &fakeReporter{reports: map[string]*coverage.Report{
		a.Path: report(3, 1),
		b.Path: report(1, 1),
	}}
	w, s, _ := newWorkspace(t, rep)

	w.Activate(a)
	_, err := w.Lint(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "Coverage: 75%", s.text)

	_, err = w.Lint(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "Coverage: 75%", s.text, "background lint leaves the tile alone")
}

func TestWorkspace_FailedLintKeepsDisplay(t *testing.T) {
	docs := projectDocs(t, "a.js")
	rep := &fakeReporter{reports: map[string]*coverage.Report{docs[0].Path: report(3, 1)}}
	w, s, _ := newWorkspace(t, rep)
	w.Activate(docs[0])
	_, err := w.Lint(context.Background(), docs[0])
	require.NoError(t, err)

	rep.err = errors.New("checker exploded")
	_, err = w.Lint(context.Background(), docs[0])
	require.Error(t, err)
	assert.Equal(t, "Coverage: 75%", s.text)
}

func TestWorkspace_CloseEvicts(t *testing.T) {
	docs := projectDocs(t, "a.js")
	rep := &fakeReporter{reports: map[string]*coverage.Report{docs[0].Path: report(3, 1)}}
	w, s, _ := newWorkspace(t, rep)
	w.Activate(docs[0])
	_, err := w.Lint(context.Background(), docs[0])
	require.NoError(t, err)

	w.Close(docs[0])
	_, ok := w.Report(docs[0])
	assert.False(t, ok)
	assert.False(t, s.visible)
	_, active := w.Active()
	assert.False(t, active)
}

func TestWorkspace_ToggleFlipsFlagAndRelints(t *testing.T) {
	docs := projectDocs(t, "a.js")
	rep := &fakeReporter{reports: map[string]*coverage.Report{docs[0].Path: report(3, 1)}}
	w, _, store := newWorkspace(t, rep)
	w.Activate(docs[0])

	diags, err := w.Toggle(context.Background())
	require.NoError(t, err)
	assert.True(t, store.Current().ShowUncovered)
	assert.Len(t, diags, 1)
	assert.Equal(t, 1, rep.calls)

	diags, err = w.Toggle(context.Background())
	require.NoError(t, err)
	assert.False(t, store.Current().ShowUncovered)
	assert.Empty(t, diags)
	assert.Equal(t, 2, rep.calls)
}

func TestWorkspace_ToggleWithoutActiveDocument(t *testing.T) {
	rep := &fakeReporter{}
	w, _, store := newWorkspace(t, rep)

	diags, err := w.Toggle(context.Background())
	require.NoError(t, err)
	assert.Nil(t, diags)
	assert.True(t, store.Current().ShowUncovered)
	assert.Zero(t, rep.calls)
}

func TestWorkspace_ShutdownUsesConfiguredExecutable(t *testing.T) {
	stopper := &fakeStopper{}
	store := config.NewStore(config.Default())
	store.Update(func(c *config.Config) { c.ExecutablePath = "/opt/flow" })
	l := lint.NewLinter(&fakeReporter{}, doccache.New(0), nil)
	w := NewWorkspace(New(&fakeSurface{}), l, store, stopper, nil)

	w.Shutdown(context.Background())
	assert.Equal(t, []string{"/opt/flow"}, stopper.configured)

	NewWorkspace(New(&fakeSurface{}), l, store, nil, nil).Shutdown(context.Background())
}

func TestTile_View(t *testing.T) {
	tile := NewTile(lipgloss.NewStyle(), lipgloss.NewStyle())
	assert.Empty(t, tile.View(true))

	New(tile).Update(report(3, 1))
	assert.True(t, tile.Visible())
	assert.Equal(t, "Coverage: 75%", tile.View(false))
	assert.Contains(t, tile.View(true), "Covered 75% (3 of 4)")
	assert.Equal(t, "Covered 75% (3 of 4)", tile.Tooltip())
}

// blockingReporter parks every call until release is closed, or with
// honorCtx set, until ctx is cancelled.
type blockingReporter struct {
	started  chan struct{}
	release  chan struct{}
	honorCtx bool
}

func newBlockingReporter(honorCtx bool) *blockingReporter {
	return &blockingReporter{started: make(chan struct{}, 1), release: make(chan struct{}), honorCtx: honorCtx}
}

func (b *blockingReporter) Report(ctx context.Context, _, _ string) (*coverage.Report, error) {
	b.started <- struct{}{}
	if b.honorCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	<-b.release
	return report(1, 1), nil
}

func TestWorkspace_CloseDuringLint(t *testing.T) {
	tests := []struct {
		name     string
		honorCtx bool
		wantErr  error
	}{
		{"lint is cancelled", true, context.Canceled},
		{"late result is dropped", false, lint.ErrClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := projectDocs(t, "a.js")[0]
			rep := newBlockingReporter(tt.honorCtx)
			cache := doccache.New(0)
			s := &fakeSurface{}
			w := NewWorkspace(New(s), lint.NewLinter(rep, cache, nil), config.NewStore(config.Default()), nil, nil)
			w.Activate(doc)

			errc := make(chan error, 1)
			go func() {
				_, err := w.Lint(context.Background(), doc)
				errc <- err
			}()
			<-rep.started

			w.Close(doc)
			close(rep.release)

			require.ErrorIs(t, <-errc, tt.wantErr)
			_, ok := w.Report(doc)
			assert.False(t, ok, "closed document must not be cached")
			assert.Zero(t, cache.Len())
			assert.False(t, s.visible)
		})
	}
}
