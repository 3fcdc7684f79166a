package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/flowcov/internal/config"
	"github.com/dkoosis/flowcov/pkg/checker"
	"github.com/dkoosis/flowcov/pkg/coverage"
	"github.com/dkoosis/flowcov/pkg/doccache"
	"github.com/dkoosis/flowcov/pkg/lint"
	"github.com/dkoosis/flowcov/pkg/presenter"
	"github.com/dkoosis/flowcov/pkg/render"
)

type fakeReporter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeReporter) Report(_ context.Context, _, file string) (*coverage.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[file]++
	return &coverage.Report{
		Expressions: coverage.Expressions{CoveredCount: 3, UncoveredCount: 1},
		UncoveredLocations: []coverage.Region{{
			Start: coverage.Position{Line: 4, Column: 2},
			End:   coverage.Position{Line: 4, Column: 9},
		}},
	}, nil
}

type fixture struct {
	model    model
	store    *config.Store
	tile     *presenter.Tile
	reporter *fakeReporter
	docs     []lint.Document
}

func newFixture(t *testing.T, opts Options, names ...string) *fixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, checker.ConfigMarker), nil, 0o600))
	var docs []lint.Document
	for _, n := range names {
		p := filepath.Join(root, n)
		require.NoError(t, os.WriteFile(p, []byte("// @flow\n"), 0o600))
		docs = append(docs, lint.NewDocument(p))
	}

	rep := &fakeReporter{calls: map[string]int{}}
	store := config.NewStore(config.Default())
	tile := presenter.NewTile(lipgloss.NewStyle(), lipgloss.NewStyle())
	ws := presenter.NewWorkspace(presenter.New(tile), lint.NewLinter(rep, doccache.New(0), nil), store, nil, nil)

	opts.Workspace = ws
	opts.Tile = tile
	opts.Store = store
	opts.Documents = docs
	opts.Theme = render.MonoTheme()
	m := newModel(context.Background(), opts)
	t.Cleanup(m.unsubscribe)
	return &fixture{model: m, store: store, tile: tile, reporter: rep, docs: docs}
}

func (f *fixture) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(msg)
	f.model = next.(model)
	return cmd
}

// lint runs the lint command for doc to completion.
func (f *fixture) lint(t *testing.T, doc lint.Document) {
	t.Helper()
	msg := f.model.lintCmd(doc)()
	f.send(t, msg)
}

// drainConfig feeds pending config changes to the model.
func (f *fixture) drainConfig(t *testing.T) {
	t.Helper()
	for {
		c, ok := f.model.changes.tryPop()
		if !ok {
			return
		}
		f.send(t, configMsg(c))
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_LintUpdatesTileForActiveDocument(t *testing.T) {
	f := newFixture(t, Options{}, "a.js", "b.js")
	assert.False(t, f.tile.Visible())

	f.lint(t, f.docs[0])
	assert.Equal(t, "Coverage: 75%", f.tile.Text())
	assert.Contains(t, f.model.View(), "Coverage: 75%")
	assert.False(t, f.model.busy())
}

func TestModel_TabSwitchingFollowsCache(t *testing.T) {
	f := newFixture(t, Options{}, "a.js", "b.js")
	f.lint(t, f.docs[0])

	f.send(t, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, f.model.selected)
	assert.False(t, f.tile.Visible(), "b.js has no cached report yet")

	f.send(t, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 0, f.model.selected)
	assert.True(t, f.tile.Visible())
}

func TestModel_ToggleRelintsAndShowsRegions(t *testing.T) {
	f := newFixture(t, Options{}, "a.js")
	f.lint(t, f.docs[0])
	assert.NotContains(t, f.model.detail(), "4:2-4:9")

	cmd := f.send(t, keyPress('u'))
	require.NotNil(t, cmd)
	f.send(t, cmd())
	f.drainConfig(t)

	assert.True(t, f.store.Current().ShowUncovered)
	assert.Equal(t, 2, f.reporter.calls[f.docs[0].Path])
	assert.Contains(t, f.model.detail(), "4:2-4:9")
}

func TestModel_CloseEvictsAndResets(t *testing.T) {
	f := newFixture(t, Options{}, "a.js")
	f.lint(t, f.docs[0])

	f.send(t, keyPress('x'))
	assert.Empty(t, f.model.docs)
	assert.False(t, f.tile.Visible())
	_, ok := f.model.ws.Report(f.docs[0])
	assert.False(t, ok)
	assert.Contains(t, f.model.View(), "(no documents)")
}

func TestModel_RestartNoticeAndDismiss(t *testing.T) {
	f := newFixture(t, Options{}, "a.js")

	f.store.Update(func(c *config.Config) { c.HyperclickPriority = 2 })
	f.drainConfig(t)
	assert.Equal(t, RestartNotice, f.model.notice)
	assert.Contains(t, f.model.View(), RestartNotice)

	f.send(t, keyPress('d'))
	assert.Empty(t, f.model.notice)
}

func TestModel_ExecutableChangeRelintsAll(t *testing.T) {
	f := newFixture(t, Options{}, "a.js", "b.js")

	f.store.Update(func(c *config.Config) { c.ExecutablePath = "/opt/flow" })
	f.drainConfig(t)
	assert.Equal(t, 1, f.model.running[string(f.docs[0].ID)])
	assert.Equal(t, 1, f.model.running[string(f.docs[1].ID)])
}

func TestModel_PollRelintsModifiedFiles(t *testing.T) {
	f := newFixture(t, Options{Poll: time.Hour}, "a.js", "b.js")

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(f.docs[1].Path, later, later))

	f.send(t, tickMsg{})
	assert.Zero(t, f.model.running[string(f.docs[0].ID)])
	assert.Equal(t, 1, f.model.running[string(f.docs[1].ID)])
}

func TestModel_PollReloadsConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}"), 0o600))
	reloaded := config.Default()
	reloaded.ShowUncovered = true

	f := newFixture(t, Options{
		Poll:       time.Hour,
		ConfigPath: cfgPath,
		Reload:     func() (config.Config, error) { return reloaded, nil },
	}, "a.js")

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(cfgPath, later, later))
	f.send(t, tickMsg{})
	assert.True(t, f.store.Current().ShowUncovered)
}

func TestModel_QuitKey(t *testing.T) {
	f := newFixture(t, Options{}, "a.js")
	cmd := f.send(t, keyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
