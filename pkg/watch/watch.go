// Package watch is a terminal host for the coverage workspace: open files
// are tabs, the active tab drives the status tile, and file or config
// changes trigger re-lints.
package watch

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dkoosis/flowcov/internal/config"
	"github.com/dkoosis/flowcov/internal/logging"
	"github.com/dkoosis/flowcov/pkg/coverage"
	"github.com/dkoosis/flowcov/pkg/lint"
	"github.com/dkoosis/flowcov/pkg/mapper"
	"github.com/dkoosis/flowcov/pkg/pattern"
	"github.com/dkoosis/flowcov/pkg/presenter"
	"github.com/dkoosis/flowcov/pkg/render"
)

// DefaultPoll is how often files and the config file are checked.
const DefaultPoll = time.Second

const historyLen = 24

// RestartNotice is shown when a change only takes effect after a restart.
const RestartNotice = "Hyperclick priority changed: restart flowcov watch to apply"

// Options configures the host.
type Options struct {
	Workspace *presenter.Workspace
	Tile      *presenter.Tile
	Store     *config.Store
	Documents []lint.Document
	Theme     render.Theme

	// ConfigPath is polled for changes; Reload re-resolves the
	// configuration when it changes. Both are optional.
	ConfigPath string
	Reload     func() (config.Config, error)

	Poll        time.Duration
	StopTimeout time.Duration
	Logger      *slog.Logger
}

// Run starts the host and blocks until the user quits or ctx is done.
// Spawned checker servers are stopped before it returns.
func Run(ctx context.Context, opts Options) error {
	m := newModel(ctx, opts)
	defer m.unsubscribe()

	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()

	stopTimeout := opts.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = config.DefaultTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	opts.Workspace.Shutdown(stopCtx)
	return err
}

type tickMsg struct{}

type lintDoneMsg struct {
	doc lint.Document
	err error
}

type configMsg config.Change

type docState struct {
	doc     lint.Document
	modTime time.Time
	history []float64
	err     error
	linted  bool
}

type model struct {
	ctx    context.Context
	ws     *presenter.Workspace
	tile   *presenter.Tile
	store  *config.Store
	theme  render.Theme
	logger *slog.Logger

	docs     []*docState
	selected int
	running  map[string]int

	configPath  string
	configMod   time.Time
	reload      func() (config.Config, error)
	changes     *changeQueue
	unsubscribe func()

	notice string
	status string
	poll   time.Duration

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	ready    bool
}

func newModel(ctx context.Context, opts Options) model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	poll := opts.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}

	m := model{
		ctx:        ctx,
		ws:         opts.Workspace,
		tile:       opts.Tile,
		store:      opts.Store,
		theme:      opts.Theme,
		logger:     logger,
		running:    make(map[string]int),
		configPath: opts.ConfigPath,
		configMod:  modTime(opts.ConfigPath),
		reload:     opts.Reload,
		changes:    newChangeQueue(),
		poll:       poll,
		keys:       defaultKeys(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		viewport:   viewport.New(80, 20),
		width:      80,
	}
	for _, d := range opts.Documents {
		m.docs = append(m.docs, &docState{doc: d, modTime: modTime(d.Path)})
	}

	m.unsubscribe = opts.Store.Subscribe(m.changes.push)

	if len(m.docs) > 0 {
		m.ws.Activate(m.docs[0].doc)
	}
	m.refreshViewport()
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick(), m.listenConfig(), m.spinner.Tick}
	for _, d := range m.docs {
		cmds = append(cmds, m.lintCmd(d.doc))
	}
	return tea.Batch(cmds...)
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.poll, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) listenConfig() tea.Cmd {
	changes := m.changes
	return func() tea.Msg { return configMsg(changes.pop()) }
}

func (m *model) lintCmd(doc lint.Document) tea.Cmd {
	m.running[string(doc.ID)]++
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		_, err := ws.Lint(ctx, doc)
		return lintDoneMsg{doc: doc, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 3)
		m.ready = true
		m.refreshViewport()

	case tickMsg:
		return m, tea.Batch(append(m.pollChanges(), m.tick())...)

	case lintDoneMsg:
		m.finishLint(msg)
		m.refreshViewport()

	case configMsg:
		cmds := m.applyConfig(config.Change(msg))
		m.refreshViewport()
		return m, tea.Batch(append(cmds, m.listenConfig())...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.selectDoc(m.selected + 1)
	case key.Matches(msg, m.keys.Prev):
		m.selectDoc(m.selected - 1)
	case key.Matches(msg, m.keys.Toggle):
		d := m.active()
		ws, ctx := m.ws, m.ctx
		if d != nil {
			m.running[string(d.doc.ID)]++
		}
		return m, func() tea.Msg {
			_, err := ws.Toggle(ctx)
			if d == nil {
				return nil
			}
			return lintDoneMsg{doc: d.doc, err: err}
		}
	case key.Matches(msg, m.keys.Relint):
		if d := m.active(); d != nil {
			return m, m.lintCmd(d.doc)
		}
	case key.Matches(msg, m.keys.Close):
		m.closeActive()
	case key.Matches(msg, m.keys.Dismiss):
		m.notice = ""
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	m.refreshViewport()
	return m, nil
}

func (m *model) active() *docState {
	if m.selected < 0 || m.selected >= len(m.docs) {
		return nil
	}
	return m.docs[m.selected]
}

func (m *model) selectDoc(i int) {
	if len(m.docs) == 0 {
		return
	}
	m.selected = (i + len(m.docs)) % len(m.docs)
	m.ws.Activate(m.docs[m.selected].doc)
}

func (m *model) closeActive() {
	d := m.active()
	if d == nil {
		return
	}
	m.ws.Close(d.doc)
	m.docs = append(m.docs[:m.selected], m.docs[m.selected+1:]...)
	if len(m.docs) == 0 {
		m.selected = 0
		m.ws.Deactivate()
		return
	}
	m.selectDoc(min(m.selected, len(m.docs)-1))
}

func (m *model) find(id string) *docState {
	for _, d := range m.docs {
		if string(d.doc.ID) == id {
			return d
		}
	}
	return nil
}

func (m *model) finishLint(msg lintDoneMsg) {
	id := string(msg.doc.ID)
	if m.running[id] > 0 {
		m.running[id]--
	}
	d := m.find(id)
	if d == nil {
		return
	}
	d.linted = true
	d.err = msg.err
	if msg.err != nil {
		m.logger.Debug("lint failed", "file", msg.doc.Path, "error", msg.err)
		return
	}
	if r, ok := m.ws.Report(msg.doc); ok {
		d.history = append(d.history, float64(r.Percent()))
		if len(d.history) > historyLen {
			d.history = d.history[len(d.history)-historyLen:]
		}
	}
}

// pollChanges re-lints modified documents and reloads a modified config
// file.
func (m *model) pollChanges() []tea.Cmd {
	var cmds []tea.Cmd
	for _, d := range m.docs {
		mt := modTime(d.doc.Path)
		if mt.IsZero() || mt.Equal(d.modTime) {
			continue
		}
		d.modTime = mt
		cmds = append(cmds, m.lintCmd(d.doc))
	}

	if m.configPath != "" && m.reload != nil {
		if mt := modTime(m.configPath); !mt.Equal(m.configMod) {
			m.configMod = mt
			cfg, err := m.reload()
			if err != nil {
				m.status = "config: " + err.Error()
			} else {
				m.status = ""
				m.store.Set(cfg)
			}
		}
	}
	return cmds
}

// applyConfig reacts to a configuration change. ShowUncovered only
// changes what is displayed; settings that affect the checker re-lint
// every open document.
func (m *model) applyConfig(c config.Change) []tea.Cmd {
	if c.RestartRequired {
		m.notice = RestartNotice
	}
	if c.Old.ExecutablePath == c.New.ExecutablePath && c.Old.OnlyIfAppropriate == c.New.OnlyIfAppropriate {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(m.docs))
	for _, d := range m.docs {
		cmds = append(cmds, m.lintCmd(d.doc))
	}
	return cmds
}

func (m *model) refreshViewport() {
	m.viewport.SetContent(m.detail())
}

func (m model) detail() string {
	d := m.active()
	if d == nil {
		return m.theme.Muted.Render("No open documents.")
	}
	if d.err != nil {
		return m.theme.Error.Render(d.err.Error())
	}

	report, ok := m.ws.Report(d.doc)
	if !ok {
		if d.linted {
			return m.theme.Muted.Render("No coverage: not part of a Flow project.")
		}
		return m.theme.Muted.Render("Waiting for the checker...")
	}

	cfg := m.store.Current()
	outcome := mapper.Outcome{Result: lint.Result{
		Document:    d.doc,
		Report:      report,
		Diagnostics: coverage.Diagnostics(report, d.doc.Path, cfg.ShowUncovered),
	}}
	patterns := []pattern.Pattern{mapper.FileTable(outcome)}
	if len(d.history) > 1 {
		patterns = append(patterns, &pattern.Sparkline{Label: "Trend", Values: d.history, Min: 0, Max: 100, Unit: "%"})
	}
	return render.NewTerminal(m.theme, m.width).Render(patterns)
}

func (m model) View() string {
	var sb strings.Builder
	sb.WriteString(m.tabs())
	sb.WriteString("\n")

	tile := m.tile.View(true)
	if m.busy() {
		tile = m.spinner.View() + " " + tile
	}
	sb.WriteString(tile)
	sb.WriteString("\n")
	if m.notice != "" {
		sb.WriteString(m.theme.Warning.Render(m.notice + " (d to dismiss)"))
		sb.WriteString("\n")
	}
	if m.status != "" {
		sb.WriteString(m.theme.Error.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m model) tabs() string {
	if len(m.docs) == 0 {
		return m.theme.Muted.Render("(no documents)")
	}
	active := m.theme.Bold.Underline(true)
	parts := make([]string, 0, len(m.docs))
	for i, d := range m.docs {
		name := lintName(d.doc)
		if i == m.selected {
			parts = append(parts, active.Render(name))
		} else {
			parts = append(parts, m.theme.Muted.Render(name))
		}
	}
	return strings.Join(parts, "  ")
}

func (m model) busy() bool {
	for _, n := range m.running {
		if n > 0 {
			return true
		}
	}
	return false
}

func lintName(doc lint.Document) string {
	parts := strings.Split(doc.Path, string(os.PathSeparator))
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], string(os.PathSeparator))
	}
	return doc.Path
}

func modTime(path string) time.Time {
	if path == "" {
		return time.Time{}
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
