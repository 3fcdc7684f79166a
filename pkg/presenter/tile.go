package presenter

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Tile is a Surface drawn with lipgloss, used by the terminal host.
type Tile struct {
	mu      sync.RWMutex
	text    string
	tooltip string
	visible bool

	Label lipgloss.Style
	Hint  lipgloss.Style
}

// NewTile creates a hidden tile with the given styles.
func NewTile(label, hint lipgloss.Style) *Tile {
	return &Tile{Label: label, Hint: hint}
}

func (t *Tile) SetText(text string) {
	t.mu.Lock()
	t.text = text
	t.mu.Unlock()
}

func (t *Tile) SetTooltip(text string) {
	t.mu.Lock()
	t.tooltip = text
	t.mu.Unlock()
}

func (t *Tile) SetVisible(visible bool) {
	t.mu.Lock()
	t.visible = visible
	t.mu.Unlock()
}

// Text returns the current label.
func (t *Tile) Text() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.text
}

// Tooltip returns the current tooltip.
func (t *Tile) Tooltip() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tooltip
}

// Visible reports whether the tile is shown.
func (t *Tile) Visible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.visible
}

// View renders the tile, or "" when hidden. With detail the tooltip is
// appended.
func (t *Tile) View(detail bool) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.visible {
		return ""
	}
	out := t.Label.Render(t.text)
	if detail && t.tooltip != "" {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, "  ", t.Hint.Render(t.tooltip))
	}
	return out
}
