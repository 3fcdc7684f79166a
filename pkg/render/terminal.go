package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/flowcov/pkg/pattern"
)

const barWidth = 20

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
	title cases.Caser
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width, title: cases.Title(language.English)}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		if s := t.renderOne(p); s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	case *pattern.FileTable:
		return t.renderFileTable(v)
	case *pattern.Sparkline:
		return t.renderSparkline(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.kindStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		header := l.Label
		if l.TotalCount > len(l.Items) {
			header += fmt.Sprintf(" (%d of %d)", len(l.Items), l.TotalCount)
		}
		sb.WriteString(t.theme.Bold.Render(header))
		sb.WriteString("\n")
	}

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		maxName = max(maxName, runewidth.StringWidth(item.Name))
		maxMetric = max(maxMetric, runewidth.StringWidth(item.Metric))
	}
	maxName = min(maxName, t.nameBudget(maxMetric+barWidth+10))

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		name := runewidth.Truncate(item.Name, maxName, "...")
		sb.WriteString(t.theme.Primary.Render(runewidth.FillRight(name, maxName)))
		sb.WriteString("  ")
		pct := int(item.Value)
		style := t.theme.PercentStyle(pct)
		sb.WriteString(style.Render(padLeft(item.Metric, maxMetric)))
		sb.WriteString(" ")
		sb.WriteString(t.bar(pct, style))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderFileTable(f *pattern.FileTable) string {
	var sb strings.Builder
	icon, style := t.statusStyle(f.Status)

	name := runewidth.Truncate(f.Label, t.nameBudget(runewidth.StringWidth(f.Metric)+4), "...")
	sb.WriteString(style.Render(icon + " "))
	sb.WriteString(t.theme.Bold.Render(name))

	switch f.Status {
	case pattern.StatusCovered:
		sb.WriteString("  ")
		sb.WriteString(t.theme.PercentStyle(f.Percent).Render(f.Metric))
	default:
		sb.WriteString("  ")
		sb.WriteString(style.Render(t.title.String(f.Status)))
	}
	sb.WriteString("\n")

	if f.Details != "" {
		for _, line := range strings.Split(f.Details, "\n") {
			sb.WriteString("    ")
			sb.WriteString(t.theme.Muted.Render(line))
			sb.WriteString("\n")
		}
	}

	maxRegion := 0
	for _, r := range f.Results {
		maxRegion = max(maxRegion, runewidth.StringWidth(r.Name))
	}
	for _, r := range f.Results {
		sb.WriteString("    ")
		sb.WriteString(t.theme.Warning.Render(t.theme.Icons.Uncovered + " " + runewidth.FillRight(r.Name, maxRegion)))
		if r.Details != "" {
			budget := t.width - maxRegion - 8
			sb.WriteString("  ")
			sb.WriteString(t.theme.Muted.Render(runewidth.Truncate(r.Details, max(budget, 10), "...")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderSparkline(s *pattern.Sparkline) string {
	if len(s.Values) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Primary.Render(s.Label + ": "))
	}

	minVal, maxVal := s.Min, s.Max
	if minVal == 0 && maxVal == 0 {
		minVal, maxVal = s.Values[0], s.Values[0]
		for _, v := range s.Values {
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	valueRange := maxVal - minVal
	if valueRange == 0 {
		valueRange = 1
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	var spark strings.Builder
	for _, v := range s.Values {
		idx := int((v - minVal) / valueRange * 7)
		spark.WriteRune(blocks[min(max(idx, 0), 7)])
	}
	latest := s.Values[len(s.Values)-1]
	sb.WriteString(t.theme.PercentStyle(int(latest)).Render(spark.String()))
	sb.WriteString(t.theme.Muted.Render(fmt.Sprintf(" %.0f%s", latest, s.Unit)))
	sb.WriteString("\n")
	return sb.String()
}

// bar draws pct as a fixed-width gauge.
func (t *Terminal) bar(pct int, style lipgloss.Style) string {
	filled := min(max(pct*barWidth/100, 0), barWidth)
	return style.Render(strings.Repeat(t.theme.Icons.Bar, filled)) +
		t.theme.Muted.Render(strings.Repeat(t.theme.Icons.BarEmpty, barWidth-filled))
}

// nameBudget is the width left for a name after reserved columns.
func (t *Terminal) nameBudget(reserved int) int {
	return max(t.width-reserved, 12)
}

func (t *Terminal) kindStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Covered, t.theme.Success
	case "error":
		return t.theme.Icons.Error, t.theme.Error
	case "warning":
		return t.theme.Icons.Skipped, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) statusStyle(status string) (string, lipgloss.Style) {
	switch status {
	case pattern.StatusCovered:
		return t.theme.Icons.Covered, t.theme.Success
	case pattern.StatusError:
		return t.theme.Icons.Error, t.theme.Error
	case pattern.StatusSkipped:
		return t.theme.Icons.Skipped, t.theme.Muted
	default:
		return t.theme.Icons.Info, t.theme.Muted
	}
}

func padLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}
