package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dkoosis/flowcov/pkg/pattern"
)

// maxDetailLines caps multi-line error text per file.
const maxDetailLines = 3

// LLM renders patterns as terse plain text for AI consumption.
// No ANSI codes, deterministic order, SCOPE line first.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var (
		summaries []*pattern.Summary
		tables    []*pattern.FileTable
		sparks    []*pattern.Sparkline
	)
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			summaries = append(summaries, v)
		case *pattern.FileTable:
			tables = append(tables, v)
		case *pattern.Sparkline:
			sparks = append(sparks, v)
		}
	}

	var sb strings.Builder
	sb.WriteString("SCOPE: " + llmScope(summaries, tables) + "\n")

	// Errors first, then covered files ascending by percent, then skipped.
	sorted := make([]*pattern.FileTable, len(tables))
	copy(sorted, tables)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := statusPriority(sorted[i].Status), statusPriority(sorted[j].Status)
		if pi != pj {
			return pi < pj
		}
		if sorted[i].Percent != sorted[j].Percent {
			return sorted[i].Percent < sorted[j].Percent
		}
		return sorted[i].Label < sorted[j].Label
	})

	for _, t := range sorted {
		sb.WriteString("\n## " + t.Label)
		switch t.Status {
		case pattern.StatusCovered:
			sb.WriteString(" " + t.Metric + "\n")
		case pattern.StatusError:
			sb.WriteString(" ERR\n")
		default:
			sb.WriteString(" SKIP\n")
		}
		if t.Details != "" {
			lines := strings.Split(t.Details, "\n")
			for _, line := range lines[:min(len(lines), maxDetailLines)] {
				sb.WriteString("  " + line + "\n")
			}
			if len(lines) > maxDetailLines {
				sb.WriteString(fmt.Sprintf("  ... (%d more lines)\n", len(lines)-maxDetailLines))
			}
		}
		for _, r := range t.Results {
			sb.WriteString("  UNCOVERED " + r.Name + "\n")
		}
	}

	for _, s := range sparks {
		if len(s.Values) == 0 {
			continue
		}
		vals := make([]string, len(s.Values))
		for i, v := range s.Values {
			vals[i] = fmt.Sprintf("%.0f", v)
		}
		sb.WriteString(fmt.Sprintf("\nTREND %s: %s%s\n", s.Label, strings.Join(vals, " "), s.Unit))
	}
	return sb.String()
}

func llmScope(summaries []*pattern.Summary, tables []*pattern.FileTable) string {
	var covered, failed, skipped int
	for _, t := range tables {
		switch t.Status {
		case pattern.StatusCovered:
			covered++
		case pattern.StatusError:
			failed++
		case pattern.StatusSkipped:
			skipped++
		}
	}

	parts := []string{fmt.Sprintf("%d files", len(tables))}
	for _, s := range summaries {
		if s.Kind != pattern.SummaryKindCoverage {
			continue
		}
		for _, m := range s.Metrics {
			if m.Label == "Coverage" {
				parts = append(parts, m.Value+" covered")
			}
		}
	}
	var breakdown []string
	if failed > 0 {
		breakdown = append(breakdown, fmt.Sprintf("%d err", failed))
	}
	if skipped > 0 {
		breakdown = append(breakdown, fmt.Sprintf("%d skip", skipped))
	}
	if len(breakdown) > 0 {
		parts = append(parts, "("+strings.Join(breakdown, ", ")+")")
	}
	return strings.Join(parts, ", ")
}

func statusPriority(status string) int {
	switch status {
	case pattern.StatusError:
		return 0
	case pattern.StatusCovered:
		return 1
	default:
		return 2
	}
}
