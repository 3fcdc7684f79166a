// Package mapper converts lint results to visualization patterns.
package mapper

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dkoosis/flowcov/pkg/lint"
	"github.com/dkoosis/flowcov/pkg/pattern"
)

// DefaultTop bounds the lowest-coverage leaderboard.
const DefaultTop = 10

// Outcome is one file's lint result or failure.
type Outcome struct {
	Result lint.Result
	Err    error
}

// Options controls FromCoverage.
type Options struct {
	// Top bounds the leaderboard (DefaultTop when <= 0).
	Top int
}

// Totals aggregates outcomes.
type Totals struct {
	Files     int
	Linted    int
	Failed    int
	Skipped   int
	Covered   int
	Uncovered int
}

// Percent is the covered share of every linted expression, rounded.
func (t Totals) Percent() int {
	total := t.Covered + t.Uncovered
	if total == 0 {
		return 0
	}
	return (t.Covered*100 + total/2) / total
}

// Tally sums outcomes.
func Tally(outcomes []Outcome) Totals {
	t := Totals{Files: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			t.Failed++
		case o.Result.Skipped:
			t.Skipped++
		case o.Result.Report != nil:
			t.Linted++
			t.Covered += o.Result.Report.Expressions.CoveredCount
			t.Uncovered += o.Result.Report.Expressions.UncoveredCount
		}
	}
	return t
}

// FromCoverage converts lint outcomes into patterns:
// Summary + Leaderboard (if >1 linted file) + FileTable per file.
func FromCoverage(outcomes []Outcome, opts Options) []pattern.Pattern {
	totals := Tally(outcomes)
	patterns := []pattern.Pattern{coverageSummary(totals)}

	if lb := coverageLeaderboard(outcomes, totals, opts.Top); lb != nil {
		patterns = append(patterns, lb)
	}

	sorted := make([]Outcome, len(outcomes))
	copy(sorted, outcomes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Result.Document.Path < sorted[j].Result.Document.Path
	})
	for _, o := range sorted {
		patterns = append(patterns, FileTable(o))
	}
	return patterns
}

func coverageSummary(t Totals) *pattern.Summary {
	pctKind := "success"
	switch {
	case t.Linted == 0:
		pctKind = "info"
	case t.Percent() < 50:
		pctKind = "error"
	case t.Percent() < 80:
		pctKind = "warning"
	}

	metrics := []pattern.SummaryItem{
		{Label: "Files", Value: fmt.Sprintf("%d", t.Files), Kind: "info"},
		{Label: "Coverage", Value: fmt.Sprintf("%d%%", t.Percent()), Kind: pctKind},
		{Label: "Expressions", Value: fmt.Sprintf("%d of %d covered", t.Covered, t.Covered+t.Uncovered), Kind: "info"},
	}
	if t.Failed > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Failed", Value: fmt.Sprintf("%d", t.Failed), Kind: "error"})
	}
	if t.Skipped > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Skipped", Value: fmt.Sprintf("%d", t.Skipped), Kind: "warning"})
	}

	return &pattern.Summary{
		Label:   fmt.Sprintf("Coverage: %d%% across %d files", t.Percent(), t.Linted),
		Kind:    pattern.SummaryKindCoverage,
		Metrics: metrics,
	}
}

func coverageLeaderboard(outcomes []Outcome, t Totals, top int) *pattern.Leaderboard {
	if t.Linted <= 1 {
		return nil
	}
	if top <= 0 {
		top = DefaultTop
	}

	items := make([]pattern.LeaderboardItem, 0, t.Linted)
	for _, o := range outcomes {
		if o.Err != nil || o.Result.Report == nil {
			continue
		}
		path := o.Result.Document.Path
		pct := o.Result.Report.Percent()
		items = append(items, pattern.LeaderboardItem{
			Name:    displayName(path),
			Metric:  fmt.Sprintf("%d%%", pct),
			Value:   float64(pct),
			Context: path,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value < items[j].Value
		}
		return items[i].Context < items[j].Context
	})
	if len(items) > top {
		items = items[:top]
	}
	for i := range items {
		items[i].Rank = i + 1
	}

	return &pattern.Leaderboard{
		Label:      "Lowest Coverage",
		MetricName: "Coverage",
		Items:      items,
		Direction:  "lowest",
		TotalCount: t.Linted,
		ShowRank:   true,
	}
}

// FileTable maps one outcome. Uncovered regions are listed only when the
// lint produced diagnostics, that is when showing uncovered code was on.
func FileTable(o Outcome) *pattern.FileTable {
	ft := &pattern.FileTable{Label: o.Result.Document.Path}
	switch {
	case o.Err != nil:
		ft.Status = pattern.StatusError
		ft.Details = o.Err.Error()
		return ft
	case o.Result.Skipped || o.Result.Report == nil:
		ft.Status = pattern.StatusSkipped
		ft.Details = "not in a Flow project"
		return ft
	}

	r := o.Result.Report
	ft.Status = pattern.StatusCovered
	ft.Percent = r.Percent()
	ft.Metric = fmt.Sprintf("%d%% (%d of %d)", ft.Percent, r.Expressions.CoveredCount, r.Total())
	for _, d := range o.Result.Diagnostics {
		ft.Results = append(ft.Results, pattern.RegionItem{
			Name:    d.Range.String(),
			Line:    d.Range.Start.Line,
			Details: d.Message,
		})
	}
	sort.SliceStable(ft.Results, func(i, j int) bool { return ft.Results[i].Line < ft.Results[j].Line })
	return ft
}

func displayName(path string) string {
	name := filepath.Base(path)
	if dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator) {
		name = filepath.Join(filepath.Base(dir), name)
	}
	return name
}
