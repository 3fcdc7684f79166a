package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/flowcov/pkg/coverage"
	"github.com/dkoosis/flowcov/pkg/doccache"
	"github.com/dkoosis/flowcov/pkg/lint"
	"github.com/dkoosis/flowcov/pkg/pattern"
)

func linted(path string, covered, uncovered int, regions ...coverage.Region) Outcome {
	r := &coverage.Report{
		Expressions:        coverage.Expressions{CoveredCount: covered, UncoveredCount: uncovered},
		UncoveredLocations: regions,
	}
	doc := lint.Document{ID: doccache.DocumentID(path), Path: path}
	return Outcome{Result: lint.Result{
		Document:    doc,
		Report:      r,
		Diagnostics: coverage.Diagnostics(r, path, true),
	}}
}

func region(line, col, endLine, endCol int) coverage.Region {
	return coverage.Region{
		Start: coverage.Position{Line: line, Column: col},
		End:   coverage.Position{Line: endLine, Column: endCol},
	}
}

func TestTally(t *testing.T) {
	outcomes := []Outcome{
		linted("/p/a.js", 3, 1),
		linted("/p/b.js", 1, 3),
		{Result: lint.Result{Document: lint.Document{Path: "/x/c.js"}, Skipped: true}},
		{Result: lint.Result{Document: lint.Document{Path: "/p/d.js"}}, Err: errors.New("boom")},
	}
	got := Tally(outcomes)
	assert.Equal(t, Totals{Files: 4, Linted: 2, Failed: 1, Skipped: 1, Covered: 4, Uncovered: 4}, got)
	assert.Equal(t, 50, got.Percent())
	assert.Equal(t, 0, Totals{}.Percent())
}

func TestFromCoverage_Layout(t *testing.T) {
	outcomes := []Outcome{
		linted("/p/src/b.js", 1, 3, region(9, 1, 9, 4), region(2, 5, 2, 8)),
		linted("/p/src/a.js", 3, 1),
		{Result: lint.Result{Document: lint.Document{Path: "/p/src/c.js"}}, Err: errors.New("flow executable not found: flow")},
	}
	patterns := FromCoverage(outcomes, Options{})
	require.Len(t, patterns, 5)

	sum, ok := patterns[0].(*pattern.Summary)
	require.True(t, ok)
	assert.Equal(t, pattern.SummaryKindCoverage, sum.Kind)
	assert.Equal(t, "Coverage: 50% across 2 files", sum.Label)
	assert.Contains(t, sum.Metrics, pattern.SummaryItem{Label: "Failed", Value: "1", Kind: "error"})

	lb, ok := patterns[1].(*pattern.Leaderboard)
	require.True(t, ok)
	require.Len(t, lb.Items, 2)
	assert.Equal(t, "src/b.js", lb.Items[0].Name, "lowest coverage first")
	assert.Equal(t, 1, lb.Items[0].Rank)
	assert.Equal(t, "25%", lb.Items[0].Metric)

	a := patterns[2].(*pattern.FileTable)
	assert.Equal(t, "/p/src/a.js", a.Label)
	assert.Equal(t, pattern.StatusCovered, a.Status)
	assert.Equal(t, "75% (3 of 4)", a.Metric)

	b := patterns[3].(*pattern.FileTable)
	require.Len(t, b.Results, 2)
	assert.Equal(t, "2:5-2:8", b.Results[0].Name, "regions sorted by line")
	assert.Equal(t, coverage.UncoveredMessage, b.Results[0].Details)

	c := patterns[4].(*pattern.FileTable)
	assert.Equal(t, pattern.StatusError, c.Status)
	assert.Contains(t, c.Details, "not found")
}

func TestFromCoverage_SingleFileHasNoLeaderboard(t *testing.T) {
	patterns := FromCoverage([]Outcome{linted("/p/a.js", 1, 0)}, Options{})
	require.Len(t, patterns, 2)
	_, isTable := patterns[1].(*pattern.FileTable)
	assert.True(t, isTable)
}

func TestFromCoverage_LeaderboardTop(t *testing.T) {
	outcomes := []Outcome{
		linted("/p/a.js", 1, 1),
		linted("/p/b.js", 1, 2),
		linted("/p/c.js", 1, 3),
	}
	lb := FromCoverage(outcomes, Options{Top: 2})[1].(*pattern.Leaderboard)
	assert.Len(t, lb.Items, 2)
	assert.Equal(t, 3, lb.TotalCount)
	assert.Equal(t, "/p/c.js", lb.Items[0].Context)
}

func TestFileTable_Skipped(t *testing.T) {
	ft := FileTable(Outcome{Result: lint.Result{Document: lint.Document{Path: "/x/a.js"}, Skipped: true}})
	assert.Equal(t, pattern.StatusSkipped, ft.Status)
	assert.Empty(t, ft.Results)
}
