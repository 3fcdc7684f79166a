package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/flowcov/pkg/pattern"
)

func samplePatterns() []pattern.Pattern {
	return []pattern.Pattern{
		&pattern.Summary{
			Label: "Coverage: 50% across 2 files",
			Kind:  pattern.SummaryKindCoverage,
			Metrics: []pattern.SummaryItem{
				{Label: "Files", Value: "3", Kind: "info"},
				{Label: "Coverage", Value: "50%", Kind: "warning"},
				{Label: "Failed", Value: "1", Kind: "error"},
			},
		},
		&pattern.Leaderboard{
			Label:    "Lowest Coverage",
			ShowRank: true,
			Items: []pattern.LeaderboardItem{
				{Name: "src/b.js", Metric: "25%", Value: 25, Rank: 1},
				{Name: "src/a.js", Metric: "75%", Value: 75, Rank: 2},
			},
			TotalCount: 2,
		},
		&pattern.FileTable{Label: "/p/src/a.js", Status: pattern.StatusCovered, Percent: 75, Metric: "75% (3 of 4)"},
		&pattern.FileTable{
			Label: "/p/src/b.js", Status: pattern.StatusCovered, Percent: 25, Metric: "25% (1 of 4)",
			Results: []pattern.RegionItem{{Name: "2:5-2:8", Line: 2, Details: "Uncovered code"}},
		},
		&pattern.FileTable{Label: "/p/src/c.js", Status: pattern.StatusError, Details: "flow executable not found: flow"},
	}
}

func TestNew(t *testing.T) {
	for _, f := range []string{FormatTerminal, FormatLLM, FormatJSON} {
		r, err := New(f, MonoTheme(), 80)
		require.NoError(t, err, f)
		assert.NotNil(t, r)
	}
	_, err := New("auto", MonoTheme(), 80)
	assert.Error(t, err)
}

func TestTerminal_Render(t *testing.T) {
	out := NewTerminal(MonoTheme(), 80).Render(samplePatterns())
	assert.Contains(t, out, "Coverage: 50% across 2 files")
	assert.Contains(t, out, " 1. src/b.js")
	assert.Contains(t, out, "75% (3 of 4)")
	assert.Contains(t, out, "- 2:5-2:8")
	assert.Contains(t, out, "x /p/src/c.js")
	assert.Contains(t, out, "Error", "status is title-cased")
	assert.Contains(t, out, "#####.", "coverage bar")
}

func TestTerminal_TruncatesWideNames(t *testing.T) {
	long := strings.Repeat("目录/", 30) + "a.js"
	out := NewTerminal(MonoTheme(), 40).Render([]pattern.Pattern{
		&pattern.FileTable{Label: long, Status: pattern.StatusSkipped},
	})
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)
}

func TestTerminal_Sparkline(t *testing.T) {
	out := NewTerminal(MonoTheme(), 80).Render([]pattern.Pattern{
		&pattern.Sparkline{Label: "a.js", Values: []float64{10, 50, 90}, Unit: "%"},
	})
	assert.Contains(t, out, "a.js: ▁▄█ 90%")
}

func TestLLM_Render(t *testing.T) {
	out := NewLLM().Render(samplePatterns())
	lines := strings.Split(out, "\n")
	assert.Equal(t, "SCOPE: 3 files, 50% covered, (1 err)", lines[0])

	errIdx := strings.Index(out, "## /p/src/c.js ERR")
	lowIdx := strings.Index(out, "## /p/src/b.js 25% (1 of 4)")
	highIdx := strings.Index(out, "## /p/src/a.js 75% (3 of 4)")
	require.True(t, errIdx > 0 && lowIdx > 0 && highIdx > 0, out)
	assert.Less(t, errIdx, lowIdx, "errors first")
	assert.Less(t, lowIdx, highIdx, "lowest coverage next")
	assert.Contains(t, out, "  UNCOVERED 2:5-2:8\n")
	assert.NotContains(t, out, "\x1b[", "no ANSI codes")
}

func TestLLM_DetailsCapped(t *testing.T) {
	out := NewLLM().Render([]pattern.Pattern{
		&pattern.FileTable{Label: "a.js", Status: pattern.StatusError, Details: "1\n2\n3\n4\n5"},
	})
	assert.Contains(t, out, "... (2 more lines)")
	assert.NotContains(t, out, "  4\n")
}

func TestJSON_Render(t *testing.T) {
	out := NewJSON().Render(samplePatterns())
	var decoded struct {
		Version  string `json:"version"`
		Patterns []struct {
			Type string `json:"type"`
		} `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Patterns, 5)
	assert.Equal(t, "summary", decoded.Patterns[0].Type)
	assert.Equal(t, "file-table", decoded.Patterns[2].Type)
}
