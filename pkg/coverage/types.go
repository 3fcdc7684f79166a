// Package coverage parses Flow coverage reports and derives the summary and
// diagnostics an editor displays for them.
package coverage

import (
	"encoding/json"
	"fmt"
)

// Report is a parsed `flow coverage --json` document.
// A Report is never mutated after Parse returns it.
type Report struct {
	Expressions        Expressions `json:"expressions"`
	UncoveredLocations []Region    `json:"uncoveredLocations"`
}

// Expressions holds the checker's expression counts.
type Expressions struct {
	CoveredCount   int `json:"covered_count"`
	UncoveredCount int `json:"uncovered_count"`
}

// Region is a source span the checker could not type.
type Region struct {
	Source string   `json:"source,omitempty"`
	Start  Position `json:"start"`
	End    Position `json:"end"`
}

// Position is a line/column pair exactly as reported by the checker.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// UnmarshalJSON accepts both "column" and the abbreviated "col" key.
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw struct {
		Line   *int `json:"line"`
		Column *int `json:"column"`
		Col    *int `json:"col"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Line == nil {
		return fmt.Errorf("position: missing line")
	}
	p.Line = *raw.Line
	switch {
	case raw.Column != nil:
		p.Column = *raw.Column
	case raw.Col != nil:
		p.Column = *raw.Col
	default:
		return fmt.Errorf("position: missing column")
	}
	return nil
}

// String formats the region as start-end, e.g. "3:5-3:12".
func (r Region) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
}

// Severity of a Diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// UncoveredMessage is the text attached to every uncovered-region diagnostic.
const UncoveredMessage = "Uncovered code: Flow cannot infer a type here"

// Diagnostic is a single inline message for the host editor.
type Diagnostic struct {
	File     string   `json:"file"`
	Range    Region   `json:"range"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}
