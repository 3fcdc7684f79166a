package coverage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrParse is wrapped by every ParseError.
var ErrParse = errors.New("coverage: malformed report")

// ParseError describes why checker output could not be read as a Report.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse coverage report: %s: %v", e.Reason, e.Err)
	}
	return "parse coverage report: " + e.Reason
}

// Is reports ErrParse for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// wireReport mirrors the JSON with pointer fields so missing keys can be told
// apart from zero values.
type wireReport struct {
	Expressions *struct {
		CoveredCount       *int     `json:"covered_count"`
		UncoveredCount     *int     `json:"uncovered_count"`
		UncoveredLocations []Region `json:"uncovered_locations"`
	} `json:"expressions"`
	UncoveredLocations *[]Region `json:"uncoveredLocations"`
}

// Parse decodes checker output into a Report. It is strict: anything other
// than a single well-formed JSON object carrying the expression counts fails
// with a *ParseError.
func Parse(data []byte) (*Report, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &ParseError{Reason: "empty output"}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var w wireReport
	if err := dec.Decode(&w); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Reason: "trailing data after JSON object"}
	}

	if w.Expressions == nil {
		return nil, &ParseError{Reason: `missing "expressions"`}
	}
	if w.Expressions.CoveredCount == nil {
		return nil, &ParseError{Reason: `missing "expressions.covered_count"`}
	}
	if w.Expressions.UncoveredCount == nil {
		return nil, &ParseError{Reason: `missing "expressions.uncovered_count"`}
	}
	covered, uncovered := *w.Expressions.CoveredCount, *w.Expressions.UncoveredCount
	if covered < 0 || uncovered < 0 {
		return nil, &ParseError{Reason: "negative expression count"}
	}

	report := &Report{
		Expressions: Expressions{CoveredCount: covered, UncoveredCount: uncovered},
	}
	switch {
	case w.UncoveredLocations != nil:
		report.UncoveredLocations = *w.UncoveredLocations
	case w.Expressions.UncoveredLocations != nil:
		report.UncoveredLocations = w.Expressions.UncoveredLocations
	default:
		report.UncoveredLocations = []Region{}
	}
	return report, nil
}

// Read parses a Report from r.
func Read(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read coverage report: %w", err)
	}
	return Parse(data)
}
