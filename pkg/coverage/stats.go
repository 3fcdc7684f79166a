package coverage

import "math"

// Total returns covered + uncovered expressions.
func (r *Report) Total() int {
	return r.Expressions.CoveredCount + r.Expressions.UncoveredCount
}

// Percent returns the covered share rounded to the nearest integer.
// A report with no expressions is 0%.
func (r *Report) Percent() int {
	total := r.Total()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(r.Expressions.CoveredCount) / float64(total) * 100))
}

// Diagnostics converts the uncovered regions of r into info diagnostics for
// file. When showUncovered is false the result is always empty.
func Diagnostics(r *Report, file string, showUncovered bool) []Diagnostic {
	if r == nil || !showUncovered {
		return []Diagnostic{}
	}
	diags := make([]Diagnostic, 0, len(r.UncoveredLocations))
	for _, region := range r.UncoveredLocations {
		diags = append(diags, Diagnostic{
			File:     file,
			Range:    region,
			Severity: SeverityInfo,
			Message:  UncoveredMessage,
		})
	}
	return diags
}
