// Package presenter shows the coverage of the active document in a host
// status tile and routes host document events to the linter.
package presenter

import (
	"fmt"

	"github.com/dkoosis/flowcov/pkg/coverage"
)

// Surface is the status tile a host exposes.
type Surface interface {
	SetText(text string)
	SetTooltip(text string)
	SetVisible(visible bool)
}

// Presenter writes coverage summaries to a Surface.
type Presenter struct {
	surface Surface
}

// New creates a Presenter for s. The tile starts hidden.
func New(s Surface) *Presenter {
	p := &Presenter{surface: s}
	p.Reset()
	return p
}

// Update shows the coverage of report. A nil report resets the tile.
func (p *Presenter) Update(report *coverage.Report) {
	if report == nil {
		p.Reset()
		return
	}
	pct := report.Percent()
	p.surface.SetText(Text(report))
	p.surface.SetTooltip(fmt.Sprintf("Covered %d%% (%d of %d)",
		pct, report.Expressions.CoveredCount, report.Total()))
	p.surface.SetVisible(true)
}

// Reset clears and hides the tile.
func (p *Presenter) Reset() {
	p.surface.SetText("")
	p.surface.SetTooltip("")
	p.surface.SetVisible(false)
}

// Text is the tile label for report.
func Text(report *coverage.Report) string {
	return fmt.Sprintf("Coverage: %d%%", report.Percent())
}
