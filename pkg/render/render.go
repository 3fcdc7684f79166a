// Package render provides output renderers for flowcov's patterns.
package render

import (
	"fmt"

	"github.com/dkoosis/flowcov/pkg/pattern"
)

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// Format names.
const (
	FormatTerminal = "terminal"
	FormatLLM      = "llm"
	FormatJSON     = "json"
)

// New returns the renderer for format. "auto" must be resolved by the
// caller first.
func New(format string, theme Theme, width int) (Renderer, error) {
	switch format {
	case FormatTerminal:
		return NewTerminal(theme, width), nil
	case FormatLLM:
		return NewLLM(), nil
	case FormatJSON:
		return NewJSON(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
