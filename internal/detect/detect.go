// Package detect classifies checker error text into transient busy states.
package detect

import "strings"

// Signal is what a piece of checker error output says about server state.
type Signal int

const (
	None       Signal = iota // not a busy signal
	Starting                 // server was just launched for this root
	Rechecking               // server is up but still initializing or rechecking
)

func (s Signal) String() string {
	switch s {
	case Starting:
		return "starting"
	case Rechecking:
		return "rechecking"
	default:
		return "none"
	}
}

// Busy reports whether the signal means the request should be retried.
func (s Signal) Busy() bool { return s != None }

// Markers lists lowercase substrings recognised in checker error output.
type Markers struct {
	Starting   []string
	Rechecking []string
}

// DefaultMarkers returns the texts Flow prints while it boots or rechecks.
func DefaultMarkers() Markers {
	return Markers{
		Starting: []string{
			"launching flow server",
			"started a new flow server",
			"starting flow server",
		},
		Rechecking: []string{
			"server is initializing",
			"flow is initializing",
			"still initializing",
			"rechecking",
			"please wait",
		},
	}
}

// Classify inspects text with the default markers.
func Classify(text string) Signal {
	return DefaultMarkers().Classify(text)
}

// Classify matches text case-insensitively. Starting takes precedence since
// a freshly launched server also reports that it is initializing.
func (m Markers) Classify(text string) Signal {
	if text == "" {
		return None
	}
	lower := strings.ToLower(text)
	for _, marker := range m.Starting {
		if strings.Contains(lower, marker) {
			return Starting
		}
	}
	for _, marker := range m.Rechecking {
		if strings.Contains(lower, marker) {
			return Rechecking
		}
	}
	return None
}
