package pattern

// Sparkline is a word-sized trend of a document's coverage across lints.
type Sparkline struct {
	Label  string
	Values []float64
	Min    float64 // 0 = auto-detect
	Max    float64 // 0 = auto-detect
	Unit   string  // e.g., "%"
}

func (s *Sparkline) Type() PatternType { return PatternTypeSparkline }
