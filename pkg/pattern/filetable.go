package pattern

// File statuses.
const (
	StatusCovered = "covered" // lint succeeded
	StatusError   = "error"   // lint failed
	StatusSkipped = "skipped" // not part of a Flow project
)

// FileTable is the lint outcome for one file.
type FileTable struct {
	Label   string // file path
	Status  string
	Percent int
	Metric  string // e.g., "75% (3 of 4)"
	Details string // error text for StatusError
	Results []RegionItem
}

// RegionItem is one uncovered region.
type RegionItem struct {
	Name    string // "line:col-line:col"
	Line    int
	Details string
}

func (f *FileTable) Type() PatternType { return PatternTypeFileTable }
