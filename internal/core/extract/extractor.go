package extract

import "github.com/joseph-ayodele/danfe-extractor/internal/core/scan"

// Extractor is the contract every field extractor implements.
type Extractor interface {
	// Observe consumes one pass and reports whether the extractor is done: once true,
	// no further pages or rotations need to be read for this document.
	Observe(p scan.Pass) (done bool)
	// Finish closes the scan; extractors that resolve on the whole document do their
	// work here.
	Finish()
	// Resolved returns how many of the extractor's fields hold a value, and how many
	// fields it has.
	Resolved() (resolved, total int)
}

// State is the lifecycle of a single-field extractor.
type State int

const (
	StateScanning State = iota
	StateFound
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateFound:
		return "FOUND"
	case StateExhausted:
		return "EXHAUSTED"
	default:
		return "SCANNING"
	}
}

func boolCount(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
