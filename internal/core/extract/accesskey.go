package extract

import "github.com/joseph-ayodele/danfe-extractor/internal/core/scan"

// AccessKeyExtractor finds the 44-digit NF-e access key. The first valid key in
// scanner order wins and stops the scan.
type AccessKeyExtractor struct {
	state State
	key   FieldCandidate
}

func NewAccessKeyExtractor() *AccessKeyExtractor {
	return &AccessKeyExtractor{}
}

func (e *AccessKeyExtractor) Observe(p scan.Pass) bool {
	if e.state != StateScanning {
		return true
	}
	keys := accessKeys(p.Text)
	if len(keys) == 0 {
		return false
	}
	m := keys[0]
	e.key = candidateAt(p, lineIndexAt(p.Text, m.start), m.value, SignalPattern)
	e.state = StateFound
	return true
}

func (e *AccessKeyExtractor) Finish() {
	if e.state == StateScanning {
		e.state = StateExhausted
	}
}

func (e *AccessKeyExtractor) Resolved() (int, int) {
	return boolCount(e.state == StateFound), 1
}

// State returns the extractor's lifecycle state.
func (e *AccessKeyExtractor) State() State { return e.state }

// Key returns the access key, if one was found.
func (e *AccessKeyExtractor) Key() (FieldCandidate, bool) {
	return e.key, e.state == StateFound
}
