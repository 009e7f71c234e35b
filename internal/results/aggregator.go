package results

import (
	"sync"

	"github.com/joseph-ayodele/danfe-extractor/constants"
)

// Aggregator collects documents processed in any order and hands them back in
// input order. It is safe for concurrent use.
type Aggregator struct {
	mu    sync.Mutex
	slots []*Document
}

// NewAggregator sizes the aggregator for n input documents.
func NewAggregator(n int) *Aggregator {
	return &Aggregator{slots: make([]*Document, n)}
}

// Put stores the document at input position i. Positions outside the batch grow it.
func (a *Aggregator) Put(i int, d Document) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i >= len(a.slots) {
		a.slots = append(a.slots, nil)
	}
	a.slots[i] = &d
}

// Documents returns the stored documents in input order.
func (a *Aggregator) Documents() []Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Document, 0, len(a.slots))
	for _, d := range a.slots {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

// Records returns job's output records in input order.
func (a *Aggregator) Records(job constants.Job) []any {
	docs := a.Documents()
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Record(job))
	}
	return out
}

// Summary counts documents per terminal status of job.
func (a *Aggregator) Summary(job constants.Job) map[constants.FieldStatus]int {
	out := map[constants.FieldStatus]int{}
	for _, d := range a.Documents() {
		if o, ok := d.Outcomes[job]; ok {
			out[o.Status]++
		}
	}
	return out
}
