package extract

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
)

// Signal records which heuristic produced a candidate.
type Signal string

const (
	SignalPattern   Signal = "pattern"   // value-shape regex hit
	SignalAnchor    Signal = "anchor"    // found next to a layout anchor phrase
	SignalPrefix    Signal = "prefix"    // label-prefixed value on the same line
	SignalFrequency Signal = "frequency" // most frequent token of a pass
	SignalKeyword   Signal = "keyword"   // keyword-scored line without an anchor
	SignalProximity Signal = "proximity" // nearest qualifying line above another field
)

// FieldCandidate is a matched value and where it came from.
type FieldCandidate struct {
	Value    string
	Page     int
	Rotation int
	Line     int // 0-based line index within the pass (or the joined document text)
	Signal   Signal
}

func candidateAt(p scan.Pass, lineIdx int, value string, sig Signal) FieldCandidate {
	return FieldCandidate{Value: value, Page: p.Page, Rotation: p.Rotation, Line: lineIdx, Signal: sig}
}

// lineIndexAt returns the 0-based line holding byte offset off in text.
func lineIndexAt(text string, off int) int {
	lines := splitLines(text)
	i := sort.Search(len(lines), func(i int) bool { return lines[i].start > off })
	if i == 0 {
		return 0
	}
	return i - 1
}

// Tally counts candidate values while remembering the order values were first seen.
type Tally struct {
	order  []string
	counts map[string]int
	first  map[string]FieldCandidate
}

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return &Tally{counts: map[string]int{}, first: map[string]FieldCandidate{}}
}

// Add counts one occurrence of c.Value.
func (t *Tally) Add(c FieldCandidate) {
	if _, seen := t.counts[c.Value]; !seen {
		t.order = append(t.order, c.Value)
		t.first[c.Value] = c
	}
	t.counts[c.Value]++
}

// Len returns the number of distinct values.
func (t *Tally) Len() int { return len(t.order) }

// MostFrequent returns the first-seen occurrence of the most frequent value and its
// count. Ties go to the value seen first.
func (t *Tally) MostFrequent() (FieldCandidate, int, bool) {
	best, bestN := "", 0
	for _, v := range t.order {
		if n := t.counts[v]; n > bestN {
			best, bestN = v, n
		}
	}
	if bestN == 0 {
		return FieldCandidate{}, 0, false
	}
	return t.first[best], bestN, true
}

// docLine is a line of the joined document text and the pass it came from.
type docLine struct {
	text string
	pass scan.Pass
}

// joinPasses concatenates pass texts with newlines, as one document, and splits the
// result into lines remembering each line's originating pass.
func joinPasses(passes []scan.Pass) []docLine {
	texts := make([]string, len(passes))
	starts := make([]int, len(passes))
	off := 0
	for i, p := range passes {
		texts[i] = p.Text
		starts[i] = off
		off += len(p.Text) + 1
	}
	joined := strings.Join(texts, "\n")

	lines := splitLines(joined)
	out := make([]docLine, len(lines))
	for i, l := range lines {
		k := sort.Search(len(starts), func(k int) bool { return starts[k] > l.start }) - 1
		if k < 0 {
			k = 0
		}
		out[i] = docLine{text: l.text, pass: passes[k]}
	}
	return out
}
