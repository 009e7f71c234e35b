package extract

import (
	"strings"

	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
)

// NaturezaExtractor finds the "natureza da operação" line.
//
// Anchor mode: the first cleaned, non-numeric line long enough that follows a line
// containing the anchor phrase. It ends the scan and always beats the fallback.
// Fallback mode: the first line of the document whose upper-cased clean form is long
// enough, does not start with a skipped prefix and scores on the keyword table. Only
// the first fallback hit is kept.
type NaturezaExtractor struct {
	h        heuristics.Heuristics
	anchor   string
	found    *FieldCandidate
	fallback *FieldCandidate
}

func NewNaturezaExtractor(h heuristics.Heuristics) *NaturezaExtractor {
	return &NaturezaExtractor{h: h, anchor: strings.ToUpper(h.NaturezaAnchor)}
}

func (e *NaturezaExtractor) Observe(p scan.Pass) bool {
	if e.found != nil {
		return true
	}
	lines := lineTexts(p.Text)
	if c, ok := e.anchored(p, lines); ok {
		e.found = &c
		return true
	}
	if e.fallback == nil {
		if c, ok := e.scored(p, lines); ok {
			e.fallback = &c
		}
	}
	return false
}

func (e *NaturezaExtractor) anchored(p scan.Pass, lines []string) (FieldCandidate, bool) {
	for i, ln := range lines {
		if !strings.Contains(strings.ToUpper(ln), e.anchor) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			next := Clean(lines[j], NaturezaPunct)
			if next != "" && !allDigits(next) && runeLen(next) > e.h.NaturezaMinAnchorLen {
				return candidateAt(p, j, next, SignalAnchor), true
			}
		}
	}
	return FieldCandidate{}, false
}

func (e *NaturezaExtractor) scored(p scan.Pass, lines []string) (FieldCandidate, bool) {
	for i, ln := range lines {
		upper := Clean(strings.ToUpper(ln), NaturezaPunct)
		if runeLen(upper) > e.h.NaturezaMinFallbackLen &&
			!e.h.SkipNatureza(upper) &&
			e.h.NaturezaScore(upper) > 0 {
			return candidateAt(p, i, upper, SignalKeyword), true
		}
	}
	return FieldCandidate{}, false
}

func (e *NaturezaExtractor) Finish() {}

func (e *NaturezaExtractor) Resolved() (int, int) {
	_, ok := e.Value()
	return boolCount(ok), 1
}

// Value returns the anchored line if any, else the first fallback line.
func (e *NaturezaExtractor) Value() (FieldCandidate, bool) {
	if e.found != nil {
		return *e.found, true
	}
	if e.fallback != nil {
		return *e.fallback, true
	}
	return FieldCandidate{}, false
}
