package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
)

var (
	reNumeroLabel  = regexp.MustCompile(`N[ÚU]MERO`)
	reNumeroPrefix = regexp.MustCompile(`N[ÚU]MERO[\s:]*([0-9]{6,10})`)
	reNoPrefix     = regexp.MustCompile(`N[ºO][\s:]*([0-9]{6,10})`)
	reSerie        = regexp.MustCompile(`S[ÉE]RIE[\s:]*([0-9]{1,3})`)
	// also matches the leading digit of "SÉRIE 12"
	reSerieOne = regexp.MustCompile(`S[ÉE]RIE[\s:]*1`)
)

// NumeroSerieExtractor resolves the document number and série independently.
//
// Per pass, the number is first looked up next to a NÚMERO label, then on Nº/NÚMERO
// prefixed clean lines. The frequency vote over the pass is computed every time and,
// when it yields a value, replaces whatever the anchored rules produced.
// The série is set by the first clean line carrying SÉRIE; on that same line the
// "SÉRIE 1" substring rule overrides the parsed value.
// The scan stops once both number and série hold a value.
type NumeroSerieExtractor struct {
	h      heuristics.Heuristics
	number *numberCandidate
	serie  *serieCandidate
}

type numberCandidate struct {
	FieldCandidate
	n uint64
}

type serieCandidate struct {
	FieldCandidate
	n int
}

func NewNumeroSerieExtractor(h heuristics.Heuristics) *NumeroSerieExtractor {
	return &NumeroSerieExtractor{h: h}
}

func (e *NumeroSerieExtractor) Observe(p scan.Pass) bool {
	if e.done() {
		return true
	}
	lines := lineTexts(p.Text)
	clean := make([]string, len(lines))
	for i, ln := range lines {
		clean[i] = Clean(ln, NumericPunct)
	}

	if e.number == nil {
		e.number = e.afterLabel(p, lines)
	}
	for i, lc := range clean {
		if e.number == nil {
			if m := reNoPrefix.FindStringSubmatch(lc); m != nil {
				e.number = newNumber(p, i, m[1], SignalPrefix)
			}
			if m := reNumeroPrefix.FindStringSubmatch(lc); m != nil {
				e.number = newNumber(p, i, m[1], SignalPrefix)
			}
		}
		if e.serie == nil {
			if m := reSerie.FindStringSubmatch(lc); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					e.serie = &serieCandidate{FieldCandidate: candidateAt(p, i, m[1], SignalPrefix), n: n}
				}
			}
			if reSerieOne.MatchString(lc) {
				e.serie = &serieCandidate{FieldCandidate: candidateAt(p, i, "1", SignalPattern), n: 1}
			}
		}
	}

	if best := bestNumber(p, clean); best != nil {
		e.number = best
	}
	return e.done()
}

func (e *NumeroSerieExtractor) done() bool {
	return e.number != nil && e.serie != nil
}

// afterLabel finds a line with a NÚMERO label and takes the number from that line,
// or from the first qualifying token on one of the next NumberLookahead lines.
func (e *NumeroSerieExtractor) afterLabel(p scan.Pass, lines []string) *numberCandidate {
	for i, ln := range lines {
		upper := strings.ToUpper(ln)
		if !reNumeroLabel.MatchString(upper) {
			continue
		}
		if m := reNumeroPrefix.FindStringSubmatch(upper); m != nil {
			return newNumber(p, i, m[1], SignalAnchor)
		}
		for j := 1; j <= e.h.NumberLookahead; j++ {
			if i+j >= len(lines) {
				break
			}
			if toks := digitTokens(lines[i+j], 6, 10); len(toks) > 0 {
				return newNumber(p, i+j, toks[0], SignalAnchor)
			}
		}
	}
	return nil
}

// bestNumber runs the frequency vote over the clean lines of one pass.
func bestNumber(p scan.Pass, clean []string) *numberCandidate {
	t := NewTally()
	for i, lc := range clean {
		for _, tok := range numberTokens(lc) {
			t.Add(candidateAt(p, i, tok, SignalFrequency))
		}
	}
	c, _, ok := t.MostFrequent()
	if !ok {
		return nil
	}
	return newNumber(p, c.Line, c.Value, SignalFrequency)
}

func newNumber(p scan.Pass, lineIdx int, digits string, sig Signal) *numberCandidate {
	n, ok := parseNumber(digits)
	if !ok {
		return nil
	}
	return &numberCandidate{FieldCandidate: candidateAt(p, lineIdx, PadNumber(n), sig), n: n}
}

func (e *NumeroSerieExtractor) Finish() {}

func (e *NumeroSerieExtractor) Resolved() (int, int) {
	return boolCount(e.number != nil) + boolCount(e.serie != nil), 2
}

// Number returns the document number, if resolved.
func (e *NumeroSerieExtractor) Number() (uint64, FieldCandidate, bool) {
	if e.number == nil {
		return 0, FieldCandidate{}, false
	}
	return e.number.n, e.number.FieldCandidate, true
}

// Serie returns the série, if resolved.
func (e *NumeroSerieExtractor) Serie() (int, FieldCandidate, bool) {
	if e.serie == nil {
		return 0, FieldCandidate{}, false
	}
	return e.serie.n, e.serie.FieldCandidate, true
}
