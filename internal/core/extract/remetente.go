package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
	"github.com/joseph-ayodele/danfe-extractor/internal/heuristics"
)

// RemetenteExtractor resolves the sender's tax id and legal name over the joined text
// of every pass. It never stops the scan early.
type RemetenteExtractor struct {
	h      heuristics.Heuristics
	title  cases.Caser
	passes []scan.Pass

	taxID     TaxID
	taxSource FieldCandidate
	hasTaxID  bool
	name      *FieldCandidate
}

func NewRemetenteExtractor(h heuristics.Heuristics) *RemetenteExtractor {
	return &RemetenteExtractor{h: h, title: cases.Title(language.BrazilianPortuguese)}
}

func (e *RemetenteExtractor) Observe(p scan.Pass) bool {
	e.passes = append(e.passes, p)
	return false
}

// Finish resolves the tax id (first CNPJ, else first CPF) and, only when one exists,
// the legal name.
func (e *RemetenteExtractor) Finish() {
	lines := joinPasses(e.passes)
	e.resolveTaxID(lines)
	if !e.hasTaxID {
		return
	}
	for _, rule := range []func([]docLine) (FieldCandidate, bool){
		e.fromReceipt,
		e.fromSenderBlock,
		e.fromAnyLine,
		e.aboveTaxID,
	} {
		if c, ok := rule(lines); ok {
			e.name = &c
			return
		}
	}
}

func (e *RemetenteExtractor) resolveTaxID(lines []docLine) {
	finders := []struct {
		kind TaxIDKind
		find func(string) (match, bool)
	}{
		{KindCNPJ, findCNPJ},
		{KindCPF, findCPF},
	}
	for _, f := range finders {
		for i, dl := range lines {
			m, ok := f.find(dl.text)
			if !ok {
				continue
			}
			e.taxID = TaxID{Kind: f.kind, Value: m.value}
			e.taxSource = candidateAt(dl.pass, i, m.value, SignalPattern)
			e.hasTaxID = true
			return
		}
	}
}

// fromReceipt reads the name out of the receipt stub "RECEBEMOS DE <name> OS PRODUTOS...".
func (e *RemetenteExtractor) fromReceipt(lines []docLine) (FieldCandidate, bool) {
	anchor := strings.ToUpper(e.h.ReceiptAnchor)
	for i, dl := range lines {
		upper := strings.ToUpper(dl.text)
		idx := strings.Index(upper, anchor)
		if idx < 0 {
			continue
		}
		after := upper[idx+len(anchor):]
		for _, stop := range e.h.ReceiptStops {
			if k := strings.Index(after, stop); k >= 0 {
				after = after[:k]
			}
		}
		name := titleCase(e.title, strings.TrimSpace(after))
		if e.h.HasCorporateKeyword(name) {
			return candidateAt(dl.pass, i, name, SignalAnchor), true
		}
	}
	return FieldCandidate{}, false
}

// fromSenderBlock looks a few lines below a DESTINATÁRIO/REMETENTE block header.
func (e *RemetenteExtractor) fromSenderBlock(lines []docLine) (FieldCandidate, bool) {
	for i, dl := range lines {
		if !e.isSenderHeader(dl.text) {
			continue
		}
		end := min(i+1+e.h.SenderLookahead, len(lines))
		for j := i + 1; j < end; j++ {
			if l := strings.TrimSpace(lines[j].text); e.qualifies(l) {
				return candidateAt(lines[j].pass, j, l, SignalAnchor), true
			}
		}
	}
	return FieldCandidate{}, false
}

// fromAnyLine takes the first non-label line with a corporate keyword.
func (e *RemetenteExtractor) fromAnyLine(lines []docLine) (FieldCandidate, bool) {
	for i, dl := range lines {
		if !e.h.IsBlacklisted(dl.text) && e.h.HasCorporateKeyword(dl.text) {
			return candidateAt(dl.pass, i, strings.TrimSpace(dl.text), SignalKeyword), true
		}
	}
	return FieldCandidate{}, false
}

// aboveTaxID walks upward from every line carrying the tax id.
func (e *RemetenteExtractor) aboveTaxID(lines []docLine) (FieldCandidate, bool) {
	for i, dl := range lines {
		if !containsTaxID(dl.text, e.taxID) {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if l := strings.TrimSpace(lines[j].text); e.qualifies(l) {
				return candidateAt(lines[j].pass, j, l, SignalProximity), true
			}
		}
	}
	return FieldCandidate{}, false
}

func (e *RemetenteExtractor) isSenderHeader(line string) bool {
	upper := strings.ToUpper(line)
	for _, a := range e.h.SenderAnchors {
		if strings.Contains(upper, strings.ToUpper(a)) {
			return true
		}
	}
	return false
}

// qualifies is the legal-name line test shared by the block and proximity rules.
func (e *RemetenteExtractor) qualifies(l string) bool {
	return l != "" &&
		runeLen(l) > 3 &&
		!e.h.IsBlacklisted(l) &&
		!HasCNPJShape(l) &&
		e.h.HasCorporateKeyword(l)
}

func (e *RemetenteExtractor) Resolved() (int, int) {
	return boolCount(e.hasTaxID) + boolCount(e.name != nil), 2
}

// TaxID returns the sender's CNPJ or CPF.
func (e *RemetenteExtractor) TaxID() (TaxID, FieldCandidate, bool) {
	return e.taxID, e.taxSource, e.hasTaxID
}

// LegalName returns the sender's razão social.
func (e *RemetenteExtractor) LegalName() (FieldCandidate, bool) {
	if e.name == nil {
		return FieldCandidate{}, false
	}
	return *e.name, true
}

// titleCase title-cases s and also capitalizes the letter after an apostrophe
// ("D'OESTE" -> "D'Oeste"), which cases.Title leaves lower-case.
func titleCase(c cases.Caser, s string) string {
	rs := []rune(c.String(s))
	for i := 1; i < len(rs); i++ {
		if (rs[i-1] == '\'' || rs[i-1] == '’') && unicode.IsLetter(rs[i]) {
			rs[i] = unicode.ToUpper(rs[i])
		}
	}
	return string(rs)
}
