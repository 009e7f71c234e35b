package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// 11 groups of 4 digits, each optionally followed by a space or newline.
	reAccessKey = regexp.MustCompile(`(?:\d{4}[ \n]?){11}`)
	// OCR often reads the CNPJ hyphen as a space or drops it.
	reCNPJ       = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}[- ]?\d{2}`)
	reCNPJStrict = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}`)
	reCPF        = regexp.MustCompile(`\d{3}\.\d{3}\.\d{3}-\d{2}`)
	reDigits44   = regexp.MustCompile(`\d{44}`)
	reNonDigit   = regexp.MustCompile(`\D`)
)

// AccessKeyLen is the number of digits in a NF-e access key.
const AccessKeyLen = 44

// NormalizeDigits strips every non-digit character.
func NormalizeDigits(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}

// ValidAccessKey reports whether raw normalizes to exactly 44 digits.
func ValidAccessKey(raw string) bool {
	return len(NormalizeDigits(raw)) == AccessKeyLen
}

// match is a validated pattern hit: the canonical value and its byte span in the input.
type match struct {
	value      string
	start, end int
}

// accessKeys returns every access-key shaped substring of text, in order, normalized.
// Substrings that do not normalize to 44 digits are dropped.
func accessKeys(text string) []match {
	var out []match
	for _, loc := range reAccessKey.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if !ValidAccessKey(raw) {
			continue
		}
		out = append(out, match{value: NormalizeDigits(raw), start: loc[0], end: loc[1]})
	}
	return out
}

// TaxIDKind distinguishes company and individual taxpayer ids.
type TaxIDKind string

const (
	KindCNPJ TaxIDKind = "CNPJ"
	KindCPF  TaxIDKind = "CPF"
)

// TaxID is a canonical CNPJ (NN.NNN.NNN/NNNN-NN) or CPF (NNN.NNN.NNN-NN).
type TaxID struct {
	Kind  TaxIDKind
	Value string
}

func (t TaxID) String() string { return t.Value }

// FormatCNPJ renders 14 digits in the canonical CNPJ shape.
func FormatCNPJ(digits string) (string, error) {
	if len(digits) != 14 || !allASCIIDigits(digits) {
		return "", fmt.Errorf("cnpj needs 14 digits, got %q", digits)
	}
	return digits[0:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:14], nil
}

// findCNPJ returns the first CNPJ-shaped substring of text, canonicalized.
func findCNPJ(text string) (match, bool) {
	loc := reCNPJ.FindStringIndex(text)
	if loc == nil {
		return match{}, false
	}
	v, err := FormatCNPJ(NormalizeDigits(text[loc[0]:loc[1]]))
	if err != nil {
		return match{}, false
	}
	return match{value: v, start: loc[0], end: loc[1]}, true
}

// findCPF returns the first CPF-shaped substring of text.
func findCPF(text string) (match, bool) {
	loc := reCPF.FindStringIndex(text)
	if loc == nil {
		return match{}, false
	}
	return match{value: text[loc[0]:loc[1]], start: loc[0], end: loc[1]}, true
}

// FindTaxID returns the first CNPJ in text, or the first CPF when there is no CNPJ.
func FindTaxID(text string) (TaxID, bool) {
	if m, ok := findCNPJ(text); ok {
		return TaxID{Kind: KindCNPJ, Value: m.value}, true
	}
	if m, ok := findCPF(text); ok {
		return TaxID{Kind: KindCPF, Value: m.value}, true
	}
	return TaxID{}, false
}

// HasCNPJShape reports whether s contains a CNPJ-shaped substring.
func HasCNPJShape(s string) bool { return reCNPJ.MatchString(s) }

// containsTaxID reports whether line carries id, comparing canonical forms so OCR
// separator variants ("-" vs " ") still match.
func containsTaxID(line string, id TaxID) bool {
	switch id.Kind {
	case KindCNPJ:
		for _, raw := range reCNPJ.FindAllString(line, -1) {
			if v, err := FormatCNPJ(NormalizeDigits(raw)); err == nil && v == id.Value {
				return true
			}
		}
	case KindCPF:
		for _, raw := range reCPF.FindAllString(line, -1) {
			if raw == id.Value {
				return true
			}
		}
	}
	return false
}

// excludedFromVoting reports whether a line carries a CNPJ or a contiguous access key,
// whose digit groups must not be counted as document-number candidates.
func excludedFromVoting(line string) bool {
	return reCNPJStrict.MatchString(line) || reDigits44.MatchString(line)
}

// numberTokens returns the standalone 6–9 digit tokens of a line eligible for the
// frequency vote.
func numberTokens(line string) []string {
	if excludedFromVoting(line) {
		return nil
	}
	return digitTokens(line, 6, 9)
}

// parseNumber converts a digit string to the document number. Leading zeros are
// insignificant.
func parseNumber(digits string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// PadNumber renders n zero-padded to 9 digits, the internal document number width.
func PadNumber(n uint64) string {
	return fmt.Sprintf("%09d", n)
}

// FormatNumber renders n for output with leading zeros stripped. A zero number yields
// the empty string, matching the established output of stripping zeros from the
// padded form.
func FormatNumber(n uint64) string {
	return strings.TrimLeft(PadNumber(n), "0")
}
