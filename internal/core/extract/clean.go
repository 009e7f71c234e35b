package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Punctuation kept by Clean, per field family.
const (
	NaturezaPunct = "-./"
	NumericPunct  = "-./º:"
)

// Clean keeps word characters, whitespace and the runes listed in keep, then collapses
// whitespace runs to a single space and trims the ends. Clean(Clean(x, k), k) == Clean(x, k).
func Clean(text, keep string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isWordRune(r) || unicode.IsSpace(r) || strings.ContainsRune(keep, r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// line is one line of OCR text and its byte offset in the source string.
type line struct {
	text  string
	start int
}

// splitLines splits on the same boundaries Tesseract output can contain: \n, \r, \r\n,
// vertical tab, form feed, file/group/record separators, NEL and the Unicode line and
// paragraph separators. A trailing boundary does not produce an empty last line.
func splitLines(s string) []line {
	var out []line
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		out = append(out, line{text: s[start:i], start: start})
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(s) {
		out = append(out, line{text: s[start:], start: start})
	}
	return out
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// lineTexts returns only the text of each line of s.
func lineTexts(s string) []string {
	lines := splitLines(s)
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// wordTokens returns the maximal runs of word characters in s.
func wordTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
}

// digitTokens returns the standalone all-digit words of s whose length is within
// [min, max]. A digit run glued to a letter or underscore is not standalone.
func digitTokens(s string, min, max int) []string {
	var out []string
	for _, w := range wordTokens(s) {
		if n := len(w); n >= min && n <= max && allASCIIDigits(w) {
			out = append(out, w)
		}
	}
	return out
}

func allASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
