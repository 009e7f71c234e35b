package ocr

import (
	"regexp"
	"strings"
)

var reCRLF = regexp.MustCompile(`\r\n?`)

// Normalize unifies line endings and drops the page-feed Tesseract appends to its
// output. Everything else is left alone: the extractors match on raw OCR text.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	return strings.TrimRight(s, "\f")
}
