package extract

import (
	"github.com/joseph-ayodele/danfe-extractor/internal/core/scan"
)

// feed drives e over texts as successive rotations of page 1, stopping when e is done.
// It returns how many passes were consumed.
func feed(e Extractor, texts ...string) int {
	for i, text := range texts {
		p := scan.Pass{Page: 1 + i/len(scan.Rotations), Rotation: scan.Rotations[i%len(scan.Rotations)], Text: text}
		if e.Observe(p) {
			return i + 1
		}
	}
	e.Finish()
	return len(texts)
}
