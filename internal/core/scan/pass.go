package scan

import (
	"fmt"
	"strings"
)

// Rotations are the page angles, in degrees counter-clockwise, every page is read at.
// The true orientation of a scanned page is unknown, so all four are always tried in
// this order.
var Rotations = []int{0, 90, 180, 270}

// Pass is the OCR text of one page read at one rotation.
type Pass struct {
	Page     int // 1-based
	Rotation int
	Text     string
}

// Transcript accumulates the passes a job has seen, for diagnostic dumps.
type Transcript struct {
	Passes []Pass
}

// Add appends p to the transcript.
func (t *Transcript) Add(p Pass) {
	t.Passes = append(t.Passes, p)
}

// Len returns the number of recorded passes.
func (t *Transcript) Len() int { return len(t.Passes) }

// String renders the dump format: one header per pass followed by its text.
func (t *Transcript) String() string {
	blocks := make([]string, 0, len(t.Passes))
	for _, p := range t.Passes {
		blocks = append(blocks, fmt.Sprintf("--- Página %d (rot %d°) ---\n%s\n", p.Page, p.Rotation, p.Text))
	}
	return strings.Join(blocks, "\n")
}
