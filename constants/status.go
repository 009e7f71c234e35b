package constants

// FieldStatus is the terminal state of one extraction job for one document.
type FieldStatus string

// Stable values (store these exact strings in DB).
const (
	StatusFound     FieldStatus = "FOUND"     // every field of the job resolved
	StatusPartial   FieldStatus = "PARTIAL"   // some fields resolved
	StatusExhausted FieldStatus = "EXHAUSTED" // all pages/rotations scanned, nothing resolved
)

// StatusOf derives a FieldStatus from the resolved/total field counts.
func StatusOf(resolved, total int) FieldStatus {
	switch {
	case resolved == 0:
		return StatusExhausted
	case resolved < total:
		return StatusPartial
	default:
		return StatusFound
	}
}
