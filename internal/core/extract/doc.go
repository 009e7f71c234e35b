// Package extract turns multi-rotation OCR text of DANFE invoices into validated
// field values.
//
// Every extractor consumes a stream of scan.Pass values in scanner order through
// Observe, reports when it no longer needs more passes, and is closed with Finish.
// A field is either a normalized value of its canonical shape or absent; raw matched
// substrings never leave this package unvalidated.
//
// The heuristics differ per field: the access key and the natureza use
// first-match-wins, the document number uses a per-pass frequency vote that
// overrides anchored matches, and the sender tax id is first-match over the whole
// document.
package extract
