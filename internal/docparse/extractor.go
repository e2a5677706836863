// Package docparse extracts plain text from uploaded documents.
//
// Extractors never fail loudly: every Parse call returns a string, and any
// problem (missing capability, malformed payload, undecodable bytes) is
// rendered inline as a single-line bracketed diagnostic so downstream
// consumers always receive printable text.
package docparse

// Extractor converts one family of document formats to plain text.
type Extractor interface {
	// Supports reports whether this extractor handles the given MIME type
	// or filename. Both checks are case-insensitive.
	Supports(mimeType, filename string) bool

	// Parse extracts text from raw file bytes. It never panics and never
	// returns an error; failures appear in the output as bracketed
	// diagnostics.
	Parse(data []byte, filename string) string
}
