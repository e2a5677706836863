package docparse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFCapability turns raw PDF bytes into plain text. Implementations may
// return an error for malformed documents; a nil capability means no PDF
// parsing library is available.
type PDFCapability func(data []byte) (string, error)

// PDFExtractor extracts text from PDF documents.
type PDFExtractor struct {
	capability PDFCapability
}

// NewPDFExtractor returns a PDF extractor backed by the bundled parser.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{capability: readPDFText}
}

// NewPDFExtractorWithCapability returns a PDF extractor using the given
// capability. Pass nil to model an environment without a PDF library.
func NewPDFExtractorWithCapability(capability PDFCapability) *PDFExtractor {
	return &PDFExtractor{capability: capability}
}

func (e *PDFExtractor) Supports(mimeType, filename string) bool {
	return strings.EqualFold(mimeType, "application/pdf") ||
		strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func (e *PDFExtractor) Parse(data []byte, filename string) string {
	if e.capability == nil {
		return "[PDF processing requires a PDF parsing library]"
	}
	text, err := e.capability(data)
	if err != nil {
		return fmt.Sprintf("[PDF processing error: %v]", err)
	}
	return text
}

// readPDFText extracts text page by page. The underlying library panics on
// some malformed documents, so every call into it runs behind a recover.
func readPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := 0
	func() {
		defer func() { _ = recover() }()
		pages = reader.NumPage()
	}()
	if pages <= 0 {
		return "", fmt.Errorf("pdf has no readable pages")
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		func() {
			defer func() { _ = recover() }()
			page := reader.Page(i)
			if page.V.IsNull() {
				return
			}
			for _, item := range page.Content().Text {
				b.WriteString(item.S)
			}
			b.WriteString("\n")
		}()
	}

	return strings.TrimSpace(b.String()), nil
}
