package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// WordCapability turns raw Word document bytes into plain text. A nil
// capability means no Word parsing support is available.
type WordCapability func(data []byte) (string, error)

// WordExtractor extracts text from Word documents. The bundled capability
// understands OOXML (.docx); legacy binary .doc payloads fail zip opening
// and surface as a processing diagnostic.
type WordExtractor struct {
	capability WordCapability
}

// NewWordExtractor returns a Word extractor backed by the bundled OOXML
// reader.
func NewWordExtractor() *WordExtractor {
	return &WordExtractor{capability: readDocxText}
}

// NewWordExtractorWithCapability returns a Word extractor using the given
// capability. Pass nil to model an environment without a Word library.
func NewWordExtractorWithCapability(capability WordCapability) *WordExtractor {
	return &WordExtractor{capability: capability}
}

func (e *WordExtractor) Supports(mimeType, filename string) bool {
	switch strings.ToLower(mimeType) {
	case "application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return true
	}
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".doc") || strings.HasSuffix(lower, ".docx")
}

func (e *WordExtractor) Parse(data []byte, filename string) string {
	if e.capability == nil {
		return "[DOCX processing requires a DOCX parsing library]"
	}
	text, err := e.capability(data)
	if err != nil {
		return fmt.Sprintf("[DOCX processing error: %v]", err)
	}
	return text
}

// readDocxText opens the OOXML container and collects paragraph text from
// word/document.xml, one line per paragraph.
func readDocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("open document part: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx container has no word/document.xml")
	}
	defer doc.Close()

	var (
		b         strings.Builder
		paragraph strings.Builder
		dec       = xml.NewDecoder(doc)
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document part: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var run string
				if err := dec.DecodeElement(&run, &t); err != nil {
					return "", fmt.Errorf("decode text run: %w", err)
				}
				paragraph.WriteString(run)
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				b.WriteString(paragraph.String())
				b.WriteString("\n")
				paragraph.Reset()
			}
		}
	}
	if paragraph.Len() > 0 {
		b.WriteString(paragraph.String())
	}

	return strings.TrimSpace(b.String()), nil
}
