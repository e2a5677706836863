package docparse

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDocx assembles a minimal OOXML container holding the given
// paragraphs.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestWordExtractorSupports(t *testing.T) {
	e := NewWordExtractor()

	assert.True(t, e.Supports("application/msword", "data.bin"))
	assert.True(t, e.Supports("application/vnd.openxmlformats-officedocument.wordprocessingml.document", "data.bin"))
	assert.True(t, e.Supports("application/octet-stream", "report.doc"))
	assert.True(t, e.Supports("application/octet-stream", "report.DOCX"))
	assert.False(t, e.Supports("application/pdf", "report.pdf"))
}

func TestWordExtractorParse(t *testing.T) {
	t.Run("missing capability", func(t *testing.T) {
		e := NewWordExtractorWithCapability(nil)
		out := e.Parse([]byte{}, "report.docx")
		require.Equal(t, "[DOCX processing requires a DOCX parsing library]", out)
	})

	t.Run("capability error", func(t *testing.T) {
		e := NewWordExtractorWithCapability(func([]byte) (string, error) {
			return "", fmt.Errorf("truncated archive")
		})
		out := e.Parse([]byte{}, "report.docx")
		require.Equal(t, "[DOCX processing error: truncated archive]", out)
	})

	t.Run("paragraph text", func(t *testing.T) {
		e := NewWordExtractor()
		out := e.Parse(buildDocx(t, "first paragraph", "second paragraph"), "report.docx")
		require.Equal(t, "first paragraph\nsecond paragraph", out)
	})

	t.Run("legacy doc payload is a diagnostic", func(t *testing.T) {
		e := NewWordExtractor()
		out := e.Parse([]byte("\xd0\xcf\x11\xe0 legacy word binary"), "report.doc")
		require.True(t, strings.HasPrefix(out, "[DOCX processing error: "), out)
	})
}
