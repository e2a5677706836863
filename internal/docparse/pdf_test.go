package docparse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExtractorSupports(t *testing.T) {
	e := NewPDFExtractor()

	assert.True(t, e.Supports("application/pdf", "data.bin"))
	assert.True(t, e.Supports("APPLICATION/PDF", "data.bin"))
	assert.True(t, e.Supports("application/octet-stream", "paper.PDF"))
	assert.False(t, e.Supports("text/plain", "paper.txt"))
}

func TestPDFExtractorParse(t *testing.T) {
	t.Run("missing capability", func(t *testing.T) {
		e := NewPDFExtractorWithCapability(nil)
		out := e.Parse([]byte("%PDF-1.4"), "paper.pdf")
		require.Equal(t, "[PDF processing requires a PDF parsing library]", out)
	})

	t.Run("capability error", func(t *testing.T) {
		e := NewPDFExtractorWithCapability(func([]byte) (string, error) {
			return "", fmt.Errorf("broken xref table")
		})
		out := e.Parse([]byte("%PDF-1.4"), "paper.pdf")
		require.Equal(t, "[PDF processing error: broken xref table]", out)
	})

	t.Run("capability success", func(t *testing.T) {
		e := NewPDFExtractorWithCapability(func([]byte) (string, error) {
			return "page one\npage two", nil
		})
		out := e.Parse([]byte("%PDF-1.4"), "paper.pdf")
		require.Equal(t, "page one\npage two", out)
	})

	t.Run("bundled capability rejects garbage without panicking", func(t *testing.T) {
		e := NewPDFExtractor()
		out := e.Parse([]byte("definitely not a pdf"), "paper.pdf")
		require.True(t, strings.HasPrefix(out, "[PDF processing error: "), out)
	})
}
