package docparse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextExtractorSupports(t *testing.T) {
	e := NewTextExtractor()

	t.Run("mime prefix", func(t *testing.T) {
		assert.True(t, e.Supports("text/plain", "whatever.bin"))
		assert.True(t, e.Supports("TEXT/HTML", "whatever.bin"))
		assert.False(t, e.Supports("application/pdf", "whatever.bin"))
	})

	t.Run("filename suffixes", func(t *testing.T) {
		for _, name := range []string{"a.txt", "a.md", "a.csv", "a.json", "a.xml", "a.html", "a.htm", "A.TXT"} {
			assert.True(t, e.Supports("application/octet-stream", name), name)
		}
		assert.False(t, e.Supports("application/octet-stream", "a.bin"))
	})
}

func TestTextExtractorDecodeChain(t *testing.T) {
	e := NewTextExtractor()

	t.Run("utf-8", func(t *testing.T) {
		out := e.Parse([]byte("  hello 世界\n"), "a.txt")
		require.Equal(t, "hello 世界", out)
	})

	t.Run("gbk fallback", func(t *testing.T) {
		// "中文" encoded as GBK, which is not valid UTF-8.
		out := e.Parse([]byte{0xd6, 0xd0, 0xce, 0xc4}, "a.txt")
		require.Equal(t, "中文", out)
	})

	t.Run("latin-1 fallback", func(t *testing.T) {
		// Invalid in both UTF-8 and GBK.
		out := e.Parse([]byte{0xff, 0xfe}, "a.txt")
		require.Equal(t, "ÿþ", out)
	})

	t.Run("all decoders fail", func(t *testing.T) {
		failing := func([]byte) (string, error) { return "", fmt.Errorf("nope") }
		custom := NewTextExtractorWithDecoders([]TextDecoder{failing, failing})
		out := custom.Parse([]byte{0x01}, "notes.txt")
		require.Equal(t, "[cannot decode text file notes.txt]", out)
	})

	t.Run("empty chain cannot decode", func(t *testing.T) {
		custom := NewTextExtractorWithDecoders(nil)
		out := custom.Parse([]byte("hi"), "a.txt")
		require.Equal(t, "[cannot decode text file a.txt]", out)
	})
}
