package docparse

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestProcessMessageContent(t *testing.T) {
	svc := NewService(nil)

	t.Run("string passes through", func(t *testing.T) {
		require.Equal(t, "  keep me  ", svc.ProcessMessageContent("  keep me  "))
	})

	t.Run("text parts and raw strings concatenate", func(t *testing.T) {
		content := []any{
			"alpha ",
			map[string]any{"type": "text", "text": "beta"},
		}
		require.Equal(t, "alpha beta", svc.ProcessMessageContent(content))
	})

	t.Run("text plus file", func(t *testing.T) {
		content := []any{
			map[string]any{"type": "text", "text": "hello"},
			map[string]any{
				"type":        "file",
				"source_type": "base64",
				"data":        b64("hi"),
				"mime_type":   "text/plain",
				"metadata":    map[string]any{"filename": "a.txt"},
			},
		}
		require.Equal(t, "hello\n\n文件内容 (a.txt):\nhi", svc.ProcessMessageContent(content))
	})

	t.Run("file without filename metadata", func(t *testing.T) {
		content := []any{
			map[string]any{
				"type":        "file",
				"source_type": "base64",
				"data":        b64("hi"),
				"mime_type":   "text/plain",
			},
		}
		require.Equal(t, "文件内容 (unknown_file):\nhi", svc.ProcessMessageContent(content))
	})

	t.Run("file without mime type falls back to octet-stream", func(t *testing.T) {
		content := []any{
			map[string]any{
				"type":        "file",
				"source_type": "base64",
				"data":        b64("hi"),
				"metadata":    map[string]any{"filename": "blob.bin"},
			},
		}
		out := svc.ProcessMessageContent(content)
		assert.Contains(t, out, "[unsupported file type: application/octet-stream for blob.bin]")
	})

	t.Run("unknown parts are ignored", func(t *testing.T) {
		content := []any{
			map[string]any{"type": "image", "url": "https://example.com/x.png"},
			map[string]any{"type": "file", "source_type": "url", "data": "x"},
			map[string]any{"type": "text", "text": "only this"},
		}
		require.Equal(t, "only this", svc.ProcessMessageContent(content))
	})

	t.Run("unexpected content type yields empty", func(t *testing.T) {
		require.Equal(t, "", svc.ProcessMessageContent(42))
	})
}

func TestProcessMessages(t *testing.T) {
	svc := NewService(nil)

	original := []Message{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Name: "alice", Content: []any{
			map[string]any{"type": "text", "text": "hello"},
			map[string]any{
				"type":        "file",
				"source_type": "base64",
				"data":        b64("hi"),
				"mime_type":   "text/plain",
				"metadata":    map[string]any{"filename": "a.txt"},
			},
		}},
	}

	processed := svc.ProcessMessages(original)

	require.Len(t, processed, 2)
	assert.Equal(t, "system", processed[0].Role)
	assert.Equal(t, "be helpful", processed[0].Content)
	assert.Equal(t, "user", processed[1].Role)
	assert.Equal(t, "alice", processed[1].Name, "non-content fields carry over")
	assert.Equal(t, "hello\n\n文件内容 (a.txt):\nhi", processed[1].Content)

	// The input slice keeps its structured content.
	_, stillList := original[1].Content.([]any)
	assert.True(t, stillList)
}
