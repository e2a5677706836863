package docparse

import "strings"

// Message is a chat message whose content is either a plain string or a
// list of content parts (strings and part maps).
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
	Name    string `json:"name,omitempty"`
}

// fileContentLabel prefixes extracted file text when it is inlined into a
// message. The label matches what the community frontend renders.
const fileContentLabel = "文件内容"

// ProcessMessageContent flattens message content into a single string.
// String content passes through untouched. For part lists, text parts are
// appended verbatim and base64 file parts are replaced with their extracted
// text under a labeled header; anything else is dropped. The result is
// trimmed of surrounding whitespace.
func (s *Service) ProcessMessageContent(content any) string {
	switch c := content.(type) {
	case string:
		return c
	case []any:
		var b strings.Builder
		for _, item := range c {
			switch part := item.(type) {
			case string:
				b.WriteString(part)
			case map[string]any:
				s.appendPart(&b, part)
			}
		}
		return strings.TrimSpace(b.String())
	default:
		return ""
	}
}

func (s *Service) appendPart(b *strings.Builder, part map[string]any) {
	switch stringField(part, "type") {
	case "text":
		b.WriteString(stringField(part, "text"))
	case "file":
		if stringField(part, "source_type") != "base64" {
			return
		}
		data := stringField(part, "data")
		mimeType := stringField(part, "mime_type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		filename := "unknown_file"
		if meta, ok := part["metadata"].(map[string]any); ok {
			if name := stringField(meta, "filename"); name != "" {
				filename = name
			}
		}
		text := s.ExtractFileContent(data, filename, mimeType)
		b.WriteString("\n\n" + fileContentLabel + " (" + filename + "):\n" + text)
	}
}

// ProcessMessages returns a new slice in which every message's content has
// been flattened by ProcessMessageContent. Other message fields carry over
// unchanged and the input slice is not modified.
func (s *Service) ProcessMessages(messages []Message) []Message {
	processed := make([]Message, len(messages))
	for i, msg := range messages {
		out := msg
		out.Content = s.ProcessMessageContent(msg.Content)
		processed[i] = out
	}
	return processed
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
