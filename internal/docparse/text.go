package docparse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// TextDecoder attempts to decode raw bytes into a string and reports an
// error when the bytes are not valid for its encoding.
type TextDecoder func(data []byte) (string, error)

// DefaultTextDecoders is the decode chain used by NewTextExtractor:
// UTF-8 first, then GBK, then Latin-1. Latin-1 accepts any byte sequence,
// so the chain only fails outright when a custom chain is supplied.
func DefaultTextDecoders() []TextDecoder {
	return []TextDecoder{decodeUTF8, decodeGBK, decodeLatin1}
}

// TextExtractor decodes plain-text files, trying each decoder in order and
// keeping the first successful result.
type TextExtractor struct {
	decoders []TextDecoder
}

// NewTextExtractor returns a text extractor with the default decode chain.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{decoders: DefaultTextDecoders()}
}

// NewTextExtractorWithDecoders returns a text extractor using the given
// decode chain.
func NewTextExtractorWithDecoders(decoders []TextDecoder) *TextExtractor {
	return &TextExtractor{decoders: decoders}
}

var textSuffixes = []string{".txt", ".md", ".csv", ".json", ".xml", ".html", ".htm"}

func (e *TextExtractor) Supports(mimeType, filename string) bool {
	if strings.HasPrefix(strings.ToLower(mimeType), "text/") {
		return true
	}
	lower := strings.ToLower(filename)
	for _, suffix := range textSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func (e *TextExtractor) Parse(data []byte, filename string) string {
	for _, decode := range e.decoders {
		text, err := decode(data)
		if err == nil {
			return strings.TrimSpace(text)
		}
	}
	return fmt.Sprintf("[cannot decode text file %s]", filename)
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("invalid utf-8")
	}
	return string(data), nil
}

// decodeGBK decodes GBK bytes. The transformer substitutes U+FFFD for
// invalid sequences instead of failing, so substitution counts as failure
// here to keep the chain strict.
func decodeGBK(data []byte) (string, error) {
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode gbk: %w", err)
	}
	if strings.ContainsRune(string(decoded), utf8.RuneError) {
		return "", fmt.Errorf("invalid gbk sequence")
	}
	return string(decoded), nil
}

func decodeLatin1(data []byte) (string, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}
	return string(decoded), nil
}
