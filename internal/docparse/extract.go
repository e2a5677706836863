package docparse

import (
	"encoding/base64"
	"fmt"
)

// Service resolves extractors through an injected registry. Constructing a
// Service per component keeps registries independent; the package-level
// helpers share one default registry for callers that do not care.
type Service struct {
	registry *Registry
	observe  func(extractor, outcome string)
}

// NewService returns a Service backed by the given registry. A nil registry
// gets the built-in default set.
func NewService(registry *Registry) *Service {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{registry: registry}
}

// WithObserver registers a callback invoked once per extraction attempt
// with the extractor kind and the dispatch outcome ("dispatched",
// "unsupported", or "decode_error").
func (s *Service) WithObserver(observe func(extractor, outcome string)) *Service {
	s.observe = observe
	return s
}

// ExtractFileContent decodes a base64 payload and extracts its text. It
// never fails: decode errors, unsupported types, and extractor problems all
// come back as bracketed diagnostics.
func (s *Service) ExtractFileContent(base64Data, filename, mimeType string) string {
	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		s.record("none", "decode_error")
		return fmt.Sprintf("[error processing file %s: %v]", filename, err)
	}

	extractor := s.registry.Get(mimeType, filename)
	if extractor == nil {
		s.record("none", "unsupported")
		return fmt.Sprintf("[unsupported file type: %s for %s]", mimeType, filename)
	}

	s.record(extractorKind(extractor), "dispatched")
	return extractor.Parse(data, filename)
}

func (s *Service) record(extractor, outcome string) {
	if s.observe != nil {
		s.observe(extractor, outcome)
	}
}

func extractorKind(e Extractor) string {
	switch e.(type) {
	case *PDFExtractor:
		return "pdf"
	case *WordExtractor:
		return "word"
	case *TextExtractor:
		return "text"
	default:
		return "custom"
	}
}

// Register adds an extractor to the end of this service's lookup order.
func (s *Service) Register(e Extractor) {
	s.registry.Register(e)
}

var defaultService = NewService(nil)

// ExtractFileContent extracts text from a base64 payload using the default
// registry.
func ExtractFileContent(base64Data, filename, mimeType string) string {
	return defaultService.ExtractFileContent(base64Data, filename, mimeType)
}

// Register adds an extractor to the default registry.
func Register(e Extractor) {
	defaultService.Register(e)
}
