package docparse

import "sync"

// Registry holds extractors in priority order. Lookup returns the first
// extractor that supports the file, so more specific extractors must be
// registered before more permissive ones.
type Registry struct {
	mu         sync.Mutex
	extractors []Extractor
}

// NewRegistry returns a registry preloaded with the built-in extractors in
// PDF, Word, Text order.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			NewPDFExtractor(),
			NewWordExtractor(),
			NewTextExtractor(),
		},
	}
}

// NewEmptyRegistry returns a registry with no extractors.
func NewEmptyRegistry() *Registry {
	return &Registry{}
}

// Get returns the first registered extractor that supports the given MIME
// type or filename, or nil when none matches.
func (r *Registry) Get(mimeType, filename string) Extractor {
	r.mu.Lock()
	extractors := r.extractors
	r.mu.Unlock()

	for _, e := range extractors {
		if e.Supports(mimeType, filename) {
			return e
		}
	}
	return nil
}

// Register appends an extractor to the end of the lookup order.
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, e)
}
