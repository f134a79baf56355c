package loader

import (
	"github.com/Carmen-Shannon/gltf-go/reader"
	"github.com/Carmen-Shannon/gltf-go/scene"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithReader is an option builder that sets the Reader used by the Loader.
// Use this to register extensions or a logger on the underlying reader.
//
// Parameters:
//   - r: the reader instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the reader option to a loader
func WithReader(r reader.Reader) LoaderBuilderOption {
	return func(l *loader) {
		if r != nil {
			l.reader = r
		}
	}
}

// WithDocument is an option builder that pre-populates the document cache.
//
// Parameters:
//   - key: the cache key for the document
//   - doc: the document to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the document option to a loader
func WithDocument(key string, doc *scene.Document) LoaderBuilderOption {
	return func(l *loader) {
		l.documentCache[key] = doc
	}
}
