// Package loader is the high-level entry point: it reads .gltf/.glb files
// from disk or streams, resolves their external resources, runs the reader,
// and caches the resulting documents by name.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/gltf-go/gltf"
	"github.com/Carmen-Shannon/gltf-go/reader"
	"github.com/Carmen-Shannon/gltf-go/resource"
	"github.com/Carmen-Shannon/gltf-go/scene"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	reader reader.Reader

	documentCache map[string]*scene.Document
}

// Loader defines the public-facing interface for loading and caching glTF
// documents. It handles both the JSON (.gltf) and binary container (.glb)
// forms and manages a cache of previously loaded documents.
type Loader interface {
	// Load imports a glTF or GLB file and caches the result.
	// If the document is already cached (by file path), the cached version is
	// returned. External resources resolve relative to the file's directory.
	//
	// Parameters:
	//   - path: the file path to the .gltf or .glb file
	//
	// Returns:
	//   - *scene.Document: the loaded and cached document
	//   - error: error if loading fails
	Load(path string) (*scene.Document, error)

	// LoadReader imports a document from a reader stream and caches it by the
	// given name. External resources resolve relative to the current working
	// directory.
	//
	// Parameters:
	//   - name: the cache key for the loaded document
	//   - r: the reader providing glTF JSON or GLB binary data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *scene.Document: the loaded document
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*scene.Document, error)

	// Get retrieves a cached document by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *scene.Document: the cached document or nil
	Get(name string) *scene.Document

	// Documents returns the full document cache.
	//
	// Returns:
	//   - map[string]*scene.Document: all cached documents keyed by name
	Documents() map[string]*scene.Document
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:            sync.RWMutex{},
		reader:        reader.NewReader(),
		documentCache: make(map[string]*scene.Document),
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (*scene.Document, error) {
	l.mu.RLock()
	if cached, ok := l.documentCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
	default:
		return nil, fmt.Errorf("unsupported document format: %s", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := l.parse(data, gltf.IsGLB(data), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.mu.Lock()
	l.documentCache[path] = doc
	l.mu.Unlock()

	return doc, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*scene.Document, error) {
	l.mu.RLock()
	if cached, ok := l.documentCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader %q: %w", name, err)
	}

	doc, err := l.parse(data, isGLB, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.mu.Lock()
	l.documentCache[name] = doc
	l.mu.Unlock()

	return doc, nil
}

func (l *loader) Get(name string) *scene.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.documentCache[name]
}

func (l *loader) Documents() map[string]*scene.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*scene.Document, len(l.documentCache))
	for k, v := range l.documentCache {
		result[k] = v
	}
	return result
}

// parse splits the GLB container when needed, decodes the JSON document,
// resolves its external resources against baseDir, and runs the reader.
func (l *loader) parse(data []byte, isGLB bool, baseDir string) (*scene.Document, error) {
	jsonChunk := data
	var resolverOptions []resource.ResolverBuilderOption

	if isGLB {
		j, bin, err := gltf.SplitGLB(data)
		if err != nil {
			return nil, err
		}
		jsonChunk = j
		if bin != nil {
			resolverOptions = append(resolverOptions, resource.WithBinaryChunk(bin))
		}
	}

	doc, err := gltf.Unmarshal(jsonChunk)
	if err != nil {
		return nil, err
	}

	resources, err := resource.NewFileResolver(baseDir, resolverOptions...).Resolve(doc)
	if err != nil {
		return nil, err
	}

	return l.reader.Read(doc, resources)
}
