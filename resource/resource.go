// Package resource gathers the external byte payloads a glTF document
// references: buffer and image URIs resolved against a base directory, data
// URIs decoded inline, and the GLB-embedded binary chunk. The reader consumes
// the result as a plain URI→bytes map and performs no I/O itself.
package resource

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/gltf-go/gltf"
)

// GLBBufferKey is the reserved map key for the GLB-embedded binary chunk.
// The embedded buffer declares no URI, so it cannot collide with real keys.
const GLBBufferKey = "@glb"

// Map holds resolved byte payloads keyed by the URI the document declared,
// plus GLBBufferKey for the embedded chunk when present.
type Map map[string][]byte

// Resolver fetches every external payload a document references.
type Resolver interface {
	// Resolve collects the payloads for all buffer and image URIs of doc.
	//
	// Parameters:
	//   - doc: the raw glTF document whose URIs to resolve
	//
	// Returns:
	//   - Map: URI→payload for every resolved reference
	//   - error: error if any referenced payload cannot be fetched
	Resolve(doc *gltf.Document) (Map, error)
}

type fileResolver struct {
	baseDir     string
	workers     int
	binaryChunk []byte
}

var _ Resolver = &fileResolver{}

// ResolverBuilderOption mutates a file resolver during construction.
type ResolverBuilderOption func(*fileResolver)

// WithBinaryChunk seeds the resolver with a GLB binary chunk, stored under
// GLBBufferKey.
func WithBinaryChunk(chunk []byte) ResolverBuilderOption {
	return func(r *fileResolver) {
		r.binaryChunk = chunk
	}
}

// WithWorkerCount caps the number of concurrent file reads.
func WithWorkerCount(n int) ResolverBuilderOption {
	return func(r *fileResolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewFileResolver creates a Resolver that loads URI payloads from the
// filesystem relative to baseDir. Data URIs are decoded inline; file reads
// are dispatched to a worker pool.
//
// Parameters:
//   - baseDir: directory document-relative URIs resolve against
//   - options: optional resolver configuration
//
// Returns:
//   - Resolver: the configured resolver
func NewFileResolver(baseDir string, options ...ResolverBuilderOption) Resolver {
	r := &fileResolver{
		baseDir: baseDir,
		workers: 4,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *fileResolver) Resolve(doc *gltf.Document) (Map, error) {
	uris := collectURIs(doc)

	out := make(Map, len(uris)+1)
	if r.binaryChunk != nil {
		out[GLBBufferKey] = r.binaryChunk
	}

	// Data URIs decode inline; only real files go through the pool.
	var files []string
	for _, uri := range uris {
		if IsDataURI(uri) {
			data, err := DecodeDataURI(uri)
			if err != nil {
				return nil, fmt.Errorf("failed to decode data URI: %w", err)
			}
			out[uri] = data
			continue
		}
		files = append(files, uri)
	}

	if len(files) == 0 {
		return out, nil
	}

	pool := worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)

	// A WaitGroup provides the barrier; pool.Wait() blocks until workers
	// idle-exit which is unsuitable here.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, uri := range files {
		wg.Add(1)
		uriCap := uri
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()

				data, err := r.readFile(uriCap)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return nil, err
				}
				out[uriCap] = data
				return nil, nil
			},
		})
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// readFile loads one document-relative URI from disk. URIs are
// percent-encoded per the glTF spec, so the path is unescaped first.
func (r *fileResolver) readFile(uri string) ([]byte, error) {
	rel, err := url.PathUnescape(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URI %q: %w", uri, err)
	}

	data, err := os.ReadFile(filepath.Join(r.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("failed to read resource %q: %w", uri, err)
	}
	return data, nil
}

// collectURIs gathers the distinct buffer and image URIs of doc in
// declaration order.
func collectURIs(doc *gltf.Document) []string {
	seen := make(map[string]struct{})
	var uris []string

	add := func(uri string) {
		if uri == "" {
			return
		}
		if _, ok := seen[uri]; ok {
			return
		}
		seen[uri] = struct{}{}
		uris = append(uris, uri)
	}

	for _, b := range doc.Buffers {
		add(b.URI)
	}
	for _, img := range doc.Images {
		add(img.URI)
	}
	return uris
}

// IsDataURI reports whether uri is an inline data: URI.
func IsDataURI(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}

// DecodeDataURI decodes an inline data: URI payload. Both base64 and
// percent-encoded plain payloads are supported.
//
// Parameters:
//   - uri: the full data: URI
//
// Returns:
//   - []byte: the decoded payload
//   - error: error if the URI is malformed
func DecodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI: %q", uri)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URI missing payload separator")
	}

	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI base64 payload: %w", err)
		}
		return data, nil
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI plain payload: %w", err)
	}
	return []byte(decoded), nil
}
