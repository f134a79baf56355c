// Package scene defines the in-memory, mutable scene graph materialized from
// a glTF 2.0 document. Every entity is owned by its Document; cross-references
// between entities are plain non-owning pointers, resolved once during
// construction. Downstream tools are free to inspect and mutate the graph
// after a successful read.
package scene

import (
	"encoding/json"

	"github.com/Carmen-Shannon/gltf-go/codec"
)

// Document is the root container owning every constructed graph object.
type Document struct {
	// Asset is the document's metadata block.
	Asset Asset

	// Extensions are the attached extension implementations that were both
	// declared used by the document and registered with the reader.
	Extensions []Extension

	// RequiredExtensions names the attached extensions the document marked
	// as required.
	RequiredExtensions []string

	// Buffers are the document's byte blobs in declaration order.
	Buffers []*Buffer

	// Accessors are the typed buffer views in declaration order.
	Accessors []*Accessor

	// Textures are the unique image resources of the document. Multiple
	// document textures (sampler+image pairs) that share an image share one
	// Texture here.
	Textures []*Texture

	// Materials in declaration order.
	Materials []*Material

	// Meshes in declaration order.
	Meshes []*Mesh

	// Cameras in declaration order.
	Cameras []*Camera

	// Nodes in declaration order.
	Nodes []*Node

	// Skins in declaration order.
	Skins []*Skin

	// Animations in declaration order.
	Animations []*Animation

	// Scenes in declaration order.
	Scenes []*Scene

	// Scene is the default scene, or nil when the document declares none.
	Scene *Scene
}

// Extension returns the attached extension with the given name, or nil.
//
// Parameters:
//   - name: the extension's stable string id
//
// Returns:
//   - Extension: the attached implementation or nil
func (d *Document) Extension(name string) Extension {
	for _, ext := range d.Extensions {
		if ext.Name() == name {
			return ext
		}
	}
	return nil
}

// Asset is the document metadata block.
type Asset struct {
	// Version is the asset's declared glTF version.
	Version string

	// MinVersion is the minimum glTF version required, if declared.
	MinVersion string

	// Generator names the tool that produced the asset.
	Generator string

	// Copyright holds the asset's copyright notice.
	Copyright string

	// Extras carries the raw application-specific payload, if any.
	Extras json.RawMessage
}

// Buffer is a contiguous byte blob, either external (URI) or embedded
// (the single GLB binary chunk).
type Buffer struct {
	// Name is an optional name.
	Name string

	// URI is the buffer's source URI. Empty for the embedded GLB buffer.
	URI string

	// Data is the buffer's byte payload.
	Data []byte
}

// Accessor is a typed, possibly sparse view over buffer bytes, decoded into
// a native numeric array during construction.
type Accessor struct {
	// Name is an optional name.
	Name string

	// Element is the arity class of each element.
	Element codec.ElementType

	// Component is the scalar storage type of each component.
	Component codec.ComponentType

	// Count is the number of elements.
	Count int

	// Normalized indicates integer data that shading languages remap to
	// [0,1] or [-1,1]. Only valid for integer component types.
	Normalized bool

	// Values is the decoded flat numeric array of Count × arity scalars:
	// one of []int8, []uint8, []int16, []uint16, []uint32 or []float32.
	// Nil for accessors whose data an extension supplies later.
	Values any
}

// Arity returns the number of components per element.
func (a *Accessor) Arity() int {
	return a.Element.Arity()
}

// Floats returns the accessor's values widened to float32. Integer values
// are converted by plain numeric cast; the Normalized flag is not applied.
//
// Returns:
//   - []float32: the flat value array, or nil when no data is decoded
func (a *Accessor) Floats() []float32 {
	switch v := a.Values.(type) {
	case nil:
		return nil
	case []float32:
		return v
	case []int8:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out
	case []uint8:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out
	case []int16:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out
	case []uint16:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out
	case []uint32:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out
	default:
		return nil
	}
}

// UInts returns the accessor's values widened to uint32. Intended for index
// accessors, which are always unsigned integer scalars.
//
// Returns:
//   - []uint32: the flat value array, or nil for float or missing data
func (a *Accessor) UInts() []uint32 {
	switch v := a.Values.(type) {
	case []uint32:
		return v
	case []uint8:
		out := make([]uint32, len(v))
		for i, x := range v {
			out[i] = uint32(x)
		}
		return out
	case []uint16:
		out := make([]uint32, len(v))
		for i, x := range v {
			out[i] = uint32(x)
		}
		return out
	default:
		return nil
	}
}

// Texture is one decoded image resource: the encoded image bytes plus their
// MIME type. Pixels are passed through opaquely; decoding is out of scope.
type Texture struct {
	// Name is an optional name.
	Name string

	// MIMEType is the image payload's MIME type, either declared explicitly
	// or inferred from the URI extension / magic bytes.
	MIMEType string

	// URI is the image's source URI when it came from an external resource.
	URI string

	// Data is the raw encoded image payload.
	Data []byte
}

// Scene is a named root set of nodes.
type Scene struct {
	// Name is an optional name.
	Name string

	// Nodes are the scene's root nodes in declaration order.
	Nodes []*Node
}
