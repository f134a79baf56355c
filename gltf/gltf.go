// Package gltf contains the glTF 2.0 wire types used for JSON deserialization,
// plus the GLB binary container split. The types map directly to the glTF 2.0
// JSON schema; every cross-reference is a zero-based index into one of the
// Document's top-level arrays.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package gltf

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document represents the root of a glTF JSON document.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-gltf
type Document struct {
	// Asset contains metadata about the glTF asset.
	Asset Asset `json:"asset"`

	// Scene is the index of the default scene.
	Scene *int `json:"scene,omitempty"`

	// Scenes is an array of scenes.
	Scenes []Scene `json:"scenes,omitempty"`

	// Nodes is an array of nodes (transform hierarchy).
	Nodes []Node `json:"nodes,omitempty"`

	// Meshes is an array of meshes.
	Meshes []Mesh `json:"meshes,omitempty"`

	// Accessors define how to interpret buffer data.
	Accessors []Accessor `json:"accessors,omitempty"`

	// BufferViews define portions of buffers.
	BufferViews []BufferView `json:"bufferViews,omitempty"`

	// Buffers are raw binary data containers.
	Buffers []Buffer `json:"buffers,omitempty"`

	// Materials is an array of materials.
	Materials []Material `json:"materials,omitempty"`

	// Textures is an array of textures (sampler + image pairs).
	Textures []Texture `json:"textures,omitempty"`

	// Images is an array of images.
	Images []Image `json:"images,omitempty"`

	// Samplers define texture sampling parameters.
	Samplers []Sampler `json:"samplers,omitempty"`

	// Cameras is an array of cameras.
	Cameras []Camera `json:"cameras,omitempty"`

	// Skins is an array of skins (skeletal animation binding).
	Skins []Skin `json:"skins,omitempty"`

	// Animations is an array of animations.
	Animations []Animation `json:"animations,omitempty"`

	// ExtensionsUsed lists extensions used by this asset.
	ExtensionsUsed []string `json:"extensionsUsed,omitempty"`

	// ExtensionsRequired lists extensions required to load this asset.
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`

	// Extensions holds document-level extension payloads keyed by extension name.
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`

	// Extras holds application-specific data.
	Extras json.RawMessage `json:"extras,omitempty"`
}

// Asset contains metadata about the glTF asset.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-asset
type Asset struct {
	// Version is the glTF version (required, must be "2.0").
	Version string `json:"version"`

	// MinVersion is the minimum glTF version required.
	MinVersion string `json:"minVersion,omitempty"`

	// Generator is the tool that generated this asset.
	Generator string `json:"generator,omitempty"`

	// Copyright information.
	Copyright string `json:"copyright,omitempty"`

	// Extras holds application-specific data.
	Extras json.RawMessage `json:"extras,omitempty"`
}

// Scene is a set of root nodes.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-scene
type Scene struct {
	// Name is an optional name for this scene.
	Name string `json:"name,omitempty"`

	// Nodes are the indices of root nodes in this scene.
	Nodes []int `json:"nodes,omitempty"`
}

// Node is a node in the transform hierarchy.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-node
type Node struct {
	// Name is an optional name for this node.
	Name string `json:"name,omitempty"`

	// Children are indices of child nodes.
	Children []int `json:"children,omitempty"`

	// Mesh is the index of the mesh attached to this node.
	Mesh *int `json:"mesh,omitempty"`

	// Camera is the index of the camera attached to this node.
	Camera *int `json:"camera,omitempty"`

	// Skin is the index of the skin for this node (skeletal animation).
	Skin *int `json:"skin,omitempty"`

	// Matrix is a 4x4 transformation matrix (column-major).
	// Mutually exclusive with Translation/Rotation/Scale.
	Matrix *[16]float32 `json:"matrix,omitempty"`

	// Translation is the node's translation (x, y, z).
	Translation *[3]float32 `json:"translation,omitempty"`

	// Rotation is the node's rotation as a quaternion (x, y, z, w).
	Rotation *[4]float32 `json:"rotation,omitempty"`

	// Scale is the node's scale (x, y, z).
	Scale *[3]float32 `json:"scale,omitempty"`

	// Weights are morph target weights (for blend shapes).
	Weights []float32 `json:"weights,omitempty"`
}

// Mesh is an ordered set of primitives.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh
type Mesh struct {
	// Name is an optional name for this mesh.
	Name string `json:"name,omitempty"`

	// Primitives defines the geometry to render.
	Primitives []Primitive `json:"primitives"`

	// Weights are default morph target weights.
	Weights []float32 `json:"weights,omitempty"`

	// Extras holds application-specific data (e.g. the conventional
	// targetNames list naming morph targets).
	Extras json.RawMessage `json:"extras,omitempty"`
}

// Primitive defines one drawable geometry unit.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh-primitive
type Primitive struct {
	// Attributes is a map of attribute semantic to accessor index.
	// Standard attributes: POSITION, NORMAL, TANGENT, TEXCOORD_0, COLOR_0, JOINTS_0, WEIGHTS_0
	Attributes map[string]int `json:"attributes"`

	// Indices is the accessor index for the index buffer.
	Indices *int `json:"indices,omitempty"`

	// Material is the material index.
	Material *int `json:"material,omitempty"`

	// Mode is the primitive topology.
	// 0=POINTS, 1=LINES, 2=LINE_LOOP, 3=LINE_STRIP, 4=TRIANGLES (default), 5=TRIANGLE_STRIP, 6=TRIANGLE_FAN
	Mode *int `json:"mode,omitempty"`

	// Targets are morph targets for this primitive.
	Targets []map[string]int `json:"targets,omitempty"`

	// Extensions holds primitive-level extension payloads keyed by extension name.
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// Accessor defines how to interpret buffer data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor
type Accessor struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// BufferView is the index of the bufferView. An accessor with neither a
	// bufferView nor a sparse section is valid only under external-compression
	// extensions; its data is filled in by an extension hook.
	BufferView *int `json:"bufferView,omitempty"`

	// ByteOffset is the offset within the bufferView.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ComponentType is the data type of components.
	// 5120=BYTE, 5121=UNSIGNED_BYTE, 5122=SHORT, 5123=UNSIGNED_SHORT, 5125=UNSIGNED_INT, 5126=FLOAT
	ComponentType int `json:"componentType"`

	// Normalized indicates if integer data should be normalized.
	Normalized bool `json:"normalized,omitempty"`

	// Count is the number of elements.
	Count int `json:"count"`

	// Type is the element type (SCALAR, VEC2, VEC3, VEC4, MAT2, MAT3, MAT4).
	Type string `json:"type"`

	// Max is the maximum value of each component.
	Max []float32 `json:"max,omitempty"`

	// Min is the minimum value of each component.
	Min []float32 `json:"min,omitempty"`

	// Sparse defines sparse storage of accessor values.
	Sparse *AccessorSparse `json:"sparse,omitempty"`
}

// AccessorSparse defines sparse storage: a small set of index→value
// overrides applied on top of the accessor's base array.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor-sparse
type AccessorSparse struct {
	// Count is the number of sparse entries.
	Count int `json:"count"`

	// Indices locates the sparse index array (unsigned integer scalars).
	Indices SparseIndices `json:"indices"`

	// Values locates the sparse value array (Count elements of the accessor's type).
	Values SparseValues `json:"values"`
}

// SparseIndices locates the index array of a sparse accessor.
type SparseIndices struct {
	// BufferView is the index of the bufferView holding the indices.
	BufferView int `json:"bufferView"`

	// ByteOffset is the offset within the bufferView.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ComponentType must be an unsigned integer type (5121, 5123 or 5125).
	ComponentType int `json:"componentType"`
}

// SparseValues locates the value array of a sparse accessor.
type SparseValues struct {
	// BufferView is the index of the bufferView holding the values.
	BufferView int `json:"bufferView"`

	// ByteOffset is the offset within the bufferView.
	ByteOffset int `json:"byteOffset,omitempty"`
}

// BufferView represents a subset of a buffer. It is consumed while building
// accessors and image payloads; no standalone entity is retained for it.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-bufferview
type BufferView struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Buffer is the index of the buffer.
	Buffer int `json:"buffer"`

	// ByteOffset is the offset into the buffer.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ByteLength is the length of the bufferView.
	ByteLength int `json:"byteLength"`

	// ByteStride is the stride for interleaved data (optional).
	ByteStride *int `json:"byteStride,omitempty"`

	// Target is the intended GPU buffer type.
	// 34962=ARRAY_BUFFER, 34963=ELEMENT_ARRAY_BUFFER
	Target *int `json:"target,omitempty"`
}

// Buffer represents binary data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-buffer
type Buffer struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// URI is the URI of the buffer data (data: URI or external resource).
	// At most one buffer may omit the URI: the GLB embedded buffer.
	URI string `json:"uri,omitempty"`

	// ByteLength is the length of the buffer.
	ByteLength int `json:"byteLength"`
}

// Material defines the material appearance of a primitive.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material
type Material struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// PbrMetallicRoughness is the PBR metallic-roughness model.
	PbrMetallicRoughness *PbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`

	// NormalTexture is the normal map.
	NormalTexture *NormalTextureInfo `json:"normalTexture,omitempty"`

	// OcclusionTexture is the occlusion map.
	OcclusionTexture *OcclusionTextureInfo `json:"occlusionTexture,omitempty"`

	// EmissiveTexture is the emissive map.
	EmissiveTexture *TextureInfo `json:"emissiveTexture,omitempty"`

	// EmissiveFactor is the emissive color (RGB).
	EmissiveFactor *[3]float32 `json:"emissiveFactor,omitempty"`

	// AlphaMode is the alpha rendering mode.
	// "OPAQUE" (default), "MASK", "BLEND"
	AlphaMode string `json:"alphaMode,omitempty"`

	// AlphaCutoff is the alpha cutoff for MASK mode.
	AlphaCutoff *float32 `json:"alphaCutoff,omitempty"`

	// DoubleSided indicates if the material is double-sided.
	DoubleSided bool `json:"doubleSided,omitempty"`
}

// PbrMetallicRoughness is the metallic-roughness material model.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-pbrmetallicroughness
type PbrMetallicRoughness struct {
	// BaseColorFactor is the base color (RGBA).
	BaseColorFactor *[4]float32 `json:"baseColorFactor,omitempty"`

	// BaseColorTexture is the base color texture.
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`

	// MetallicFactor is the metalness (0.0 = dielectric, 1.0 = metal).
	MetallicFactor *float32 `json:"metallicFactor,omitempty"`

	// RoughnessFactor is the roughness (0.0 = smooth, 1.0 = rough).
	RoughnessFactor *float32 `json:"roughnessFactor,omitempty"`

	// MetallicRoughnessTexture contains metallic (B) and roughness (G) channels.
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// TextureInfo references a texture.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-textureinfo
type TextureInfo struct {
	// Index is the texture index.
	Index int `json:"index"`

	// TexCoord is the UV set to use (default 0).
	TexCoord int `json:"texCoord,omitempty"`

	// Extensions holds per-binding extension payloads (e.g. KHR_texture_transform).
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// NormalTextureInfo references a normal map.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-normaltextureinfo
type NormalTextureInfo struct {
	TextureInfo

	// Scale is the normal scale factor.
	Scale *float32 `json:"scale,omitempty"`
}

// OcclusionTextureInfo references an occlusion map.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-occlusiontextureinfo
type OcclusionTextureInfo struct {
	TextureInfo

	// Strength is the occlusion strength.
	Strength *float32 `json:"strength,omitempty"`
}

// Texture combines an image and a sampler.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-texture
type Texture struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Sampler is the sampler index.
	Sampler *int `json:"sampler,omitempty"`

	// Source is the image index.
	Source *int `json:"source,omitempty"`

	// Extensions holds texture-level extension payloads (e.g. compressed
	// image sources provided by texture extensions).
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// Image is a texture image source.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-image
type Image struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// URI is the image URI (data: URI or external resource).
	URI string `json:"uri,omitempty"`

	// MimeType is the MIME type when embedded in a bufferView.
	MimeType string `json:"mimeType,omitempty"`

	// BufferView is the index of the bufferView containing the image.
	BufferView *int `json:"bufferView,omitempty"`
}

// Sampler defines texture sampling parameters.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
type Sampler struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// MagFilter is the magnification filter.
	// 9728=NEAREST, 9729=LINEAR
	MagFilter *int `json:"magFilter,omitempty"`

	// MinFilter is the minification filter.
	// 9728=NEAREST, 9729=LINEAR, 9984-9987=mipmapped variants
	MinFilter *int `json:"minFilter,omitempty"`

	// WrapS is the U wrapping mode.
	// 33071=CLAMP_TO_EDGE, 33648=MIRRORED_REPEAT, 10497=REPEAT (default)
	WrapS *int `json:"wrapS,omitempty"`

	// WrapT is the V wrapping mode.
	WrapT *int `json:"wrapT,omitempty"`
}

// Camera holds a perspective or orthographic projection.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-camera
type Camera struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Type selects the populated variant: "perspective" or "orthographic".
	Type string `json:"type"`

	// Perspective holds the perspective projection parameters.
	Perspective *Perspective `json:"perspective,omitempty"`

	// Orthographic holds the orthographic projection parameters.
	Orthographic *Orthographic `json:"orthographic,omitempty"`
}

// Perspective holds perspective projection parameters.
type Perspective struct {
	// AspectRatio is the aspect ratio of the field of view (0 = use viewport).
	AspectRatio float32 `json:"aspectRatio,omitempty"`

	// Yfov is the vertical field of view in radians.
	Yfov float32 `json:"yfov"`

	// Zfar is the far clip distance (0 = infinite projection).
	Zfar float32 `json:"zfar,omitempty"`

	// Znear is the near clip distance.
	Znear float32 `json:"znear"`
}

// Orthographic holds orthographic projection parameters.
type Orthographic struct {
	// Xmag is the horizontal magnification.
	Xmag float32 `json:"xmag"`

	// Ymag is the vertical magnification.
	Ymag float32 `json:"ymag"`

	// Zfar is the far clip distance.
	Zfar float32 `json:"zfar"`

	// Znear is the near clip distance.
	Znear float32 `json:"znear"`
}

// Skin defines how a mesh is deformed by a skeleton.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-skin
type Skin struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// InverseBindMatrices is the accessor index for the inverse bind matrices.
	InverseBindMatrices *int `json:"inverseBindMatrices,omitempty"`

	// Skeleton is the node index of the skeleton root (optional).
	Skeleton *int `json:"skeleton,omitempty"`

	// Joints are the node indices of the skeleton joints.
	Joints []int `json:"joints"`
}

// Animation defines keyframe animation.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-animation
type Animation struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Channels connect samplers to target nodes/properties.
	Channels []AnimChannel `json:"channels"`

	// Samplers define the keyframe data.
	Samplers []AnimSampler `json:"samplers"`
}

// AnimChannel connects a sampler to a target.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-animation-channel
type AnimChannel struct {
	// Sampler is the sampler index within the animation.
	Sampler int `json:"sampler"`

	// Target specifies what to animate.
	Target AnimTarget `json:"target"`
}

// AnimTarget specifies the animated property.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-animation-channel-target
type AnimTarget struct {
	// Node is the target node index.
	Node *int `json:"node,omitempty"`

	// Path is the animated property.
	// "translation", "rotation", "scale", "weights"
	Path string `json:"path"`
}

// AnimSampler defines animation keyframe data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-animation-sampler
type AnimSampler struct {
	// Input is the accessor index for keyframe times.
	Input int `json:"input"`

	// Output is the accessor index for keyframe values.
	Output int `json:"output"`

	// Interpolation mode: "LINEAR" (default), "STEP", "CUBICSPLINE".
	Interpolation string `json:"interpolation,omitempty"`
}

// Decode decodes a glTF JSON document from r.
//
// Parameters:
//   - r: reader containing glTF JSON data
//
// Returns:
//   - *Document: the decoded document
//   - error: error if decoding fails
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	return &doc, nil
}

// Unmarshal decodes a glTF JSON document from a byte slice.
//
// Parameters:
//   - data: glTF JSON data
//
// Returns:
//   - *Document: the decoded document
//   - error: error if decoding fails
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	return &doc, nil
}
