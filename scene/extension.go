package scene

import "github.com/Carmen-Shannon/gltf-go/gltf"

// ProvideKind identifies an entity kind an extension can synthesize ahead of
// core construction.
type ProvideKind int

// Provide kind constants
const (
	// ProvideTextures covers extensions that layer compressed image formats
	// on top of core image data.
	ProvideTextures ProvideKind = iota

	// ProvidePrimitives covers extensions that replace raw attribute
	// accessors, e.g. mesh compression.
	ProvidePrimitives
)

// Context is the read-side index resolution context the pipeline hands to
// extension hooks. It resolves document declaration indices into constructed
// graph objects for every kind whose construction phase has completed, and
// accepts provided objects ahead of the corresponding core phase.
//
// Resolving an index whose kind has not been constructed yet, or an index
// beyond the kind's list bounds, fails with the reader's dangling-reference
// error.
type Context interface {
	// Source returns the raw glTF document being read.
	Source() *gltf.Document

	// Document returns the scene Document under construction.
	Document() *Document

	// Buffer resolves a document buffer index.
	Buffer(i int) (*Buffer, error)

	// Accessor resolves a document accessor index.
	Accessor(i int) (*Accessor, error)

	// Texture resolves a document texture index. Document textures sharing
	// an image resolve to the same Texture.
	Texture(i int) (*Texture, error)

	// Material resolves a document material index.
	Material(i int) (*Material, error)

	// Mesh resolves a document mesh index.
	Mesh(i int) (*Mesh, error)

	// Camera resolves a document camera index.
	Camera(i int) (*Camera, error)

	// Node resolves a document node index.
	Node(i int) (*Node, error)

	// Skin resolves a document skin index.
	Skin(i int) (*Skin, error)

	// Animation resolves a document animation index.
	Animation(i int) (*Animation, error)

	// Scene resolves a document scene index.
	Scene(i int) (*Scene, error)

	// ProvideTexture registers a synthesized Texture for a document texture
	// index ahead of the core texture phase. The core phase keeps provided
	// textures instead of constructing them from image data.
	ProvideTexture(index int, t *Texture)

	// ProvidePrimitive registers a synthesized Primitive for a document
	// (mesh, primitive) index pair ahead of the core mesh phase.
	ProvidePrimitive(meshIndex, primIndex int, p *Primitive)
}

// Extension is a named capability that plugs into the construction pipeline.
// Implementations declare the external dependencies they need injected, the
// entity kinds they can synthesize ahead of core construction, and a generic
// read hook invoked once after the full graph exists.
type Extension interface {
	// Name returns the extension's stable string id, matching the names
	// documents list in extensionsUsed/extensionsRequired.
	Name() string

	// Dependencies returns the names of external services the extension
	// needs injected before use. Empty for self-contained extensions.
	Dependencies() []string

	// Attach injects the extension's declared dependencies, keyed by name.
	// Called once before any hook runs.
	//
	// Parameters:
	//   - deps: name→implementation mapping covering Dependencies()
	//
	// Returns:
	//   - error: error if a dependency is unusable
	Attach(deps map[string]any) error

	// Provides reports whether the extension can synthesize objects of the
	// given kind ahead of core construction.
	Provides(kind ProvideKind) bool

	// Provide synthesizes objects of the given kind, registering them on the
	// context. Invoked only for kinds Provides reports true for.
	//
	// Parameters:
	//   - kind: the entity kind to synthesize
	//   - ctx: the resolution context, open for Provide* registration
	//
	// Returns:
	//   - error: error to abort the read
	Provide(kind ProvideKind, ctx Context) error

	// Read is the generic post-construction hook, invoked once after the
	// full graph is resolved, for cross-cutting augmentation.
	//
	// Parameters:
	//   - ctx: the resolution context with every kind resolved
	//
	// Returns:
	//   - error: error to abort the read
	Read(ctx Context) error
}
