package reader

import (
	"fmt"

	"github.com/Carmen-Shannon/gltf-go/gltf"
	"github.com/Carmen-Shannon/gltf-go/scene"
)

// arena is one entity kind's ordered declaration-index → object list. It is
// append-only during its kind's construction phase and sealed afterwards;
// resolving against an unsealed arena fails. This write-once-per-kind
// discipline is the pipeline's only coordination mechanism.
type arena[T any] struct {
	items  []*T
	sealed bool
}

// add appends an object to the arena. Valid only before seal.
func (a *arena[T]) add(item *T) {
	a.items = append(a.items, item)
}

// seal marks the arena's construction phase complete, opening it for resolution.
func (a *arena[T]) seal() {
	a.sealed = true
}

// resolve translates a declaration index into its constructed object.
func (a *arena[T]) resolve(i int) (*T, error) {
	if !a.sealed {
		return nil, fmt.Errorf("%w: kind not yet constructed (index %d)", ErrDanglingReference, i)
	}
	if i < 0 || i >= len(a.items) {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrDanglingReference, i, len(a.items))
	}
	return a.items[i], nil
}

// readContext is the concrete index resolution context backing one read. It
// holds one arena per entity kind plus the registries for extension-provided
// objects.
type readContext struct {
	src *gltf.Document
	doc *scene.Document

	buffers    arena[scene.Buffer]
	accessors  arena[scene.Accessor]
	textures   arena[scene.Texture]
	materials  arena[scene.Material]
	meshes     arena[scene.Mesh]
	cameras    arena[scene.Camera]
	nodes      arena[scene.Node]
	skins      arena[scene.Skin]
	animations arena[scene.Animation]
	scenes     arena[scene.Scene]

	providedTextures   map[int]*scene.Texture
	providedPrimitives map[[2]int]*scene.Primitive
}

var _ scene.Context = &readContext{}

// newReadContext creates the resolution context for one read of src.
func newReadContext(src *gltf.Document) *readContext {
	return &readContext{
		src:                src,
		doc:                &scene.Document{},
		providedTextures:   make(map[int]*scene.Texture),
		providedPrimitives: make(map[[2]int]*scene.Primitive),
	}
}

func (c *readContext) Source() *gltf.Document {
	return c.src
}

func (c *readContext) Document() *scene.Document {
	return c.doc
}

func (c *readContext) Buffer(i int) (*scene.Buffer, error) {
	return c.buffers.resolve(i)
}

func (c *readContext) Accessor(i int) (*scene.Accessor, error) {
	return c.accessors.resolve(i)
}

func (c *readContext) Texture(i int) (*scene.Texture, error) {
	return c.textures.resolve(i)
}

func (c *readContext) Material(i int) (*scene.Material, error) {
	return c.materials.resolve(i)
}

func (c *readContext) Mesh(i int) (*scene.Mesh, error) {
	return c.meshes.resolve(i)
}

func (c *readContext) Camera(i int) (*scene.Camera, error) {
	return c.cameras.resolve(i)
}

func (c *readContext) Node(i int) (*scene.Node, error) {
	return c.nodes.resolve(i)
}

func (c *readContext) Skin(i int) (*scene.Skin, error) {
	return c.skins.resolve(i)
}

func (c *readContext) Animation(i int) (*scene.Animation, error) {
	return c.animations.resolve(i)
}

func (c *readContext) Scene(i int) (*scene.Scene, error) {
	return c.scenes.resolve(i)
}

func (c *readContext) ProvideTexture(index int, t *scene.Texture) {
	c.providedTextures[index] = t
}

func (c *readContext) ProvidePrimitive(meshIndex, primIndex int, p *scene.Primitive) {
	c.providedPrimitives[[2]int{meshIndex, primIndex}] = p
}
