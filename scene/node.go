package scene

import "github.com/go-gl/mathgl/mgl32"

// DrawMode is a primitive's topology.
type DrawMode int

// Draw mode constants
const (
	DrawPoints DrawMode = iota
	DrawLines
	DrawLineLoop
	DrawLineStrip
	DrawTriangles
	DrawTriangleStrip
	DrawTriangleFan
)

// Standard attribute semantic names
const (
	POSITION  = "POSITION"
	NORMAL    = "NORMAL"
	TANGENT   = "TANGENT"
	TEXCOORD0 = "TEXCOORD_0"
	COLOR0    = "COLOR_0"
	JOINTS0   = "JOINTS_0"
	WEIGHTS0  = "WEIGHTS_0"
)

// Mesh is an ordered set of primitives plus optional default morph weights.
type Mesh struct {
	// Name is an optional name.
	Name string

	// Primitives are the mesh's drawable units in declaration order.
	Primitives []*Primitive

	// Weights are the default morph target weights.
	Weights []float32
}

// Primitive is one drawable geometry unit.
type Primitive struct {
	// Mode is the primitive topology. Default DrawTriangles.
	Mode DrawMode

	// Attributes maps attribute semantic names to their accessors. All
	// attribute accessors of one primitive share the same element count.
	Attributes map[string]*Accessor

	// Indices is the optional index accessor.
	Indices *Accessor

	// Material is the optional material reference.
	Material *Material

	// Targets are the primitive's morph targets in declaration order.
	Targets []*PrimitiveTarget
}

// PrimitiveTarget is one morph target's per-vertex attribute deltas.
type PrimitiveTarget struct {
	// Name is the target's name, taken from the mesh extras targetNames
	// list or falling back to the target's stringified ordinal.
	Name string

	// Attributes maps attribute semantic names to delta accessors.
	Attributes map[string]*Accessor
}

// Camera holds either perspective or orthographic projection parameters;
// exactly one of the two variants is populated.
type Camera struct {
	// Name is an optional name.
	Name string

	// Perspective holds the perspective variant, or nil.
	Perspective *PerspectiveCamera

	// Orthographic holds the orthographic variant, or nil.
	Orthographic *OrthographicCamera
}

// PerspectiveCamera holds perspective projection parameters.
type PerspectiveCamera struct {
	// AspectRatio is the field-of-view aspect ratio (0 = use viewport).
	AspectRatio float32

	// Yfov is the vertical field of view in radians.
	Yfov float32

	// Znear is the near clip distance.
	Znear float32

	// Zfar is the far clip distance (0 = infinite projection).
	Zfar float32
}

// OrthographicCamera holds orthographic projection parameters.
type OrthographicCamera struct {
	// Xmag is the horizontal magnification.
	Xmag float32

	// Ymag is the vertical magnification.
	Ymag float32

	// Znear is the near clip distance.
	Znear float32

	// Zfar is the far clip distance.
	Zfar float32
}

// Node is one scene-graph transform node. TRS is the canonical transform
// representation: nodes specified in matrix form are decomposed during
// construction and never store the matrix.
type Node struct {
	// Name is an optional name.
	Name string

	// Translation is the node's translation. Default zero.
	Translation mgl32.Vec3

	// Rotation is the node's rotation as a unit quaternion. Default identity.
	Rotation mgl32.Quat

	// Scale is the node's per-axis scale. Default [1,1,1].
	Scale mgl32.Vec3

	// Mesh is the optional mesh attachment.
	Mesh *Mesh

	// Camera is the optional camera attachment.
	Camera *Camera

	// Skin is the optional skin attachment.
	Skin *Skin

	// Children are the node's child nodes in declaration order. The node
	// graph is a forest: no node has more than one parent and no cycles.
	Children []*Node

	// Weights are the node's morph target weight overrides.
	Weights []float32
}

// Matrix composes the node's TRS fields back into a column-major transform.
//
// Returns:
//   - mgl32.Mat4: translation × rotation × scale
func (n *Node) Matrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z())
	r := n.Rotation.Mat4()
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Skin is a skeletal binding.
type Skin struct {
	// Name is an optional name.
	Name string

	// InverseBindMatrices is the optional accessor holding one inverse bind
	// matrix per joint. When present its count matches len(Joints).
	InverseBindMatrices *Accessor

	// Skeleton is the optional skeleton root node.
	Skeleton *Node

	// Joints are the skeleton joints in declaration order.
	Joints []*Node
}
