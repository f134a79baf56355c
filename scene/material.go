package scene

import "github.com/go-gl/mathgl/mgl32"

// AlphaMode is a material's alpha rendering mode.
type AlphaMode string

// Alpha mode constants
const (
	AlphaOpaque AlphaMode = "OPAQUE"
	AlphaMask   AlphaMode = "MASK"
	AlphaBlend  AlphaMode = "BLEND"
)

// Sampler holds texture sampling parameters for one texture binding, with
// glTF defaults (linear filtering, repeat wrapping) applied.
type Sampler struct {
	// MagFilter is the magnification filter (9728=NEAREST, 9729=LINEAR).
	MagFilter int

	// MinFilter is the minification filter (9728/9729 plus 9984-9987
	// mipmapped variants).
	MinFilter int

	// WrapS is the U wrapping mode (33071, 33648 or 10497).
	WrapS int

	// WrapT is the V wrapping mode.
	WrapT int
}

// Sampler filter constants
const (
	FilterNearest              = 9728
	FilterLinear               = 9729
	FilterNearestMipmapNearest = 9984
	FilterLinearMipmapNearest  = 9985
	FilterNearestMipmapLinear  = 9986
	FilterLinearMipmapLinear   = 9987
)

// Sampler wrap constants
const (
	WrapClampToEdge    = 33071
	WrapMirroredRepeat = 33648
	WrapRepeat         = 10497
)

// DefaultSampler returns a sampler with the glTF spec defaults.
//
// Returns:
//   - Sampler: linear filtering, repeat wrapping
func DefaultSampler() Sampler {
	return Sampler{
		MagFilter: FilterLinear,
		MinFilter: FilterLinear,
		WrapS:     WrapRepeat,
		WrapT:     WrapRepeat,
	}
}

// UVTransform is the per-binding KHR_texture_transform metadata: an affine
// transform applied to the binding's UV coordinates.
type UVTransform struct {
	// Offset translates the UV coordinates.
	Offset mgl32.Vec2

	// Scale scales the UV coordinates.
	Scale mgl32.Vec2

	// Rotation rotates the UV coordinates around the origin, in radians.
	Rotation float32

	// TexCoord overrides the binding's UV set when non-nil.
	TexCoord *int
}

// TextureBinding attaches one Texture to a material slot along with its
// sampling parameters, UV set, and optional UV transform.
type TextureBinding struct {
	// Texture is the bound image resource.
	Texture *Texture

	// Sampler holds the binding's sampling parameters.
	Sampler Sampler

	// TexCoord selects the UV attribute set (TEXCOORD_<n>).
	TexCoord int

	// Scale is the normal-map scale or occlusion strength for the bindings
	// that carry one; 1 otherwise.
	Scale float32

	// Transform is the optional UV transform metadata.
	Transform *UVTransform
}

// Material holds surface shading parameters in the metallic-roughness model.
type Material struct {
	// Name is an optional name.
	Name string

	// BaseColorFactor is the base color (RGBA). Default [1,1,1,1].
	BaseColorFactor mgl32.Vec4

	// EmissiveFactor is the emissive color (RGB). Default [0,0,0].
	EmissiveFactor mgl32.Vec3

	// MetallicFactor is the metalness. Default 1.
	MetallicFactor float32

	// RoughnessFactor is the roughness. Default 1.
	RoughnessFactor float32

	// AlphaMode is the alpha rendering mode. Default AlphaOpaque.
	AlphaMode AlphaMode

	// AlphaCutoff is the alpha cutoff for AlphaMask mode. Default 0.5.
	AlphaCutoff float32

	// DoubleSided indicates a double-sided surface.
	DoubleSided bool

	// BaseColor is the optional base color texture binding.
	BaseColor *TextureBinding

	// MetallicRoughness is the optional metallic-roughness texture binding.
	MetallicRoughness *TextureBinding

	// Normal is the optional normal map binding; its Scale field holds the
	// normal scale factor.
	Normal *TextureBinding

	// Occlusion is the optional occlusion map binding; its Scale field holds
	// the occlusion strength.
	Occlusion *TextureBinding

	// Emissive is the optional emissive texture binding.
	Emissive *TextureBinding
}
