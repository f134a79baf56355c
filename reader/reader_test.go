package reader

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Carmen-Shannon/gltf-go/codec"
	"github.com/Carmen-Shannon/gltf-go/gltf"
	"github.com/Carmen-Shannon/gltf-go/resource"
	"github.com/Carmen-Shannon/gltf-go/scene"
)

func ptr[T any](v T) *T {
	return &v
}

func f32Bytes(values ...float32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func u16Bytes(values ...uint16) []byte {
	out := make([]byte, 0, len(values)*2)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

// minimalDoc builds a single-triangle document: one buffer holding VEC3 float
// positions plus uint16 indices, one mesh, one node, one scene.
func minimalDoc() (*gltf.Document, resource.Map) {
	payload := append(f32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0), u16Bytes(0, 1, 2)...)

	doc := &gltf.Document{
		Asset: gltf.Asset{Version: "2.0"},
		Buffers: []gltf.Buffer{
			{URI: "geom.bin", ByteLength: len(payload)},
		},
		BufferViews: []gltf.BufferView{
			{Buffer: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
		Accessors: []gltf.Accessor{
			{BufferView: ptr(0), ComponentType: int(codec.ComponentFloat), Count: 3, Type: "VEC3"},
			{BufferView: ptr(1), ComponentType: int(codec.ComponentUnsignedShort), Count: 3, Type: "SCALAR"},
		},
		Meshes: []gltf.Mesh{{
			Primitives: []gltf.Primitive{{
				Attributes: map[string]int{"POSITION": 0},
				Indices:    ptr(1),
			}},
		}},
		Nodes:  []gltf.Node{{Name: "root", Mesh: ptr(0)}},
		Scenes: []gltf.Scene{{Name: "main", Nodes: []int{0}}},
		Scene:  ptr(0),
	}
	return doc, resource.Map{"geom.bin": payload}
}

func TestReadMinimalScene(t *testing.T) {
	src, resources := minimalDoc()

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	require.Len(t, doc.Scenes, 1)
	require.NotNil(t, doc.Scene)
	assert.Same(t, doc.Scenes[0], doc.Scene)
	assert.Equal(t, "main", doc.Scene.Name)

	require.Len(t, doc.Scene.Nodes, 1)
	node := doc.Scene.Nodes[0]
	assert.Same(t, doc.Nodes[0], node)
	assert.Equal(t, "root", node.Name)
	assert.Equal(t, mgl32.QuatIdent(), node.Rotation)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, node.Scale)

	require.NotNil(t, node.Mesh)
	assert.Same(t, doc.Meshes[0], node.Mesh)
	require.Len(t, node.Mesh.Primitives, 1)

	prim := node.Mesh.Primitives[0]
	assert.Equal(t, scene.DrawTriangles, prim.Mode)
	pos := prim.Attributes[scene.POSITION]
	require.NotNil(t, pos)
	assert.Equal(t, 3, pos.Count)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, pos.Floats())

	require.NotNil(t, prim.Indices)
	assert.Equal(t, []uint32{0, 1, 2}, prim.Indices.UInts())
}

func TestReadVersionGate(t *testing.T) {
	for _, version := range []string{"1.0", "3.0", "2.1", "", "garbage"} {
		src, resources := minimalDoc()
		src.Asset.Version = version

		_, err := NewReader().Read(src, resources)
		assert.ErrorIs(t, err, ErrUnsupportedVersion, "version %q", version)
	}

	// Patch-level differences are accepted.
	src, resources := minimalDoc()
	src.Asset.Version = "2.0.1"
	_, err := NewReader().Read(src, resources)
	assert.NoError(t, err)
}

func TestReadMinVersionGate(t *testing.T) {
	src, resources := minimalDoc()
	src.Asset.MinVersion = "2.1"

	_, err := NewReader().Read(src, resources)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestReadMissingRequiredExtension(t *testing.T) {
	src, resources := minimalDoc()
	src.ExtensionsUsed = []string{"VENDOR_unknown"}
	src.ExtensionsRequired = []string{"VENDOR_unknown"}

	_, err := NewReader().Read(src, resources)
	assert.ErrorIs(t, err, ErrMissingRequiredExtension)
}

func TestReadOptionalExtensionWarns(t *testing.T) {
	src, resources := minimalDoc()
	src.ExtensionsUsed = []string{"VENDOR_optional"}

	core, logs := observer.New(zap.WarnLevel)
	doc, err := NewReader(WithLogger(zap.New(core))).Read(src, resources)
	require.NoError(t, err)
	assert.NotNil(t, doc)

	entries := logs.FilterField(zap.String("extension", "VENDOR_optional")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

// stubExtension is a scripted Extension implementation for pipeline tests.
type stubExtension struct {
	name    string
	deps    []string
	texture *scene.Texture
	prim    *scene.Primitive

	attachedDeps map[string]any
	readCalled   bool
}

var _ scene.Extension = &stubExtension{}

func (s *stubExtension) Name() string {
	return s.name
}

func (s *stubExtension) Dependencies() []string {
	return s.deps
}

func (s *stubExtension) Attach(deps map[string]any) error {
	s.attachedDeps = deps
	return nil
}

func (s *stubExtension) Provides(kind scene.ProvideKind) bool {
	switch kind {
	case scene.ProvideTextures:
		return s.texture != nil
	case scene.ProvidePrimitives:
		return s.prim != nil
	default:
		return false
	}
}

func (s *stubExtension) Provide(kind scene.ProvideKind, ctx scene.Context) error {
	switch kind {
	case scene.ProvideTextures:
		ctx.ProvideTexture(0, s.texture)
	case scene.ProvidePrimitives:
		ctx.ProvidePrimitive(0, 0, s.prim)
	}
	return nil
}

func (s *stubExtension) Read(ctx scene.Context) error {
	s.readCalled = true
	return nil
}

func TestReadExtensionLifecycle(t *testing.T) {
	src, resources := minimalDoc()
	src.ExtensionsUsed = []string{"VENDOR_stub"}
	src.ExtensionsRequired = []string{"VENDOR_stub"}

	dep := struct{ name string }{"decoder"}
	ext := &stubExtension{name: "VENDOR_stub", deps: []string{"decoder"}}

	doc, err := NewReader(
		WithExtensions(ext),
		WithDependency("decoder", dep),
	).Read(src, resources)
	require.NoError(t, err)

	assert.True(t, ext.readCalled)
	assert.Equal(t, dep, ext.attachedDeps["decoder"])
	assert.Same(t, scene.Extension(ext), doc.Extension("VENDOR_stub"))
	assert.Equal(t, []string{"VENDOR_stub"}, doc.RequiredExtensions)
}

func TestReadExtensionMissingDependency(t *testing.T) {
	src, resources := minimalDoc()
	src.ExtensionsUsed = []string{"VENDOR_stub"}

	ext := &stubExtension{name: "VENDOR_stub", deps: []string{"decoder"}}
	_, err := NewReader(WithExtensions(ext)).Read(src, resources)
	assert.ErrorContains(t, err, "missing dependency")
}

func TestReadProvidedTexture(t *testing.T) {
	src, resources := minimalDoc()
	src.ExtensionsUsed = []string{"VENDOR_tex"}
	src.Textures = []gltf.Texture{{Name: "compressed"}} // no source image
	src.Materials = []gltf.Material{{
		PbrMetallicRoughness: &gltf.PbrMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	src.Meshes[0].Primitives[0].Material = ptr(0)

	provided := &scene.Texture{Name: "compressed", MIMEType: "image/ktx2", Data: []byte{1, 2}}
	ext := &stubExtension{name: "VENDOR_tex", texture: provided}

	doc, err := NewReader(WithExtensions(ext)).Read(src, resources)
	require.NoError(t, err)

	require.Len(t, doc.Textures, 1)
	assert.Same(t, provided, doc.Textures[0])
	require.NotNil(t, doc.Materials[0].BaseColor)
	assert.Same(t, provided, doc.Materials[0].BaseColor.Texture)
}

func TestReadProvidedPrimitive(t *testing.T) {
	src, resources := minimalDoc()
	src.ExtensionsUsed = []string{"VENDOR_prim"}
	// The raw primitive references no accessors at all; the extension
	// supplies the decoded geometry.
	src.Meshes[0].Primitives[0] = gltf.Primitive{}

	provided := &scene.Primitive{
		Mode: scene.DrawTriangles,
		Attributes: map[string]*scene.Accessor{
			scene.POSITION: {Element: codec.Vec3, Component: codec.ComponentFloat, Count: 3},
		},
	}
	ext := &stubExtension{name: "VENDOR_prim", prim: provided}

	doc, err := NewReader(WithExtensions(ext)).Read(src, resources)
	require.NoError(t, err)
	assert.Same(t, provided, doc.Meshes[0].Primitives[0])
}

func TestReadDanglingReference(t *testing.T) {
	src, resources := minimalDoc()
	src.Nodes[0].Mesh = ptr(7)

	_, err := NewReader().Read(src, resources)
	assert.ErrorIs(t, err, ErrDanglingReference)
}

func TestReadBufferRules(t *testing.T) {
	t.Run("two buffers without URI", func(t *testing.T) {
		src, resources := minimalDoc()
		resources[resource.GLBBufferKey] = resources["geom.bin"]
		src.Buffers = []gltf.Buffer{
			{ByteLength: 4},
			{ByteLength: 4},
		}

		_, err := NewReader().Read(src, resources)
		assert.ErrorContains(t, err, "without a URI")
	})

	t.Run("missing embedded chunk", func(t *testing.T) {
		src, resources := minimalDoc()
		src.Buffers[0].URI = ""

		_, err := NewReader().Read(src, resources)
		assert.ErrorContains(t, err, "no embedded binary chunk")
	})

	t.Run("embedded chunk satisfies URI-less buffer", func(t *testing.T) {
		src, resources := minimalDoc()
		resources[resource.GLBBufferKey] = resources["geom.bin"]
		src.Buffers[0].URI = ""

		doc, err := NewReader().Read(src, resources)
		require.NoError(t, err)
		assert.Equal(t, resources[resource.GLBBufferKey], doc.Buffers[0].Data)
	})

	t.Run("payload shorter than byteLength", func(t *testing.T) {
		src, resources := minimalDoc()
		src.Buffers[0].ByteLength = len(resources["geom.bin"]) + 1

		_, err := NewReader().Read(src, resources)
		assert.ErrorContains(t, err, "declared byteLength")
	})
}

func TestReadNormalizedRequiresInteger(t *testing.T) {
	src, resources := minimalDoc()
	src.Accessors[0].Normalized = true

	_, err := NewReader().Read(src, resources)
	assert.ErrorIs(t, err, codec.ErrMalformedAccessor)
}

func TestReadAccessorWithoutData(t *testing.T) {
	src, resources := minimalDoc()
	src.Accessors = append(src.Accessors, gltf.Accessor{
		ComponentType: int(codec.ComponentFloat),
		Count:         8,
		Type:          "VEC2",
	})

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	acc := doc.Accessors[2]
	assert.Nil(t, acc.Values)
	assert.Equal(t, 8, acc.Count)
}

func TestReadMatrixNodeDecomposed(t *testing.T) {
	src, resources := minimalDoc()
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))
	var flat [16]float32
	copy(flat[:], m[:])
	src.Nodes[0].Matrix = &flat

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	node := doc.Nodes[0]
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, node.Translation)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 2, node.Scale[i], 1e-5)
	}
}

func TestReadNodeGraphInvariants(t *testing.T) {
	t.Run("multiple parents", func(t *testing.T) {
		src, resources := minimalDoc()
		src.Nodes = []gltf.Node{
			{Children: []int{2}},
			{Children: []int{2}},
			{},
		}
		src.Scenes[0].Nodes = []int{0, 1}

		_, err := NewReader().Read(src, resources)
		assert.ErrorContains(t, err, "already has parent")
	})

	t.Run("cycle", func(t *testing.T) {
		src, resources := minimalDoc()
		src.Nodes = []gltf.Node{
			{Children: []int{1}},
			{Children: []int{0}},
		}
		src.Scenes[0].Nodes = []int{0}

		_, err := NewReader().Read(src, resources)
		assert.ErrorContains(t, err, "cycle")
	})
}

func TestReadTextureSharing(t *testing.T) {
	src, resources := minimalDoc()
	resources["tex.png"] = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0}
	src.Images = []gltf.Image{{URI: "tex.png"}}
	src.Samplers = []gltf.Sampler{
		{MagFilter: ptr(scene.FilterNearest), WrapS: ptr(scene.WrapClampToEdge)},
	}
	// Two document textures over the same image, different samplers.
	src.Textures = []gltf.Texture{
		{Source: ptr(0), Sampler: ptr(0)},
		{Source: ptr(0)},
	}
	src.Materials = []gltf.Material{{
		PbrMetallicRoughness: &gltf.PbrMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
		EmissiveTexture: &gltf.TextureInfo{Index: 1, TexCoord: 1},
	}}
	src.Meshes[0].Primitives[0].Material = ptr(0)

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	// One image, one Texture, regardless of how many sampler pairings exist.
	require.Len(t, doc.Textures, 1)
	tex := doc.Textures[0]
	assert.Equal(t, "image/png", tex.MIMEType)

	mat := doc.Materials[0]
	require.NotNil(t, mat.BaseColor)
	require.NotNil(t, mat.Emissive)
	assert.Same(t, tex, mat.BaseColor.Texture)
	assert.Same(t, tex, mat.Emissive.Texture)

	assert.Equal(t, scene.FilterNearest, mat.BaseColor.Sampler.MagFilter)
	assert.Equal(t, scene.WrapClampToEdge, mat.BaseColor.Sampler.WrapS)
	assert.Equal(t, scene.DefaultSampler(), mat.Emissive.Sampler)
	assert.Equal(t, 1, mat.Emissive.TexCoord)
}

func TestReadMaterialDefaultsAndTransform(t *testing.T) {
	src, resources := minimalDoc()
	resources["tex.png"] = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	src.Images = []gltf.Image{{URI: "tex.png", MimeType: "image/png"}}
	src.Textures = []gltf.Texture{{Source: ptr(0)}}

	transform, err := json.Marshal(map[string]any{
		"offset":   []float32{0.5, 0.25},
		"rotation": 1.5,
		"texCoord": 2,
	})
	require.NoError(t, err)

	src.Materials = []gltf.Material{
		{},
		{
			AlphaMode:   "MASK",
			DoubleSided: true,
			NormalTexture: &gltf.NormalTextureInfo{
				TextureInfo: gltf.TextureInfo{
					Index:      0,
					Extensions: map[string]json.RawMessage{"KHR_texture_transform": transform},
				},
				Scale: ptr(float32(0.75)),
			},
		},
	}

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	def := doc.Materials[0]
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, def.BaseColorFactor)
	assert.Equal(t, float32(1), def.MetallicFactor)
	assert.Equal(t, float32(1), def.RoughnessFactor)
	assert.Equal(t, scene.AlphaOpaque, def.AlphaMode)
	assert.Equal(t, float32(0.5), def.AlphaCutoff)

	mat := doc.Materials[1]
	assert.Equal(t, scene.AlphaMask, mat.AlphaMode)
	assert.True(t, mat.DoubleSided)
	require.NotNil(t, mat.Normal)
	assert.Equal(t, float32(0.75), mat.Normal.Scale)

	uv := mat.Normal.Transform
	require.NotNil(t, uv)
	assert.Equal(t, mgl32.Vec2{0.5, 0.25}, uv.Offset)
	assert.Equal(t, mgl32.Vec2{1, 1}, uv.Scale)
	assert.Equal(t, float32(1.5), uv.Rotation)
	require.NotNil(t, uv.TexCoord)
	assert.Equal(t, 2, *uv.TexCoord)
}

func TestReadMorphTargetNames(t *testing.T) {
	src, resources := minimalDoc()
	src.Accessors = append(src.Accessors, gltf.Accessor{
		BufferView:    ptr(0),
		ComponentType: int(codec.ComponentFloat),
		Count:         3,
		Type:          "VEC3",
	})
	src.Meshes[0].Primitives[0].Targets = []map[string]int{
		{scene.POSITION: 2},
		{scene.POSITION: 2},
	}
	src.Meshes[0].Extras = json.RawMessage(`{"targetNames": ["smile"]}`)

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	targets := doc.Meshes[0].Primitives[0].Targets
	require.Len(t, targets, 2)
	assert.Equal(t, "smile", targets[0].Name)
	// Targets beyond the extras list fall back to their ordinal.
	assert.Equal(t, "1", targets[1].Name)
}

func TestReadPrimitiveAttributeCountMismatch(t *testing.T) {
	src, resources := minimalDoc()
	// The index accessor has count 3 but SCALAR type; reuse it as a bogus
	// NORMAL attribute with a different count by shrinking it.
	src.Accessors = append(src.Accessors, gltf.Accessor{
		BufferView:    ptr(0),
		ComponentType: int(codec.ComponentFloat),
		Count:         2,
		Type:          "VEC3",
	})
	src.Meshes[0].Primitives[0].Attributes[scene.NORMAL] = 2

	_, err := NewReader().Read(src, resources)
	assert.ErrorIs(t, err, codec.ErrMalformedAccessor)
}

func TestReadCameras(t *testing.T) {
	src, resources := minimalDoc()
	src.Cameras = []gltf.Camera{
		{Type: "perspective", Perspective: &gltf.Perspective{Yfov: 1.2, Znear: 0.1}},
		{Type: "orthographic", Orthographic: &gltf.Orthographic{Xmag: 2, Ymag: 2, Znear: 0.1, Zfar: 100}},
	}
	src.Nodes[0].Camera = ptr(1)

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	require.NotNil(t, doc.Cameras[0].Perspective)
	assert.Nil(t, doc.Cameras[0].Orthographic)
	assert.Equal(t, float32(1.2), doc.Cameras[0].Perspective.Yfov)

	require.NotNil(t, doc.Cameras[1].Orthographic)
	assert.Same(t, doc.Cameras[1], doc.Nodes[0].Camera)
}

func TestReadCameraUnknownType(t *testing.T) {
	src, resources := minimalDoc()
	src.Cameras = []gltf.Camera{{Type: "fisheye"}}

	_, err := NewReader().Read(src, resources)
	assert.ErrorContains(t, err, "unknown type")
}

func TestReadSkin(t *testing.T) {
	src, resources := minimalDoc()

	// 2 joints with a MAT4 inverse bind matrix each: 32 floats.
	ibm := make([]float32, 32)
	payload := f32Bytes(ibm...)
	resources["skin.bin"] = payload
	src.Buffers = append(src.Buffers, gltf.Buffer{URI: "skin.bin", ByteLength: len(payload)})
	src.BufferViews = append(src.BufferViews, gltf.BufferView{Buffer: 1, ByteLength: len(payload)})
	src.Accessors = append(src.Accessors, gltf.Accessor{
		BufferView:    ptr(2),
		ComponentType: int(codec.ComponentFloat),
		Count:         2,
		Type:          "MAT4",
	})

	src.Nodes = append(src.Nodes, gltf.Node{Name: "jointA"}, gltf.Node{Name: "jointB"})
	src.Skins = []gltf.Skin{{
		InverseBindMatrices: ptr(2),
		Skeleton:            ptr(1),
		Joints:              []int{1, 2},
	}}
	src.Nodes[0].Skin = ptr(0)

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	skin := doc.Skins[0]
	require.Len(t, skin.Joints, 2)
	assert.Same(t, doc.Nodes[1], skin.Joints[0])
	assert.Same(t, doc.Nodes[1], skin.Skeleton)
	assert.Same(t, skin, doc.Nodes[0].Skin)
	require.NotNil(t, skin.InverseBindMatrices)
	assert.Equal(t, 2, skin.InverseBindMatrices.Count)
}

func TestReadSkinJointCountMismatch(t *testing.T) {
	src, resources := minimalDoc()

	payload := f32Bytes(make([]float32, 16)...)
	resources["skin.bin"] = payload
	src.Buffers = append(src.Buffers, gltf.Buffer{URI: "skin.bin", ByteLength: len(payload)})
	src.BufferViews = append(src.BufferViews, gltf.BufferView{Buffer: 1, ByteLength: len(payload)})
	src.Accessors = append(src.Accessors, gltf.Accessor{
		BufferView:    ptr(2),
		ComponentType: int(codec.ComponentFloat),
		Count:         1,
		Type:          "MAT4",
	})
	src.Nodes = append(src.Nodes, gltf.Node{}, gltf.Node{})
	src.Skins = []gltf.Skin{{
		InverseBindMatrices: ptr(2),
		Joints:              []int{1, 2},
	}}

	_, err := NewReader().Read(src, resources)
	assert.ErrorIs(t, err, codec.ErrMalformedAccessor)
}

func TestReadAnimation(t *testing.T) {
	src, resources := minimalDoc()

	times := f32Bytes(0, 1)
	values := f32Bytes(0, 0, 0, 1, 2, 3)
	payload := append(times, values...)
	resources["anim.bin"] = payload
	src.Buffers = append(src.Buffers, gltf.Buffer{URI: "anim.bin", ByteLength: len(payload)})
	src.BufferViews = append(src.BufferViews,
		gltf.BufferView{Buffer: 1, ByteLength: 8},
		gltf.BufferView{Buffer: 1, ByteOffset: 8, ByteLength: 24},
	)
	src.Accessors = append(src.Accessors,
		gltf.Accessor{BufferView: ptr(2), ComponentType: int(codec.ComponentFloat), Count: 2, Type: "SCALAR"},
		gltf.Accessor{BufferView: ptr(3), ComponentType: int(codec.ComponentFloat), Count: 2, Type: "VEC3"},
	)

	src.Animations = []gltf.Animation{{
		Name: "move",
		Samplers: []gltf.AnimSampler{
			{Input: 2, Output: 3},
		},
		Channels: []gltf.AnimChannel{
			{Sampler: 0, Target: gltf.AnimTarget{Node: ptr(0), Path: "translation"}},
		},
	}}

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	anim := doc.Animations[0]
	assert.Equal(t, "move", anim.Name)
	require.Len(t, anim.Samplers, 1)
	assert.Equal(t, scene.InterpolationLinear, anim.Samplers[0].Interpolation)
	assert.Equal(t, []float32{0, 1}, anim.Samplers[0].Input.Floats())

	require.Len(t, anim.Channels, 1)
	channel := anim.Channels[0]
	assert.Same(t, anim.Samplers[0], channel.Sampler)
	assert.Same(t, doc.Nodes[0], channel.Node)
	assert.Equal(t, scene.PathTranslation, channel.Path)
}

func TestReadAnimationValidation(t *testing.T) {
	base := func() (*gltf.Document, resource.Map) {
		src, resources := minimalDoc()
		src.Accessors = append(src.Accessors,
			gltf.Accessor{BufferView: ptr(1), ComponentType: int(codec.ComponentUnsignedShort), Count: 3, Type: "SCALAR"},
		)
		return src, resources
	}

	t.Run("unknown interpolation", func(t *testing.T) {
		src, resources := base()
		src.Animations = []gltf.Animation{{
			Samplers: []gltf.AnimSampler{{Input: 2, Output: 2, Interpolation: "BEZIER"}},
		}}
		_, err := NewReader().Read(src, resources)
		assert.ErrorContains(t, err, "unknown interpolation")
	})

	t.Run("cubic spline count", func(t *testing.T) {
		src, resources := base()
		// 3 keys need 9 output elements for cubic splines; accessor 0 has 3.
		src.Animations = []gltf.Animation{{
			Samplers: []gltf.AnimSampler{{Input: 2, Output: 0, Interpolation: "CUBICSPLINE"}},
		}}
		_, err := NewReader().Read(src, resources)
		assert.ErrorIs(t, err, codec.ErrMalformedAccessor)
	})

	t.Run("channel sampler out of range", func(t *testing.T) {
		src, resources := base()
		src.Animations = []gltf.Animation{{
			Samplers: []gltf.AnimSampler{{Input: 2, Output: 2}},
			Channels: []gltf.AnimChannel{{Sampler: 5, Target: gltf.AnimTarget{Path: "weights"}}},
		}}
		_, err := NewReader().Read(src, resources)
		assert.ErrorIs(t, err, ErrDanglingReference)
	})

	t.Run("unknown target path", func(t *testing.T) {
		src, resources := base()
		src.Animations = []gltf.Animation{{
			Samplers: []gltf.AnimSampler{{Input: 2, Output: 2}},
			Channels: []gltf.AnimChannel{{Sampler: 0, Target: gltf.AnimTarget{Path: "visibility"}}},
		}}
		_, err := NewReader().Read(src, resources)
		assert.ErrorContains(t, err, "unknown target path")
	})
}

func TestReadSparseAccessor(t *testing.T) {
	src, resources := minimalDoc()

	// Override vertex 1's position via a sparse section.
	sparseIndices := u16Bytes(1)
	sparseValues := f32Bytes(9, 9, 9)
	payload := append(sparseIndices, append([]byte{0, 0}, sparseValues...)...)
	resources["sparse.bin"] = payload
	src.Buffers = append(src.Buffers, gltf.Buffer{URI: "sparse.bin", ByteLength: len(payload)})
	src.BufferViews = append(src.BufferViews,
		gltf.BufferView{Buffer: 1, ByteLength: 2},
		gltf.BufferView{Buffer: 1, ByteOffset: 4, ByteLength: 12},
	)
	src.Accessors[0].Sparse = &gltf.AccessorSparse{
		Count:   1,
		Indices: gltf.SparseIndices{BufferView: 2, ComponentType: int(codec.ComponentUnsignedShort)},
		Values:  gltf.SparseValues{BufferView: 3},
	}

	doc, err := NewReader().Read(src, resources)
	require.NoError(t, err)

	pos := doc.Accessors[0]
	assert.Equal(t, []float32{0, 0, 0, 9, 9, 9, 0, 1, 0}, pos.Floats())
}

func TestReadSparseAccessorNegativeCount(t *testing.T) {
	src, resources := minimalDoc()

	// A hostile sparse count must surface as a malformed-accessor error,
	// never as an allocation panic.
	src.Accessors[0].Sparse = &gltf.AccessorSparse{
		Count:   -1,
		Indices: gltf.SparseIndices{BufferView: 0, ComponentType: int(codec.ComponentUnsignedShort)},
		Values:  gltf.SparseValues{BufferView: 0},
	}

	_, err := NewReader().Read(src, resources)
	assert.ErrorIs(t, err, codec.ErrMalformedAccessor)
}
