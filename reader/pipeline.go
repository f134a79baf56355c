package reader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/gltf-go/codec"
	"github.com/Carmen-Shannon/gltf-go/common"
	"github.com/Carmen-Shannon/gltf-go/gltf"
	"github.com/Carmen-Shannon/gltf-go/resource"
	"github.com/Carmen-Shannon/gltf-go/scene"
)

// viewWindow is one validated bufferView: its byte window into the owning
// buffer plus the declared stride (0 = tightly packed).
type viewWindow struct {
	data   []byte
	stride int
}

// pipeline holds the state of one read. Phases run strictly in order on a
// single goroutine; each phase seals its kind's arena before any later phase
// resolves against it.
type pipeline struct {
	reader    *reader
	src       *gltf.Document
	ctx       *readContext
	resources resource.Map

	// attached are the extensions participating in this read, in document
	// declaration order.
	attached []scene.Extension

	views []viewWindow

	// textureSamplers holds the resolved sampler per document texture index.
	textureSamplers []scene.Sampler
}

func (p *pipeline) run() (*scene.Document, error) {
	steps := []func() error{
		p.checkVersion,
		p.readAsset,
		p.attachExtensions,
		p.readBuffers,
		p.readBufferViews,
		p.readAccessors,
		p.provideTextures,
		p.readTextures,
		p.readMaterials,
		p.providePrimitives,
		p.readMeshes,
		p.readCameras,
		p.readNodes,
		p.readSkins,
		p.wireNodes,
		p.readAnimations,
		p.readScenes,
		p.runReadHooks,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return p.ctx.doc, nil
}

// --- Phase 1: version and extension gate ---

func (p *pipeline) checkVersion() error {
	v, err := semver.NewVersion(p.src.Asset.Version)
	if err != nil {
		return fmt.Errorf("%w: asset version %q", ErrUnsupportedVersion, p.src.Asset.Version)
	}
	if v.Major() != supportedMajor || v.Minor() != supportedMinor {
		return fmt.Errorf("%w: asset version %q", ErrUnsupportedVersion, p.src.Asset.Version)
	}
	if p.src.Asset.MinVersion != "" {
		mv, err := semver.NewVersion(p.src.Asset.MinVersion)
		if err != nil || mv.Major() != supportedMajor || mv.Minor() > supportedMinor {
			return fmt.Errorf("%w: asset minVersion %q", ErrUnsupportedVersion, p.src.Asset.MinVersion)
		}
	}

	required := make(map[string]bool, len(p.src.ExtensionsRequired))
	for _, name := range p.src.ExtensionsRequired {
		required[name] = true
		if _, ok := p.reader.extensions[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingRequiredExtension, name)
		}
	}
	for _, name := range p.src.ExtensionsUsed {
		if _, ok := p.reader.extensions[name]; !ok && !required[name] {
			p.reader.logger.Warn("document uses unsupported extension; its data will be ignored",
				zap.String("extension", name))
		}
	}
	return nil
}

// --- Phase 2: asset metadata ---

func (p *pipeline) readAsset() error {
	p.ctx.doc.Asset = scene.Asset{
		Version:    p.src.Asset.Version,
		MinVersion: p.src.Asset.MinVersion,
		Generator:  p.src.Asset.Generator,
		Copyright:  p.src.Asset.Copyright,
		Extras:     p.src.Asset.Extras,
	}
	return nil
}

// --- Phase 3: extension instantiation ---

func (p *pipeline) attachExtensions() error {
	required := make(map[string]bool, len(p.src.ExtensionsRequired))
	for _, name := range p.src.ExtensionsRequired {
		required[name] = true
	}

	// Union of used and required, in declaration order. Well-formed documents
	// list required extensions in extensionsUsed too, but the union keeps
	// sloppy ones working.
	names := make([]string, 0, len(p.src.ExtensionsUsed)+len(p.src.ExtensionsRequired))
	seen := make(map[string]bool)
	for _, name := range append(append([]string{}, p.src.ExtensionsUsed...), p.src.ExtensionsRequired...) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, name := range names {
		ext, ok := p.reader.extensions[name]
		if !ok {
			continue
		}

		deps := make(map[string]any)
		for _, depName := range ext.Dependencies() {
			impl, ok := p.reader.dependencies[depName]
			if !ok {
				return fmt.Errorf("extension %q: missing dependency %q", name, depName)
			}
			deps[depName] = impl
		}
		if err := ext.Attach(deps); err != nil {
			return fmt.Errorf("extension %q: attach: %w", name, err)
		}

		p.attached = append(p.attached, ext)
		p.ctx.doc.Extensions = append(p.ctx.doc.Extensions, ext)
		if required[name] {
			p.ctx.doc.RequiredExtensions = append(p.ctx.doc.RequiredExtensions, name)
		}
	}
	return nil
}

// --- Phase 4: buffers ---

func (p *pipeline) readBuffers() error {
	embedded := false
	for i, b := range p.src.Buffers {
		var data []byte
		if b.URI == "" {
			// At most one buffer may omit a URI: the GLB-embedded chunk.
			if embedded {
				return fmt.Errorf("buffer %d: more than one buffer without a URI", i)
			}
			embedded = true

			chunk, ok := p.resources[resource.GLBBufferKey]
			if !ok {
				return fmt.Errorf("buffer %d: no URI and no embedded binary chunk", i)
			}
			data = chunk
		} else {
			payload, ok := p.resources[b.URI]
			if !ok {
				return fmt.Errorf("buffer %d: no payload resolved for URI %q", i, b.URI)
			}
			data = payload
		}

		if len(data) < b.ByteLength {
			return fmt.Errorf("buffer %d: payload is %d bytes, declared byteLength %d", i, len(data), b.ByteLength)
		}

		p.ctx.buffers.add(&scene.Buffer{
			Name: b.Name,
			URI:  b.URI,
			Data: data,
		})
	}
	p.ctx.buffers.seal()
	p.ctx.doc.Buffers = p.ctx.buffers.items
	return nil
}

// --- Phase 5: bufferView validation ---

func (p *pipeline) readBufferViews() error {
	p.views = make([]viewWindow, len(p.src.BufferViews))
	for i, v := range p.src.BufferViews {
		buf, err := p.ctx.buffers.resolve(v.Buffer)
		if err != nil {
			return fmt.Errorf("bufferView %d: %w", i, err)
		}
		if v.ByteOffset < 0 || v.ByteLength < 0 || v.ByteOffset+v.ByteLength > len(buf.Data) {
			return fmt.Errorf("bufferView %d: %w: view [%d,%d) exceeds buffer size %d",
				i, codec.ErrMalformedAccessor, v.ByteOffset, v.ByteOffset+v.ByteLength, len(buf.Data))
		}
		p.views[i] = viewWindow{
			data:   buf.Data[v.ByteOffset : v.ByteOffset+v.ByteLength],
			stride: common.ValueOr(v.ByteStride, 0),
		}
	}
	return nil
}

func (p *pipeline) view(i int) (viewWindow, error) {
	if i < 0 || i >= len(p.views) {
		return viewWindow{}, fmt.Errorf("%w: bufferView index %d out of range [0,%d)", ErrDanglingReference, i, len(p.views))
	}
	return p.views[i], nil
}

// --- Phase 6: accessors ---

func (p *pipeline) readAccessors() error {
	for i, a := range p.src.Accessors {
		acc, err := p.readAccessor(a)
		if err != nil {
			return fmt.Errorf("accessor %d: %w", i, err)
		}
		p.ctx.accessors.add(acc)
	}
	p.ctx.accessors.seal()
	p.ctx.doc.Accessors = p.ctx.accessors.items
	return nil
}

func (p *pipeline) readAccessor(a gltf.Accessor) (*scene.Accessor, error) {
	elem := codec.ElementType(a.Type)
	comp := codec.ComponentType(a.ComponentType)

	if elem.Arity() == 0 {
		return nil, fmt.Errorf("%w: unrecognized element type %q", codec.ErrMalformedAccessor, a.Type)
	}
	if comp.Size() == 0 {
		return nil, fmt.Errorf("%w: %d", codec.ErrUnsupportedComponentType, a.ComponentType)
	}
	if a.Normalized && !comp.IsInteger() {
		return nil, fmt.Errorf("%w: normalized flag on non-integer component type", codec.ErrMalformedAccessor)
	}
	if a.Count < 0 {
		return nil, fmt.Errorf("%w: negative count", codec.ErrMalformedAccessor)
	}

	acc := &scene.Accessor{
		Name:       a.Name,
		Element:    elem,
		Component:  comp,
		Count:      a.Count,
		Normalized: a.Normalized,
	}

	// No bufferView and no sparse section: the accessor's data arrives later
	// through an extension (e.g. mesh compression). Values stays nil.
	if a.BufferView == nil && a.Sparse == nil {
		return acc, nil
	}

	var window []byte
	layout := codec.Layout{
		ByteOffset: a.ByteOffset,
		Component:  comp,
		Element:    elem,
		Count:      a.Count,
	}
	if a.BufferView != nil {
		v, err := p.view(*a.BufferView)
		if err != nil {
			return nil, err
		}
		window = v.data
		layout.ByteStride = v.stride
	}

	var sparse *codec.SparseOverride
	if a.Sparse != nil {
		iv, err := p.view(a.Sparse.Indices.BufferView)
		if err != nil {
			return nil, fmt.Errorf("sparse indices: %w", err)
		}
		vv, err := p.view(a.Sparse.Values.BufferView)
		if err != nil {
			return nil, fmt.Errorf("sparse values: %w", err)
		}
		sparse = &codec.SparseOverride{
			Count: a.Sparse.Count,
			Indices: codec.SparseSection{
				Buffer:     iv.data,
				ByteOffset: a.Sparse.Indices.ByteOffset,
				Component:  codec.ComponentType(a.Sparse.Indices.ComponentType),
			},
			Values: codec.SparseSection{
				Buffer:     vv.data,
				ByteOffset: a.Sparse.Values.ByteOffset,
				Component:  comp,
			},
		}
	}

	values, err := codec.Decode(window, layout, sparse)
	if err != nil {
		return nil, err
	}
	acc.Values = values
	return acc, nil
}

// --- Phase 7: extension-provided textures ---

func (p *pipeline) provideTextures() error {
	for _, ext := range p.attached {
		if !ext.Provides(scene.ProvideTextures) {
			continue
		}
		if err := ext.Provide(scene.ProvideTextures, p.ctx); err != nil {
			return fmt.Errorf("extension %q: provide textures: %w", ext.Name(), err)
		}
	}
	return nil
}

// --- Phase 8: textures ---

func (p *pipeline) readTextures() error {
	// Document textures are sampler+image pairs; the graph keeps one Texture
	// per image and moves sampling state onto the material bindings.
	imageTextures := make([]*scene.Texture, len(p.src.Images))
	p.textureSamplers = make([]scene.Sampler, len(p.src.Textures))

	unique := make(map[*scene.Texture]bool)
	for i, t := range p.src.Textures {
		tex, ok := p.ctx.providedTextures[i]
		if !ok {
			if t.Source == nil {
				return fmt.Errorf("texture %d: no image source and no extension-provided payload", i)
			}
			si := *t.Source
			if si < 0 || si >= len(p.src.Images) {
				return fmt.Errorf("texture %d: %w: image index %d out of range [0,%d)", i, ErrDanglingReference, si, len(p.src.Images))
			}
			if imageTextures[si] == nil {
				img, err := p.readImage(si)
				if err != nil {
					return fmt.Errorf("texture %d: %w", i, err)
				}
				imageTextures[si] = img
			}
			tex = imageTextures[si]
			if tex.Name == "" {
				tex.Name = t.Name
			}
		}

		sampler := scene.DefaultSampler()
		if t.Sampler != nil {
			si := *t.Sampler
			if si < 0 || si >= len(p.src.Samplers) {
				return fmt.Errorf("texture %d: %w: sampler index %d out of range [0,%d)", i, ErrDanglingReference, si, len(p.src.Samplers))
			}
			s := p.src.Samplers[si]
			sampler = scene.Sampler{
				MagFilter: common.ValueOr(s.MagFilter, scene.FilterLinear),
				MinFilter: common.ValueOr(s.MinFilter, scene.FilterLinear),
				WrapS:     common.ValueOr(s.WrapS, scene.WrapRepeat),
				WrapT:     common.ValueOr(s.WrapT, scene.WrapRepeat),
			}
		}
		p.textureSamplers[i] = sampler

		p.ctx.textures.add(tex)
		if !unique[tex] {
			unique[tex] = true
			p.ctx.doc.Textures = append(p.ctx.doc.Textures, tex)
		}
	}
	p.ctx.textures.seal()
	return nil
}

// readImage constructs the Texture backing one document image.
func (p *pipeline) readImage(i int) (*scene.Texture, error) {
	img := p.src.Images[i]
	tex := &scene.Texture{
		Name:     img.Name,
		MIMEType: img.MimeType,
		URI:      img.URI,
	}

	switch {
	case img.BufferView != nil:
		v, err := p.view(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		// Cloned so mutating the image payload never corrupts accessor data
		// sharing the same buffer.
		tex.Data = bytes.Clone(v.data)
	case img.URI != "":
		payload, ok := p.resources[img.URI]
		if !ok {
			return nil, fmt.Errorf("image %d: no payload resolved for URI %q", i, img.URI)
		}
		tex.Data = payload
	default:
		return nil, fmt.Errorf("image %d: neither bufferView nor URI", i)
	}

	// MIME inference order: explicit field, URI extension, magic bytes.
	if tex.MIMEType == "" && tex.URI != "" && !resource.IsDataURI(tex.URI) {
		if kind := filetype.GetType(strings.TrimPrefix(path.Ext(tex.URI), ".")); kind != filetype.Unknown {
			tex.MIMEType = kind.MIME.Value
		}
	}
	if tex.MIMEType == "" {
		if kind, err := filetype.Match(tex.Data); err == nil && kind != filetype.Unknown {
			tex.MIMEType = kind.MIME.Value
		}
	}
	return tex, nil
}

// --- Phase 9: materials ---

// uvTransformExt is the KHR_texture_transform JSON payload.
type uvTransformExt struct {
	Offset   *[2]float32 `json:"offset,omitempty"`
	Rotation *float32    `json:"rotation,omitempty"`
	Scale    *[2]float32 `json:"scale,omitempty"`
	TexCoord *int        `json:"texCoord,omitempty"`
}

const extTextureTransform = "KHR_texture_transform"

func (p *pipeline) readMaterials() error {
	for i, m := range p.src.Materials {
		mat, err := p.readMaterial(m)
		if err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		p.ctx.materials.add(mat)
	}
	p.ctx.materials.seal()
	p.ctx.doc.Materials = p.ctx.materials.items
	return nil
}

func (p *pipeline) readMaterial(m gltf.Material) (*scene.Material, error) {
	mat := &scene.Material{
		Name:            m.Name,
		BaseColorFactor: mgl32.Vec4{1, 1, 1, 1},
		EmissiveFactor:  mgl32.Vec3{},
		MetallicFactor:  1,
		RoughnessFactor: 1,
		AlphaMode:       scene.AlphaMode(common.Coalesce(m.AlphaMode, string(scene.AlphaOpaque))),
		AlphaCutoff:     common.ValueOr(m.AlphaCutoff, 0.5),
		DoubleSided:     m.DoubleSided,
	}
	switch mat.AlphaMode {
	case scene.AlphaOpaque, scene.AlphaMask, scene.AlphaBlend:
	default:
		return nil, fmt.Errorf("unknown alpha mode %q", m.AlphaMode)
	}
	if m.EmissiveFactor != nil {
		mat.EmissiveFactor = mgl32.Vec3(*m.EmissiveFactor)
	}

	if pbr := m.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			mat.BaseColorFactor = mgl32.Vec4(*pbr.BaseColorFactor)
		}
		mat.MetallicFactor = common.ValueOr(pbr.MetallicFactor, 1)
		mat.RoughnessFactor = common.ValueOr(pbr.RoughnessFactor, 1)

		var err error
		if mat.BaseColor, err = p.textureBinding(pbr.BaseColorTexture, 1); err != nil {
			return nil, fmt.Errorf("base color texture: %w", err)
		}
		if mat.MetallicRoughness, err = p.textureBinding(pbr.MetallicRoughnessTexture, 1); err != nil {
			return nil, fmt.Errorf("metallic-roughness texture: %w", err)
		}
	}

	if m.NormalTexture != nil {
		binding, err := p.textureBinding(&m.NormalTexture.TextureInfo, common.ValueOr(m.NormalTexture.Scale, 1))
		if err != nil {
			return nil, fmt.Errorf("normal texture: %w", err)
		}
		mat.Normal = binding
	}
	if m.OcclusionTexture != nil {
		binding, err := p.textureBinding(&m.OcclusionTexture.TextureInfo, common.ValueOr(m.OcclusionTexture.Strength, 1))
		if err != nil {
			return nil, fmt.Errorf("occlusion texture: %w", err)
		}
		mat.Occlusion = binding
	}

	var err error
	if mat.Emissive, err = p.textureBinding(m.EmissiveTexture, 1); err != nil {
		return nil, fmt.Errorf("emissive texture: %w", err)
	}
	return mat, nil
}

// textureBinding resolves one material texture slot, or returns nil for a
// nil info.
func (p *pipeline) textureBinding(info *gltf.TextureInfo, scale float32) (*scene.TextureBinding, error) {
	if info == nil {
		return nil, nil
	}

	tex, err := p.ctx.textures.resolve(info.Index)
	if err != nil {
		return nil, err
	}

	binding := &scene.TextureBinding{
		Texture:  tex,
		Sampler:  p.textureSamplers[info.Index],
		TexCoord: info.TexCoord,
		Scale:    scale,
	}

	if raw, ok := info.Extensions[extTextureTransform]; ok {
		var ext uvTransformExt
		if err := json.Unmarshal(raw, &ext); err != nil {
			return nil, fmt.Errorf("%s: %w", extTextureTransform, err)
		}
		transform := &scene.UVTransform{
			Scale:    mgl32.Vec2{1, 1},
			TexCoord: ext.TexCoord,
		}
		if ext.Offset != nil {
			transform.Offset = mgl32.Vec2(*ext.Offset)
		}
		if ext.Scale != nil {
			transform.Scale = mgl32.Vec2(*ext.Scale)
		}
		transform.Rotation = common.ValueOr(ext.Rotation, 0)
		binding.Transform = transform
	}
	return binding, nil
}

// --- Phase 10: extension-provided primitives ---

func (p *pipeline) providePrimitives() error {
	for _, ext := range p.attached {
		if !ext.Provides(scene.ProvidePrimitives) {
			continue
		}
		if err := ext.Provide(scene.ProvidePrimitives, p.ctx); err != nil {
			return fmt.Errorf("extension %q: provide primitives: %w", ext.Name(), err)
		}
	}
	return nil
}

// --- Phase 11: meshes ---

func (p *pipeline) readMeshes() error {
	for mi, m := range p.src.Meshes {
		mesh, err := p.readMesh(mi, m)
		if err != nil {
			return fmt.Errorf("mesh %d: %w", mi, err)
		}
		p.ctx.meshes.add(mesh)
	}
	p.ctx.meshes.seal()
	p.ctx.doc.Meshes = p.ctx.meshes.items
	return nil
}

func (p *pipeline) readMesh(mi int, m gltf.Mesh) (*scene.Mesh, error) {
	// The conventional targetNames extras list names morph targets; targets
	// beyond the list (or with no list at all) fall back to their ordinal.
	var extras struct {
		TargetNames []string `json:"targetNames"`
	}
	if len(m.Extras) > 0 {
		// Malformed extras are application data, not document structure;
		// ignore them.
		_ = json.Unmarshal(m.Extras, &extras)
	}
	targetName := func(ti int) string {
		if ti < len(extras.TargetNames) {
			return extras.TargetNames[ti]
		}
		return strconv.Itoa(ti)
	}

	mesh := &scene.Mesh{
		Name:    m.Name,
		Weights: m.Weights,
	}
	for pi, prim := range m.Primitives {
		built, err := p.readPrimitive(mi, pi, prim, targetName)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", pi, err)
		}
		mesh.Primitives = append(mesh.Primitives, built)
	}
	return mesh, nil
}

func (p *pipeline) readPrimitive(mi, pi int, prim gltf.Primitive, targetName func(int) string) (*scene.Primitive, error) {
	if provided, ok := p.ctx.providedPrimitives[[2]int{mi, pi}]; ok {
		return provided, nil
	}

	mode := common.ValueOr(prim.Mode, int(scene.DrawTriangles))
	if mode < int(scene.DrawPoints) || mode > int(scene.DrawTriangleFan) {
		return nil, fmt.Errorf("unknown primitive mode %d", mode)
	}

	built := &scene.Primitive{
		Mode:       scene.DrawMode(mode),
		Attributes: make(map[string]*scene.Accessor, len(prim.Attributes)),
	}

	// All attribute accessors of one primitive describe the same vertices,
	// so their element counts must agree.
	vertexCount := -1
	for name, ai := range prim.Attributes {
		acc, err := p.ctx.accessors.resolve(ai)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		if vertexCount == -1 {
			vertexCount = acc.Count
		} else if acc.Count != vertexCount {
			return nil, fmt.Errorf("%w: attribute %s has %d elements, expected %d",
				codec.ErrMalformedAccessor, name, acc.Count, vertexCount)
		}
		built.Attributes[name] = acc
	}

	if prim.Indices != nil {
		acc, err := p.ctx.accessors.resolve(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		built.Indices = acc
	}
	if prim.Material != nil {
		mat, err := p.ctx.materials.resolve(*prim.Material)
		if err != nil {
			return nil, fmt.Errorf("material: %w", err)
		}
		built.Material = mat
	}

	for ti, target := range prim.Targets {
		morph := &scene.PrimitiveTarget{
			Name:       targetName(ti),
			Attributes: make(map[string]*scene.Accessor, len(target)),
		}
		for name, ai := range target {
			acc, err := p.ctx.accessors.resolve(ai)
			if err != nil {
				return nil, fmt.Errorf("target %d attribute %s: %w", ti, name, err)
			}
			if vertexCount != -1 && acc.Count != vertexCount {
				return nil, fmt.Errorf("%w: target %d attribute %s has %d elements, expected %d",
					codec.ErrMalformedAccessor, ti, name, acc.Count, vertexCount)
			}
			morph.Attributes[name] = acc
		}
		built.Targets = append(built.Targets, morph)
	}
	return built, nil
}

// --- Phase 12: cameras ---

func (p *pipeline) readCameras() error {
	for i, c := range p.src.Cameras {
		cam := &scene.Camera{Name: c.Name}
		switch c.Type {
		case "perspective":
			if c.Perspective == nil {
				return fmt.Errorf("camera %d: perspective type without perspective parameters", i)
			}
			cam.Perspective = &scene.PerspectiveCamera{
				AspectRatio: c.Perspective.AspectRatio,
				Yfov:        c.Perspective.Yfov,
				Znear:       c.Perspective.Znear,
				Zfar:        c.Perspective.Zfar,
			}
		case "orthographic":
			if c.Orthographic == nil {
				return fmt.Errorf("camera %d: orthographic type without orthographic parameters", i)
			}
			cam.Orthographic = &scene.OrthographicCamera{
				Xmag:  c.Orthographic.Xmag,
				Ymag:  c.Orthographic.Ymag,
				Znear: c.Orthographic.Znear,
				Zfar:  c.Orthographic.Zfar,
			}
		default:
			return fmt.Errorf("camera %d: unknown type %q", i, c.Type)
		}
		p.ctx.cameras.add(cam)
	}
	p.ctx.cameras.seal()
	p.ctx.doc.Cameras = p.ctx.cameras.items
	return nil
}

// --- Phase 13: nodes (transforms only) ---

func (p *pipeline) readNodes() error {
	for _, n := range p.src.Nodes {
		node := &scene.Node{
			Name:     n.Name,
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
			Weights:  n.Weights,
		}

		// TRS is canonical: matrix-form nodes are decomposed here and the
		// matrix is not retained.
		if n.Matrix != nil {
			node.Translation, node.Rotation, node.Scale = common.DecomposeMatrix(common.Mat4FromSlice(*n.Matrix))
		} else {
			if n.Translation != nil {
				node.Translation = mgl32.Vec3(*n.Translation)
			}
			if n.Rotation != nil {
				q := *n.Rotation
				node.Rotation = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
			}
			if n.Scale != nil {
				node.Scale = mgl32.Vec3(*n.Scale)
			}
		}
		p.ctx.nodes.add(node)
	}
	p.ctx.nodes.seal()
	p.ctx.doc.Nodes = p.ctx.nodes.items
	return nil
}

// --- Phase 14: skins ---

func (p *pipeline) readSkins() error {
	for i, s := range p.src.Skins {
		skin := &scene.Skin{Name: s.Name}

		for _, ji := range s.Joints {
			joint, err := p.ctx.nodes.resolve(ji)
			if err != nil {
				return fmt.Errorf("skin %d: joint: %w", i, err)
			}
			skin.Joints = append(skin.Joints, joint)
		}
		if s.Skeleton != nil {
			root, err := p.ctx.nodes.resolve(*s.Skeleton)
			if err != nil {
				return fmt.Errorf("skin %d: skeleton: %w", i, err)
			}
			skin.Skeleton = root
		}
		if s.InverseBindMatrices != nil {
			ibm, err := p.ctx.accessors.resolve(*s.InverseBindMatrices)
			if err != nil {
				return fmt.Errorf("skin %d: inverse bind matrices: %w", i, err)
			}
			if ibm.Count != len(skin.Joints) {
				return fmt.Errorf("skin %d: %w: %d inverse bind matrices for %d joints",
					i, codec.ErrMalformedAccessor, ibm.Count, len(skin.Joints))
			}
			skin.InverseBindMatrices = ibm
		}
		p.ctx.skins.add(skin)
	}
	p.ctx.skins.seal()
	p.ctx.doc.Skins = p.ctx.skins.items
	return nil
}

// --- Phase 15: node wiring ---

func (p *pipeline) wireNodes() error {
	parent := make([]int, len(p.src.Nodes))
	for i := range parent {
		parent[i] = -1
	}

	for i, n := range p.src.Nodes {
		node := p.ctx.nodes.items[i]

		for _, ci := range n.Children {
			child, err := p.ctx.nodes.resolve(ci)
			if err != nil {
				return fmt.Errorf("node %d: child: %w", i, err)
			}
			if parent[ci] != -1 {
				return fmt.Errorf("node %d: child node %d already has parent %d", i, ci, parent[ci])
			}
			parent[ci] = i
			node.Children = append(node.Children, child)
		}

		if n.Mesh != nil {
			mesh, err := p.ctx.meshes.resolve(*n.Mesh)
			if err != nil {
				return fmt.Errorf("node %d: mesh: %w", i, err)
			}
			node.Mesh = mesh
		}
		if n.Camera != nil {
			cam, err := p.ctx.cameras.resolve(*n.Camera)
			if err != nil {
				return fmt.Errorf("node %d: camera: %w", i, err)
			}
			node.Camera = cam
		}
		if n.Skin != nil {
			skin, err := p.ctx.skins.resolve(*n.Skin)
			if err != nil {
				return fmt.Errorf("node %d: skin: %w", i, err)
			}
			node.Skin = skin
		}
	}

	// The single-parent check above rules out DAG sharing; what remains is
	// detecting parent chains that loop. Walking the chain from every node
	// with three-color marking finds them in linear time.
	const (
		white = iota
		grey
		black
	)
	state := make([]int, len(p.src.Nodes))
	var chain []int
	for i := range p.src.Nodes {
		chain = chain[:0]
		j := i
		for j != -1 && state[j] == white {
			state[j] = grey
			chain = append(chain, j)
			j = parent[j]
		}
		if j != -1 && state[j] == grey {
			return fmt.Errorf("node %d: node graph contains a cycle", j)
		}
		for _, k := range chain {
			state[k] = black
		}
	}
	return nil
}

// --- Phase 16: animations ---

func (p *pipeline) readAnimations() error {
	for i, a := range p.src.Animations {
		anim, err := p.readAnimation(a)
		if err != nil {
			return fmt.Errorf("animation %d: %w", i, err)
		}
		p.ctx.animations.add(anim)
	}
	p.ctx.animations.seal()
	p.ctx.doc.Animations = p.ctx.animations.items
	return nil
}

func (p *pipeline) readAnimation(a gltf.Animation) (*scene.Animation, error) {
	anim := &scene.Animation{Name: a.Name}

	for si, s := range a.Samplers {
		input, err := p.ctx.accessors.resolve(s.Input)
		if err != nil {
			return nil, fmt.Errorf("sampler %d: input: %w", si, err)
		}
		output, err := p.ctx.accessors.resolve(s.Output)
		if err != nil {
			return nil, fmt.Errorf("sampler %d: output: %w", si, err)
		}

		interp := scene.Interpolation(common.Coalesce(s.Interpolation, string(scene.InterpolationLinear)))
		switch interp {
		case scene.InterpolationLinear, scene.InterpolationStep, scene.InterpolationCubicSpline:
		default:
			return nil, fmt.Errorf("sampler %d: unknown interpolation %q", si, s.Interpolation)
		}

		// Output holds one value per key, or per-key in/value/out triples for
		// cubic splines. Weights channels pack several scalars per key, so
		// the output count must be a whole multiple of the key count.
		if input.Count > 0 {
			per := output.Count
			if interp == scene.InterpolationCubicSpline {
				if per%3 != 0 {
					return nil, fmt.Errorf("sampler %d: %w: cubic spline output count %d not divisible by 3",
						si, codec.ErrMalformedAccessor, output.Count)
				}
				per /= 3
			}
			if per%input.Count != 0 {
				return nil, fmt.Errorf("sampler %d: %w: output count %d does not cover %d keyframes",
					si, codec.ErrMalformedAccessor, output.Count, input.Count)
			}
		}

		anim.Samplers = append(anim.Samplers, &scene.AnimationSampler{
			Input:         input,
			Output:        output,
			Interpolation: interp,
		})
	}

	for ci, c := range a.Channels {
		if c.Sampler < 0 || c.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("channel %d: %w: sampler index %d out of range [0,%d)",
				ci, ErrDanglingReference, c.Sampler, len(anim.Samplers))
		}
		channel := &scene.AnimationChannel{
			Sampler: anim.Samplers[c.Sampler],
			Path:    scene.TargetPath(c.Target.Path),
		}
		switch channel.Path {
		case scene.PathTranslation, scene.PathRotation, scene.PathScale, scene.PathWeights:
		default:
			return nil, fmt.Errorf("channel %d: unknown target path %q", ci, c.Target.Path)
		}
		if c.Target.Node != nil {
			node, err := p.ctx.nodes.resolve(*c.Target.Node)
			if err != nil {
				return nil, fmt.Errorf("channel %d: target node: %w", ci, err)
			}
			channel.Node = node
		}
		anim.Channels = append(anim.Channels, channel)
	}
	return anim, nil
}

// --- Phase 17: scenes ---

func (p *pipeline) readScenes() error {
	for i, s := range p.src.Scenes {
		sc := &scene.Scene{Name: s.Name}
		for _, ni := range s.Nodes {
			node, err := p.ctx.nodes.resolve(ni)
			if err != nil {
				return fmt.Errorf("scene %d: root node: %w", i, err)
			}
			sc.Nodes = append(sc.Nodes, node)
		}
		p.ctx.scenes.add(sc)
	}
	p.ctx.scenes.seal()
	p.ctx.doc.Scenes = p.ctx.scenes.items

	if p.src.Scene != nil {
		def, err := p.ctx.scenes.resolve(*p.src.Scene)
		if err != nil {
			return fmt.Errorf("default scene: %w", err)
		}
		p.ctx.doc.Scene = def
	}
	return nil
}

// --- Phase 18: extension read hooks ---

func (p *pipeline) runReadHooks() error {
	for _, ext := range p.attached {
		if err := ext.Read(p.ctx); err != nil {
			return fmt.Errorf("extension %q: read: %w", ext.Name(), err)
		}
	}
	return nil
}
