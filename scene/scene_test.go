package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/gltf-go/codec"
)

func TestAccessorFloats(t *testing.T) {
	a := &Accessor{Element: codec.Vec3, Component: codec.ComponentUnsignedByte, Count: 1, Values: []uint8{0, 128, 255}}
	assert.Equal(t, 3, a.Arity())
	assert.Equal(t, []float32{0, 128, 255}, a.Floats())

	a = &Accessor{Element: codec.Scalar, Component: codec.ComponentByte, Count: 2, Values: []int8{-1, 1}}
	assert.Equal(t, []float32{-1, 1}, a.Floats())

	a = &Accessor{Element: codec.Scalar, Component: codec.ComponentFloat, Count: 1}
	assert.Nil(t, a.Floats())
}

func TestAccessorUInts(t *testing.T) {
	a := &Accessor{Element: codec.Scalar, Component: codec.ComponentUnsignedShort, Count: 2, Values: []uint16{7, 70}}
	assert.Equal(t, []uint32{7, 70}, a.UInts())

	// Float data has no index interpretation.
	a = &Accessor{Element: codec.Scalar, Component: codec.ComponentFloat, Count: 1, Values: []float32{1}}
	assert.Nil(t, a.UInts())
}

func TestNodeMatrix(t *testing.T) {
	n := &Node{
		Translation: mgl32.Vec3{1, 2, 3},
		Rotation:    mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{2, 2, 2},
	}
	m := n.Matrix()
	assert.Equal(t, float32(1), m.At(0, 3))
	assert.Equal(t, float32(2), m.At(1, 3))
	assert.Equal(t, float32(3), m.At(2, 3))
	assert.Equal(t, float32(2), m.At(0, 0))
}

func TestDefaultSampler(t *testing.T) {
	s := DefaultSampler()
	assert.Equal(t, FilterLinear, s.MagFilter)
	assert.Equal(t, FilterLinear, s.MinFilter)
	assert.Equal(t, WrapRepeat, s.WrapS)
	assert.Equal(t, WrapRepeat, s.WrapT)
}

func TestDocumentExtensionLookup(t *testing.T) {
	d := &Document{}
	assert.Nil(t, d.Extension("VENDOR_nope"))
}
