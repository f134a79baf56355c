// Package codec reconstructs strongly-typed numeric arrays from raw glTF
// buffer bytes. It understands the three layout conventions accessors use:
// tightly packed, interleaved (explicit stride larger than the element size),
// and sparse-overridden. The codec has no knowledge of the scene graph; it
// operates on byte slices and layout descriptors only.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Common errors returned by the codec.
var (
	// ErrUnsupportedComponentType is returned when a layout names a numeric
	// component type the codec does not recognize.
	ErrUnsupportedComponentType = errors.New("unsupported accessor component type")

	// ErrMalformedAccessor is returned when offset/stride/count arithmetic
	// would read outside the backing buffer. Buffers may be attacker- or
	// corruption-supplied, so the bounds check is mandatory.
	ErrMalformedAccessor = errors.New("malformed accessor: data exceeds buffer bounds")
)

// ComponentType is the storage type of a single accessor component.
// Values match the glTF 2.0 componentType constants.
type ComponentType int

// Component type constants
const (
	ComponentByte          ComponentType = 5120
	ComponentUnsignedByte  ComponentType = 5121
	ComponentShort         ComponentType = 5122
	ComponentUnsignedShort ComponentType = 5123
	ComponentUnsignedInt   ComponentType = 5125
	ComponentFloat         ComponentType = 5126
)

// Size returns the byte size of one component, or 0 for an unrecognized type.
func (c ComponentType) Size() int {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// IsInteger reports whether the component type stores integers.
// The accessor normalized flag is only valid for integer component types.
func (c ComponentType) IsInteger() bool {
	switch c {
	case ComponentByte, ComponentUnsignedByte, ComponentShort, ComponentUnsignedShort, ComponentUnsignedInt:
		return true
	default:
		return false
	}
}

// ElementType is the arity class of one accessor element (scalar/vector/matrix).
// Values match the glTF 2.0 accessor type strings.
type ElementType string

// Element type constants
const (
	Scalar ElementType = "SCALAR"
	Vec2   ElementType = "VEC2"
	Vec3   ElementType = "VEC3"
	Vec4   ElementType = "VEC4"
	Mat2   ElementType = "MAT2"
	Mat3   ElementType = "MAT3"
	Mat4   ElementType = "MAT4"
)

// Arity returns the number of components per element, or 0 for an
// unrecognized element type.
func (t ElementType) Arity() int {
	switch t {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4:
		return 4
	case Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	default:
		return 0
	}
}

// Layout describes how one accessor's elements sit inside a byte buffer.
type Layout struct {
	// ByteOffset is the offset of the first element within the buffer.
	ByteOffset int

	// ByteStride is the distance between consecutive elements. Zero means
	// tightly packed (stride equals the element's own byte size).
	ByteStride int

	// Component is the scalar storage type of each component.
	Component ComponentType

	// Element is the arity class of each element.
	Element ElementType

	// Count is the number of elements to decode.
	Count int
}

// SparseSection locates one auxiliary array of a sparse override inside
// its own backing buffer.
type SparseSection struct {
	// Buffer is the backing byte buffer for this section.
	Buffer []byte

	// ByteOffset is the offset of the section's first scalar.
	ByteOffset int

	// Component is the scalar storage type. For the index section it must
	// be an unsigned integer type; for the value section it matches the
	// base accessor's component type.
	Component ComponentType
}

// SparseOverride describes a sparse accessor's override data: Count
// index→value pairs applied on top of the base array.
type SparseOverride struct {
	// Count is the number of overridden elements.
	Count int

	// Indices locates the element index array (unsigned integer scalars).
	Indices SparseSection

	// Values locates the replacement element array (Count elements of the
	// base accessor's element type).
	Values SparseSection
}

// Decode reconstructs the typed array described by layout from buf.
//
// The returned value holds a flat slice of layout.Count × arity scalars,
// one of []int8, []uint8, []int16, []uint16, []uint32 or []float32
// depending on layout.Component. Multi-byte scalars are read little-endian
// regardless of host platform.
//
// A nil buf is valid only together with a sparse override: the base array
// is then zero-filled before the override is applied (the bufferView-less
// sparse accessor case). Sparse indices need not be sorted; duplicate
// indices resolve to the last-applied value.
//
// Parameters:
//   - buf: the backing byte buffer, or nil for a zero-filled base
//   - layout: the element layout descriptor
//   - sparse: optional sparse override section
//
// Returns:
//   - any: the decoded flat numeric array
//   - error: ErrUnsupportedComponentType or ErrMalformedAccessor on failure
func Decode(buf []byte, layout Layout, sparse *SparseOverride) (any, error) {
	switch layout.Component {
	case ComponentByte:
		return decodeArray(buf, layout, sparse, func(b []byte) int8 { return int8(b[0]) })
	case ComponentUnsignedByte:
		return decodeArray(buf, layout, sparse, func(b []byte) uint8 { return b[0] })
	case ComponentShort:
		return decodeArray(buf, layout, sparse, func(b []byte) int16 { return int16(binary.LittleEndian.Uint16(b)) })
	case ComponentUnsignedShort:
		return decodeArray(buf, layout, sparse, func(b []byte) uint16 { return binary.LittleEndian.Uint16(b) })
	case ComponentUnsignedInt:
		return decodeArray(buf, layout, sparse, func(b []byte) uint32 { return binary.LittleEndian.Uint32(b) })
	case ComponentFloat:
		return decodeArray(buf, layout, sparse, func(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) })
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedComponentType, layout.Component)
	}
}

// DecodeIndices decodes a sparse index section as a []uint32 regardless of
// its stored component width. Index sections are always tightly packed
// unsigned integer scalars.
//
// Parameters:
//   - s: the index section
//   - count: the number of indices to decode
//
// Returns:
//   - []uint32: the decoded indices, widened to uint32
//   - error: ErrUnsupportedComponentType or ErrMalformedAccessor on failure
func DecodeIndices(s SparseSection, count int) ([]uint32, error) {
	layout := Layout{
		ByteOffset: s.ByteOffset,
		Component:  s.Component,
		Element:    Scalar,
		Count:      count,
	}

	decoded, err := Decode(s.Buffer, layout, nil)
	if err != nil {
		return nil, err
	}

	switch v := decoded.(type) {
	case []uint8:
		out := make([]uint32, len(v))
		for i, x := range v {
			out[i] = uint32(x)
		}
		return out, nil
	case []uint16:
		out := make([]uint32, len(v))
		for i, x := range v {
			out[i] = uint32(x)
		}
		return out, nil
	case []uint32:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: sparse indices must be unsigned integers, got %d", ErrUnsupportedComponentType, s.Component)
	}
}

// decodeArray decodes the base array for layout and applies the sparse
// override when present. The read callback decodes one little-endian scalar
// from the start of its slice argument.
func decodeArray[T any](buf []byte, layout Layout, sparse *SparseOverride, read func([]byte) T) ([]T, error) {
	arity := layout.Element.Arity()
	if arity == 0 {
		return nil, fmt.Errorf("unrecognized accessor element type %q", layout.Element)
	}
	size := layout.Component.Size()
	elemSize := arity * size

	// Counts come straight off the wire. Rejecting negatives and anything
	// whose byte extent cannot fit in an int keeps the allocation below and
	// the capacity comparisons overflow-free; the per-layout checks then
	// divide instead of multiplying so a hostile count can never wrap the
	// bounds arithmetic.
	if layout.Count < 0 || layout.Count > math.MaxInt/elemSize {
		return nil, fmt.Errorf("%w: element count %d", ErrMalformedAccessor, layout.Count)
	}

	out := make([]T, layout.Count*arity)

	switch {
	case buf == nil:
		// Zero-filled base: valid only for bufferView-less sparse accessors.
		if sparse == nil {
			return nil, fmt.Errorf("%w: no backing buffer and no sparse override", ErrMalformedAccessor)
		}

	case layout.ByteStride == 0 || layout.ByteStride == elemSize:
		// Tightly packed: one contiguous byte range holding count×arity
		// scalars back to back. No per-element offset arithmetic.
		if layout.ByteOffset < 0 || layout.ByteOffset > len(buf) || layout.Count > (len(buf)-layout.ByteOffset)/elemSize {
			return nil, fmt.Errorf("%w: offset=%d count=%d have=%d", ErrMalformedAccessor, layout.ByteOffset, layout.Count, len(buf))
		}
		p := layout.ByteOffset
		for i := range out {
			out[i] = read(buf[p:])
			p += size
		}

	case layout.ByteStride > elemSize:
		// Interleaved: consecutive elements of this accessor are separated
		// by a stride larger than the element's own size. Each scalar is
		// located individually; stride arithmetic errors here would silently
		// corrupt unrelated vertex attributes, so bounds are checked against
		// the final element's extent.
		if layout.Count > 0 {
			if layout.ByteOffset < 0 || layout.ByteOffset+elemSize > len(buf) ||
				layout.Count-1 > (len(buf)-layout.ByteOffset-elemSize)/layout.ByteStride {
				return nil, fmt.Errorf("%w: offset=%d stride=%d count=%d have=%d", ErrMalformedAccessor, layout.ByteOffset, layout.ByteStride, layout.Count, len(buf))
			}
		}
		for i := 0; i < layout.Count; i++ {
			base := layout.ByteOffset + i*layout.ByteStride
			for j := 0; j < arity; j++ {
				out[i*arity+j] = read(buf[base+j*size:])
			}
		}

	default:
		return nil, fmt.Errorf("%w: stride %d smaller than element size %d", ErrMalformedAccessor, layout.ByteStride, elemSize)
	}

	if sparse != nil {
		if err := applySparse(out, layout, sparse, read); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// applySparse overwrites out[indices[i]*arity+j] with the i-th override
// element for every override entry. Later entries win on duplicate indices,
// matching array overwrite order.
func applySparse[T any](out []T, layout Layout, sparse *SparseOverride, read func([]byte) T) error {
	arity := layout.Element.Arity()

	indices, err := DecodeIndices(sparse.Indices, sparse.Count)
	if err != nil {
		return fmt.Errorf("sparse indices: %w", err)
	}

	values, err := decodeArray(sparse.Values.Buffer, Layout{
		ByteOffset: sparse.Values.ByteOffset,
		Component:  layout.Component,
		Element:    layout.Element,
		Count:      sparse.Count,
	}, nil, read)
	if err != nil {
		return fmt.Errorf("sparse values: %w", err)
	}

	for i, idx := range indices {
		if int(idx) >= layout.Count {
			return fmt.Errorf("%w: sparse index %d beyond element count %d", ErrMalformedAccessor, idx, layout.Count)
		}
		for j := 0; j < arity; j++ {
			out[int(idx)*arity+j] = values[i*arity+j]
		}
	}

	return nil
}
