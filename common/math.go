package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DecomposeMatrix decomposes a column-major 4x4 transform matrix into
// translation, rotation (unit quaternion), and scale.
//
// The scale magnitudes are the Euclidean lengths of the matrix's first three
// basis columns. A negative determinant (mirrored transform) is encoded by
// negating the X scale output only; the basis columns are still normalized by
// the unsigned magnitudes before quaternion extraction, so the sign never
// reaches the rotation. Zero-scale axes are not specially handled: the
// division propagates into the rotation components.
//
// Parameters:
//   - m: the column-major transform matrix
//
// Returns:
//   - mgl32.Vec3: the translation (matrix column 3)
//   - mgl32.Quat: the rotation as a unit quaternion
//   - mgl32.Vec3: the scale, X component signed by the determinant
func DecomposeMatrix(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	translation := m.Col(3).Vec3()

	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()

	sx := c0.Len()
	sy := c1.Len()
	sz := c2.Len()

	signedX := sx
	if m.Det() < 0 {
		signedX = -sx
	}
	scale := mgl32.Vec3{signedX, sy, sz}

	rot := mgl32.Mat4FromCols(
		c0.Mul(1/sx).Vec4(0),
		c1.Mul(1/sy).Vec4(0),
		c2.Mul(1/sz).Vec4(0),
		mgl32.Vec4{0, 0, 0, 1},
	)
	rotation := mgl32.Mat4ToQuat(rot).Normalize()

	return translation, rotation, scale
}

// ComposeMatrix builds a column-major 4x4 transform matrix from translation,
// rotation, and scale. Inverse of DecomposeMatrix for proper (non-mirrored)
// transforms.
//
// Parameters:
//   - translation: the translation column
//   - rotation: the rotation quaternion
//   - scale: the per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed transform matrix
func ComposeMatrix(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	r := rotation.Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Mat4FromSlice builds an mgl32.Mat4 from a flat column-major [16]float32,
// the layout glTF node matrices use on the wire.
//
// Parameters:
//   - m: the flat column-major matrix values
//
// Returns:
//   - mgl32.Mat4: the matrix
func Mat4FromSlice(m [16]float32) mgl32.Mat4 {
	var out mgl32.Mat4
	copy(out[:], m[:])
	return out
}
