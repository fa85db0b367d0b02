package align

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// Identity3 returns the 3x3 identity.
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// MulVec returns m·v.
func (m Mat3) MulVec(v Point3) Point3 {
	return Point3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Mul returns m·n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return out
}

// T returns the transpose.
func (m Mat3) T() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// Det returns the determinant.
func (m Mat3) Det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// IsOrthonormal reports whether m·mᵗ is within tol of the identity in every
// entry.
func (m Mat3) IsOrthonormal(tol float64) bool {
	p := m.Mul(m.T())
	id := Identity3()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(p[i][j]-id[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// RigidTransform maps model-frame points into the reference frame:
//
//	v' = Rotation·(v − ModelCentroid) + ReferenceCentroid
//
// Rotation is a proper rotation (orthonormal, determinant +1).
type RigidTransform struct {
	Rotation          Mat3
	ModelCentroid     Point3
	ReferenceCentroid Point3
}

// IdentityTransform returns the transform that leaves every point unchanged.
func IdentityTransform() RigidTransform {
	return RigidTransform{Rotation: Identity3()}
}

// Apply maps one point.
func (t RigidTransform) Apply(p Point3) Point3 {
	return t.Rotation.MulVec(p.Sub(t.ModelCentroid)).Add(t.ReferenceCentroid)
}

// ApplyAll maps every point of ps into a new set.
func (t RigidTransform) ApplyAll(ps PointSet) PointSet {
	out := make(PointSet, len(ps))
	for i, p := range ps {
		out[i] = t.Apply(p)
	}
	return out
}

// Translation returns t such that Apply(v) = Rotation·v + t.
func (t RigidTransform) Translation() Point3 {
	return t.ReferenceCentroid.Sub(t.Rotation.MulVec(t.ModelCentroid))
}

// Matrix returns the transform as an sdfx homogeneous matrix, so that
// Matrix().MulPosition(v) == Apply(v).
func (t RigidTransform) Matrix() sdf.M44 {
	r := t.Rotation
	tr := t.Translation()
	return sdf.NewM44([16]float64{
		r[0][0], r[0][1], r[0][2], tr.X,
		r[1][0], r[1][1], r[1][2], tr.Y,
		r[2][0], r[2][1], r[2][2], tr.Z,
		0, 0, 0, 1,
	})
}

// Inverse returns the transform mapping reference-frame points back into the
// model frame.
func (t RigidTransform) Inverse() RigidTransform {
	return RigidTransform{
		Rotation:          t.Rotation.T(),
		ModelCentroid:     t.ReferenceCentroid,
		ReferenceCentroid: t.ModelCentroid,
	}
}

// Det returns the determinant of the rotation.
func (t RigidTransform) Det() float64 {
	return t.Rotation.Det()
}

// IsProperRotation reports whether the rotation is orthonormal with
// determinant +1, both within tol.
func (t RigidTransform) IsProperRotation(tol float64) bool {
	return t.Rotation.IsOrthonormal(tol) && math.Abs(t.Det()-1) <= tol
}
