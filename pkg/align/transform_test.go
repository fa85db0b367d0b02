package align

import (
	"math"
	"testing"

	"github.com/chazu/meshalign/pkg/mesh"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMat3Det(t *testing.T) {
	tests := []struct {
		name string
		m    Mat3
		want float64
	}{
		{"identity", Identity3(), 1},
		{"reflection", Mat3{{-1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, -1},
		{"scale", Mat3{{2, 0, 0}, {0, 3, 0}, {0, 0, 4}}, 24},
		{"singular", Mat3{{1, 2, 3}, {2, 4, 6}, {0, 0, 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Det(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Det() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMat3MulTranspose(t *testing.T) {
	m := Mat3{{1, 2, 3}, {4, 5, 6}, {7, 8, 10}}
	want := Mat3{{14, 32, 53}, {32, 77, 128}, {53, 128, 213}}
	if got := m.Mul(m.T()); got != want {
		t.Errorf("m·mᵗ = %v, want %v", got, want)
	}
	if m.IsOrthonormal(1e-9) {
		t.Error("IsOrthonormal() = true for a general matrix")
	}
}

func TestRigidTransformApply(t *testing.T) {
	// Quarter turn about Z, model centroid at (1,0,0), reference at (0,0,5).
	tr := RigidTransform{
		Rotation:          Mat3{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		ModelCentroid:     Point3{X: 1},
		ReferenceCentroid: Point3{Z: 5},
	}
	tests := []struct {
		in, want Point3
	}{
		{Point3{X: 1}, Point3{Z: 5}},
		{Point3{X: 2}, Point3{Y: 1, Z: 5}},
		{Point3{X: 1, Y: 1}, Point3{X: -1, Z: 5}},
		{Point3{X: 1, Z: -5}, Point3{}},
	}
	for _, tt := range tests {
		if got := tr.Apply(tt.in); got != tt.want {
			t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRigidTransformMatrixAgreesWithApply(t *testing.T) {
	tr, err := ComputeTransform(modelLandmarks, referenceLandmarks)
	if err != nil {
		t.Fatal(err)
	}
	m := tr.Matrix()
	if v := m.Values(); v[12] != 0 || v[13] != 0 || v[14] != 0 || v[15] != 1 {
		t.Fatalf("bottom row = %v, want 0 0 0 1", v[12:])
	}
	if d := m.Determinant(); math.Abs(d-1) > 1e-9 {
		t.Errorf("det = %v, want 1", d)
	}
	for _, p := range modelLandmarks {
		if diff := cmp.Diff(tr.Apply(p), m.MulPosition(p), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("matrix form disagrees for %v:\n%s", p, diff)
		}
	}

	// Inverse composes with the matrix to the identity.
	if !tr.Inverse().Matrix().Mul(m).Equals(sdf.Identity3d(), 1e-9) {
		t.Errorf("Inverse().Matrix()·Matrix() is not the identity")
	}
}

func TestRigidTransformInverse(t *testing.T) {
	tr, err := ComputeTransform(modelLandmarks, referenceLandmarks)
	if err != nil {
		t.Fatal(err)
	}
	inv := tr.Inverse()
	if !inv.IsProperRotation(1e-9) {
		t.Fatalf("inverse is not a proper rotation: %v", inv.Rotation)
	}
	back := inv.ApplyAll(tr.ApplyAll(modelLandmarks))
	if diff := cmp.Diff(modelLandmarks, back, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("inverse does not round-trip:\n%s", diff)
	}
}

func TestIdentityTransform(t *testing.T) {
	id := IdentityTransform()
	if !id.IsProperRotation(0) {
		t.Error("identity is not a proper rotation")
	}
	p := Point3{X: 3, Y: -4, Z: 5}
	if got := id.Apply(p); got != p {
		t.Errorf("Apply(%v) = %v", p, got)
	}
}

// --- ApplyMesh ---

func triangleMesh() *mesh.Mesh {
	return mesh.New("tri", []v3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0},
		{X: 0, Y: 10, Z: 0},
		{X: 0, Y: 0, Z: 10},
	}, []mesh.Face{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}})
}

func TestApplyMeshPreservesTopology(t *testing.T) {
	in := triangleMesh()
	before := in.Clone()
	m := sdf.Translate3d(v3.Vec{X: 5, Y: 6, Z: 7}).Mul(sdf.RotateY(0.8))
	tr := RigidTransform{ReferenceCentroid: v3.Vec{X: 5, Y: 6, Z: 7}}
	for i, e := range []v3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		c := m.MulPosition(e).Sub(v3.Vec{X: 5, Y: 6, Z: 7})
		tr.Rotation[0][i], tr.Rotation[1][i], tr.Rotation[2][i] = c.X, c.Y, c.Z
	}

	out := ApplyMesh(in, tr)

	if diff := cmp.Diff(in.Faces, out.Faces); diff != "" {
		t.Errorf("faces changed (-in +out):\n%s", diff)
	}
	if out.Name != in.Name {
		t.Errorf("name = %q, want %q", out.Name, in.Name)
	}
	for i, v := range in.Vertices {
		want := m.MulPosition(v)
		if diff := cmp.Diff(want, out.Vertices[i], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("vertex %d:\n%s", i, diff)
		}
	}
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input mesh mutated:\n%s", diff)
	}

	// Output shares no storage with the input.
	out.Faces[0][0] = 3
	out.Vertices[0] = v3.Vec{X: 99}
	if in.Faces[0][0] != 0 || in.Vertices[0] != (v3.Vec{}) {
		t.Error("output aliases input storage")
	}
}

func TestApplyMeshIdentityLeavesVertices(t *testing.T) {
	tr, err := ComputeTransform(modelLandmarks, modelLandmarks)
	if err != nil {
		t.Fatal(err)
	}
	in := triangleMesh()
	out := ApplyMesh(in, tr)
	if diff := cmp.Diff(in, out, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("identity changed the mesh:\n%s", diff)
	}
}

func TestApplyMeshEmpty(t *testing.T) {
	out := ApplyMesh(&mesh.Mesh{Name: "empty"}, IdentityTransform())
	if !out.IsEmpty() || out.FaceCount() != 0 || out.Name != "empty" {
		t.Errorf("ApplyMesh(empty) = %+v", out)
	}
}

// --- Diagnostics ---

func TestResiduals(t *testing.T) {
	a := PointSetFrom([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	b := PointSetFrom([3]float64{3, 4, 0}, [3]float64{1, 1, 1})
	res := Residuals(a, b)
	if diff := cmp.Diff([]float64{5, 0}, res); diff != "" {
		t.Errorf("Residuals:\n%s", diff)
	}
	if got, want := RMSD(res), math.Sqrt(12.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("RMSD = %v, want %v", got, want)
	}
	if got := MaxResidual(res); got != 5 {
		t.Errorf("MaxResidual = %v, want 5", got)
	}
	if RMSD(nil) != 0 || MaxResidual(nil) != 0 {
		t.Error("empty residuals should be 0")
	}
}

func TestPointSetCentroid(t *testing.T) {
	ps := PointSetFrom([3]float64{0, 0, 0}, [3]float64{2, 4, 6}, [3]float64{4, 2, 0})
	if got, want := ps.Centroid(), (Point3{X: 2, Y: 2, Z: 2}); got != want {
		t.Errorf("Centroid() = %v, want %v", got, want)
	}
	if got, want := ps.WeightedCentroid([]float64{0, 1, 1}), (Point3{X: 3, Y: 3, Z: 3}); got != want {
		t.Errorf("WeightedCentroid() = %v, want %v", got, want)
	}
	if got := (PointSet{}).Centroid(); got != (Point3{}) {
		t.Errorf("empty Centroid() = %v", got)
	}
}
