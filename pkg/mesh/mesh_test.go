package mesh

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
)

// quad returns a unit square in the XY plane as one polygon face.
func quad() *Mesh {
	return New("quad", []v3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}, []Face{{0, 1, 2, 3}})
}

// --- Counting helpers ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []v3.Vec
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []v3.Vec{{X: 1, Y: 2, Z: 3}}, 1},
		{"four vertices", quad().Vertices, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name  string
		faces []Face
		want  int
	}{
		{"empty", nil, 0},
		{"one triangle", []Face{{0, 1, 2}}, 1},
		{"two triangles", []Face{{0, 1, 2}, {2, 3, 0}}, 2},
		{"quad", []Face{{0, 1, 2, 3}}, 2},
		{"pentagon and triangle", []Face{{0, 1, 2, 3, 4}, {0, 1, 2}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Faces: tt.faces}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		if quad().IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Clone ---

func TestCloneIsIndependent(t *testing.T) {
	orig := quad()
	c := orig.Clone()

	if diff := cmp.Diff(orig, c); diff != "" {
		t.Fatalf("clone differs from original (-orig +clone):\n%s", diff)
	}

	c.Vertices[0] = v3.Vec{X: 9, Y: 9, Z: 9}
	c.Faces[0][0] = 3
	if orig.Vertices[0] != (v3.Vec{}) {
		t.Errorf("mutating clone vertices changed original: %v", orig.Vertices[0])
	}
	if orig.Faces[0][0] != 0 {
		t.Errorf("mutating clone faces changed original: %v", orig.Faces[0])
	}
}

func TestCloneEmpty(t *testing.T) {
	c := (&Mesh{Name: "nothing"}).Clone()
	if !c.IsEmpty() || c.Faces != nil || c.Name != "nothing" {
		t.Errorf("Clone of empty mesh = %+v", c)
	}
}

// --- Validate ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mesh    *Mesh
		wantErr bool
	}{
		{"valid quad", quad(), false},
		{"empty", &Mesh{}, false},
		{"index out of range", New("bad", quad().Vertices, []Face{{0, 1, 4}}), true},
		{"degenerate face", New("bad", quad().Vertices, []Face{{0, 1}}), true},
		{"nan vertex", New("bad", []v3.Vec{{X: math.NaN()}}, nil), true},
		{"inf vertex", New("bad", []v3.Vec{{Z: math.Inf(-1)}}, nil), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// --- Geometry ---

func TestBounds(t *testing.T) {
	m := New("", []v3.Vec{
		{X: -1, Y: 5, Z: 2},
		{X: 3, Y: -2, Z: 0},
		{X: 0, Y: 0, Z: 7},
	}, nil)
	min, max := m.Bounds()
	if min != (v3.Vec{X: -1, Y: -2, Z: 0}) {
		t.Errorf("min = %v", min)
	}
	if max != (v3.Vec{X: 3, Y: 5, Z: 7}) {
		t.Errorf("max = %v", max)
	}

	min, max = (&Mesh{}).Bounds()
	if min != (v3.Vec{}) || max != (v3.Vec{}) {
		t.Errorf("empty bounds = %v, %v", min, max)
	}
}

func TestTrianglesFan(t *testing.T) {
	m := quad()
	tris := m.Triangles()
	if len(tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tris))
	}
	want := [][3]v3.Vec{
		{m.Vertices[0], m.Vertices[1], m.Vertices[2]},
		{m.Vertices[0], m.Vertices[2], m.Vertices[3]},
	}
	for i, tri := range tris {
		for j := 0; j < 3; j++ {
			if tri[j] != want[i][j] {
				t.Errorf("triangle %d vertex %d = %v, want %v", i, j, tri[j], want[i][j])
			}
		}
		n := tri.Normal()
		if math.Abs(n.Z-1) > 1e-12 {
			t.Errorf("triangle %d normal = %v, want +Z", i, n)
		}
	}
}
