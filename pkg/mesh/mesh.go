// Package mesh defines the indexed polygon mesh exchanged between the mesh
// readers/writers and the alignment core. Vertices carry geometry, faces carry
// topology; transformations touch only the former.
package mesh

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is an ordered list of zero-based vertex indices. Triangles have three
// entries; larger polygons are allowed and are fan-triangulated on demand.
type Face []uint32

// Mesh is an indexed polygon mesh.
type Mesh struct {
	Name     string   // optional object name, carried through I/O
	Vertices []v3.Vec // vertex positions
	Faces    []Face   // polygons indexing into Vertices
}

// New returns a mesh with the given name and geometry. The slices are used
// as-is, not copied.
func New(name string, vertices []v3.Vec, faces []Face) *Mesh {
	return &Mesh{Name: name, Vertices: vertices, Faces: faces}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// TriangleCount returns the number of triangles the faces fan-triangulate to.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, f := range m.Faces {
		if len(f) >= 3 {
			n += len(f) - 2
		}
	}
	return n
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Clone returns a deep copy of the mesh. The copy shares no backing arrays
// with the original.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{Name: m.Name}
	if m.Vertices != nil {
		out.Vertices = make([]v3.Vec, len(m.Vertices))
		copy(out.Vertices, m.Vertices)
	}
	out.Faces = CloneFaces(m.Faces)
	return out
}

// CloneFaces deep-copies a face list.
func CloneFaces(faces []Face) []Face {
	if faces == nil {
		return nil
	}
	out := make([]Face, len(faces))
	for i, f := range faces {
		out[i] = append(Face(nil), f...)
	}
	return out
}

// Validate checks that every face has at least three indices, that every
// index is in range and that every vertex coordinate is finite.
func (m *Mesh) Validate() error {
	for i, v := range m.Vertices {
		if !finite(v) {
			return fmt.Errorf("mesh %q: vertex %d has non-finite coordinates %v", m.Name, i, v)
		}
	}
	n := uint32(len(m.Vertices))
	for i, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("mesh %q: face %d has %d indices, need at least 3", m.Name, i, len(f))
		}
		for _, idx := range f {
			if idx >= n {
				return fmt.Errorf("mesh %q: face %d references vertex %d, mesh has %d vertices", m.Name, i, idx, n)
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the vertices. An empty mesh
// returns two zero vectors.
func (m *Mesh) Bounds() (min, max v3.Vec) {
	if len(m.Vertices) == 0 {
		return v3.Vec{}, v3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// Triangles fan-triangulates every face. The mesh must be valid.
func (m *Mesh) Triangles() []*sdf.Triangle3 {
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for _, f := range m.Faces {
		for k := 1; k+1 < len(f); k++ {
			tris = append(tris, &sdf.Triangle3{
				m.Vertices[f[0]],
				m.Vertices[f[k]],
				m.Vertices[f[k+1]],
			})
		}
	}
	return tris
}

func finite(v v3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
