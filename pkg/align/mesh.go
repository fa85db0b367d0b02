package align

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshalign/pkg/mesh"
)

// ApplyMesh returns a new mesh whose vertices are those of m mapped through t.
// Faces are copied unchanged and the name is kept. m is not modified. An empty
// mesh yields an empty mesh.
func ApplyMesh(m *mesh.Mesh, t RigidTransform) *mesh.Mesh {
	var vertices []v3.Vec
	if m.Vertices != nil {
		vertices = make([]v3.Vec, len(m.Vertices))
		for i, v := range m.Vertices {
			vertices[i] = t.Apply(v)
		}
	}
	return mesh.New(m.Name, vertices, mesh.CloneFaces(m.Faces))
}
