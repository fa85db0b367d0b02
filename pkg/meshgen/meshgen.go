// Package meshgen builds synthetic meshes from signed-distance primitives
// using the github.com/deadsy/sdfx CAD library. The meshes serve as test
// fixtures and as sample input for the command-line tool.
package meshgen

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshalign/pkg/mesh"
)

// DefaultCells controls marching cubes resolution along the longest axis.
const DefaultCells = 64

// weldTolerance is the grid size used to merge vertices that marching cubes
// emits once per adjacent triangle.
const weldTolerance = 1e-9

// Solid is a signed-distance solid.
type Solid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s Solid) BoundingBox() (min, max v3.Vec) {
	bb := s.s.BoundingBox()
	return bb.Min, bb.Max
}

// Box creates a box with the given dimensions, centered on the origin.
func Box(x, y, z float64) (Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return Solid{}, fmt.Errorf("meshgen: box: %w", err)
	}
	return Solid{s}, nil
}

// Cylinder creates a cylinder along Z, centered on the origin.
func Cylinder(height, radius float64) (Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return Solid{}, fmt.Errorf("meshgen: cylinder: %w", err)
	}
	return Solid{s}, nil
}

// Sphere creates a sphere centered on the origin.
func Sphere(radius float64) (Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return Solid{}, fmt.Errorf("meshgen: sphere: %w", err)
	}
	return Solid{s}, nil
}

// Union returns the union of two solids.
func Union(a, b Solid) Solid {
	return Solid{sdf.Union3D(a.s, b.s)}
}

// Translate moves a solid by v.
func Translate(s Solid, v v3.Vec) Solid {
	return Solid{sdf.Transform3D(s.s, sdf.Translate3d(v))}
}

// Rotate rotates a solid by Euler angles (degrees), applied X, then Y, then Z.
func Rotate(s Solid, x, y, z float64) Solid {
	return Solid{sdf.Transform3D(s.s, RotationMatrix(x, y, z))}
}

// RotationMatrix returns the sdfx matrix for Euler angles in degrees applied
// X, then Y, then Z.
func RotationMatrix(x, y, z float64) sdf.M44 {
	return sdf.RotateZ(radians(z)).Mul(sdf.RotateY(radians(y))).Mul(sdf.RotateX(radians(x)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

type weldKey [3]int64

func keyOf(v v3.Vec) weldKey {
	return weldKey{
		int64(math.Round(v.X / weldTolerance)),
		int64(math.Round(v.Y / weldTolerance)),
		int64(math.Round(v.Z / weldTolerance)),
	}
}

// ToMesh tessellates a solid with marching cubes and welds shared vertices
// into an indexed triangle mesh. cells <= 0 selects DefaultCells. Triangles
// that collapse after welding are dropped.
func ToMesh(s Solid, name string, cells int) (*mesh.Mesh, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s.s, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("meshgen: %q tessellated to no triangles", name)
	}

	index := make(map[weldKey]uint32, len(triangles))
	var vertices []v3.Vec
	faces := make([]mesh.Face, 0, len(triangles))

	for _, tri := range triangles {
		var f mesh.Face
		for j := 0; j < 3; j++ {
			v := tri[j]
			k := keyOf(v)
			idx, ok := index[k]
			if !ok {
				idx = uint32(len(vertices))
				index[k] = idx
				vertices = append(vertices, v)
			}
			f = append(f, idx)
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		faces = append(faces, f)
	}

	return mesh.New(name, vertices, faces), nil
}
