package main

import (
	"fmt"
	"io"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshalign/pkg/meshgen"
	"github.com/chazu/meshalign/pkg/meshio"
)

func runGen(args []string, stderr io.Writer) error {
	fs := newFlagSet("gen", stderr)
	shape := fs.String("shape", "box", "box, cylinder or sphere")
	size := fs.String("size", "40,30,20", "box: x,y,z; cylinder: height,radius,_; sphere: radius,_,_")
	rotate := fs.String("rotate", "0,0,0", "Euler angles in degrees, applied x, y, z")
	translate := fs.String("translate", "0,0,0", "translation after rotation")
	cells := fs.Int("cells", meshgen.DefaultCells, "marching cubes resolution")
	out := fs.String("o", "", "output mesh file (required)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *out == "" {
		fmt.Fprintln(stderr, "usage: meshnorm gen [flags] -o out.obj")
		fs.PrintDefaults()
		return errUsage
	}

	dims, err := parseTriple(*size)
	if err != nil {
		return fmt.Errorf("-size: %w", err)
	}
	rot, err := parseTriple(*rotate)
	if err != nil {
		return fmt.Errorf("-rotate: %w", err)
	}
	tr, err := parseTriple(*translate)
	if err != nil {
		return fmt.Errorf("-translate: %w", err)
	}

	var s meshgen.Solid
	switch *shape {
	case "box":
		s, err = meshgen.Box(dims[0], dims[1], dims[2])
	case "cylinder":
		s, err = meshgen.Cylinder(dims[0], dims[1])
	case "sphere":
		s, err = meshgen.Sphere(dims[0])
	default:
		return fmt.Errorf("unknown shape %q", *shape)
	}
	if err != nil {
		return err
	}
	s = meshgen.Rotate(s, rot[0], rot[1], rot[2])
	s = meshgen.Translate(s, v3.Vec{X: tr[0], Y: tr[1], Z: tr[2]})

	m, err := meshgen.ToMesh(s, *shape, *cells)
	if err != nil {
		return err
	}
	return meshio.Save(*out, m)
}
