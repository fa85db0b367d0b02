package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/meshalign/pkg/mesh"
)

// ParseError reports a malformed line in a mesh file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ReadOBJ parses the geometry of a Wavefront OBJ stream: "v" vertex
// positions and "f" faces. Face corners may be "v", "v/vt", "v//vn" or
// "v/vt/vn"; negative indices are relative to the vertices read so far.
// Texture coordinates, normals, groups and materials are ignored. The first
// "o" statement, if any, names the mesh.
func ReadOBJ(r io.Reader) (*mesh.Mesh, error) {
	m := &mesh.Mesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, &ParseError{Line: line, Message: err.Error()}
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			f, err := parseFace(fields[1:], len(m.Vertices))
			if err != nil {
				return nil, &ParseError{Line: line, Message: err.Error()}
			}
			m.Faces = append(m.Faces, f)
		case "o":
			if m.Name == "" && len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	return m, nil
}

func parseVertex(fields []string) (v3.Vec, error) {
	if len(fields) < 3 {
		return v3.Vec{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return v3.Vec{}, fmt.Errorf("vertex coordinate %q: %w", fields[i], err)
		}
		c[i] = f
	}
	// An optional fourth (w) component is a homogeneous weight.
	if len(fields) >= 4 {
		w, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return v3.Vec{}, fmt.Errorf("vertex weight %q: %w", fields[3], err)
		}
		if w != 0 && w != 1 {
			c[0], c[1], c[2] = c[0]/w, c[1]/w, c[2]/w
		}
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func parseFace(fields []string, nverts int) (mesh.Face, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(fields))
	}
	f := make(mesh.Face, len(fields))
	for i, corner := range fields {
		ref, _, _ := strings.Cut(corner, "/")
		n, err := strconv.Atoi(ref)
		if err != nil {
			return nil, fmt.Errorf("face index %q: %w", corner, err)
		}
		switch {
		case n > 0 && n <= nverts:
			f[i] = uint32(n - 1)
		case n < 0 && -n <= nverts:
			f[i] = uint32(nverts + n)
		default:
			return nil, fmt.Errorf("face index %d out of range (%d vertices)", n, nverts)
		}
	}
	return f, nil
}

// WriteOBJ writes the mesh as Wavefront OBJ with 1-based face indices.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
	}
	for _, f := range m.Faces {
		bw.WriteString("f")
		for _, idx := range f {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatUint(uint64(idx)+1, 10))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write obj: %w", err)
	}
	return nil
}

// formatFloat prints 8 decimal places and trims trailing zeros.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 8, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}
