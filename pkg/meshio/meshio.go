// Package meshio reads and writes mesh files. It is the storage side of the
// batch driver; the alignment core never touches files.
package meshio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deadsy/sdfx/render"

	"github.com/chazu/meshalign/pkg/mesh"
)

// Format is a mesh file format.
type Format string

const (
	FormatOBJ Format = "obj"
	FormatSTL Format = "stl"
)

// ErrUnsupportedFormat is returned for extensions without a reader or writer.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return FormatOBJ, nil
	case ".stl":
		return FormatSTL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatOBJ, FormatSTL:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// WithFormat replaces the extension of path with the one for f.
func WithFormat(path string, f Format) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + string(f)
}

// Load reads a mesh file. Only OBJ input is supported. Meshes without a name
// are named after the file.
func Load(path string) (*mesh.Mesh, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format != FormatOBJ {
		return nil, fmt.Errorf("load %s: %w: %s input", path, ErrUnsupportedFormat, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// Save writes a mesh file in the format implied by the extension.
func Save(path string, m *mesh.Mesh) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatSTL:
		return SaveSTL(path, m)
	default:
		return SaveOBJ(path, m)
	}
}

// SaveOBJ writes m to path as OBJ.
func SaveOBJ(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, m); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}

// SaveSTL writes m to path as binary STL. Polygons are fan-triangulated.
func SaveSTL(path string, m *mesh.Mesh) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := render.SaveSTL(path, m.Triangles()); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
