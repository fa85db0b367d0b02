// Package catalog loads the landmark catalog that drives a batch run: one
// reference landmark set and, per mesh file, the matching model landmarks.
// The catalog is plain data; the alignment core never sees it.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/chazu/meshalign/pkg/align"
)

//go:embed default.toml
var defaultCatalog []byte

// Landmarks is an ordered landmark set as it appears in the catalog.
type Landmarks struct {
	Labels []string    `toml:"labels,omitempty"`
	Points [][]float64 `toml:"points"`
}

// Entry pairs a mesh file with its model-frame landmarks.
type Entry struct {
	Name    string      `toml:"name,omitempty"`
	File    string      `toml:"file"`
	Points  [][]float64 `toml:"points"`
	Weights []float64   `toml:"weights,omitempty"`
}

// Catalog is a reference landmark set plus the meshes to align against it.
type Catalog struct {
	Reference Landmarks `toml:"reference"`
	Meshes    []Entry   `toml:"mesh"`
}

// Default returns the built-in catalog of the facial-expression scan series.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// DefaultTOML returns the source of the built-in catalog.
func DefaultTOML() []byte {
	return bytes.Clone(defaultCatalog)
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a TOML catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the structure of the catalog and reports every problem
// found. Geometric degeneracy is left to the aligner.
func (c *Catalog) Validate() error {
	var errs []error

	n := len(c.Reference.Points)
	if n < align.MinPoints {
		errs = append(errs, fmt.Errorf("reference: need at least %d points, got %d", align.MinPoints, n))
	}
	if err := checkPoints("reference", c.Reference.Points); err != nil {
		errs = append(errs, err)
	}
	if l := len(c.Reference.Labels); l != 0 && l != n {
		errs = append(errs, fmt.Errorf("reference: %d labels for %d points", l, n))
	}
	if len(c.Meshes) == 0 {
		errs = append(errs, errors.New("no [[mesh]] entries"))
	}

	seen := make(map[string]int, len(c.Meshes))
	for i, e := range c.Meshes {
		where := fmt.Sprintf("mesh[%d]", i)
		if e.File == "" {
			errs = append(errs, fmt.Errorf("%s: missing file", where))
		} else {
			where = fmt.Sprintf("mesh[%d] (%s)", i, e.File)
			base := filepath.Base(e.File)
			if j, dup := seen[base]; dup {
				errs = append(errs, fmt.Errorf("%s: output name %q collides with mesh[%d]", where, base, j))
			}
			seen[base] = i
		}
		if len(e.Points) != n {
			errs = append(errs, fmt.Errorf("%s: %d points, reference has %d", where, len(e.Points), n))
		}
		if err := checkPoints(where, e.Points); err != nil {
			errs = append(errs, err)
		}
		if e.Weights != nil && len(e.Weights) != len(e.Points) {
			errs = append(errs, fmt.Errorf("%s: %d weights for %d points", where, len(e.Weights), len(e.Points)))
		}
		for j, w := range e.Weights {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				errs = append(errs, fmt.Errorf("%s: weight %d is %v", where, j, w))
			}
		}
	}
	return errors.Join(errs...)
}

func checkPoints(where string, pts [][]float64) error {
	var errs []error
	for i, p := range pts {
		if len(p) != 3 {
			errs = append(errs, fmt.Errorf("%s: point %d has %d coordinates, want 3", where, i, len(p)))
			continue
		}
		for _, c := range p {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				errs = append(errs, fmt.Errorf("%s: point %d is not finite", where, i))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// ReferenceSet returns the reference landmarks as a point set.
func (c *Catalog) ReferenceSet() align.PointSet {
	return toPointSet(c.Reference.Points)
}

// PointSet returns the entry's model landmarks as a point set.
func (e Entry) PointSet() align.PointSet {
	return toPointSet(e.Points)
}

// Label returns the display name of the entry: its name, or the file's base
// name without extension.
func (e Entry) Label() string {
	if e.Name != "" {
		return e.Name
	}
	base := filepath.Base(e.File)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Lookup returns the entry whose name or file base name matches key.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	for _, e := range c.Meshes {
		if e.Name == key || e.File == key || filepath.Base(e.File) == key {
			return e, true
		}
	}
	return Entry{}, false
}

func toPointSet(pts [][]float64) align.PointSet {
	ps := make(align.PointSet, len(pts))
	for i, p := range pts {
		if len(p) == 3 {
			ps[i] = align.Point3{X: p[0], Y: p[1], Z: p[2]}
		}
	}
	return ps
}
