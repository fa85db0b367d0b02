// Package pipeline composes landmark fitting and mesh transformation into a
// single call that normalizes one mesh into the reference frame.
package pipeline

import (
	"github.com/chazu/meshalign/pkg/align"
	"github.com/chazu/meshalign/pkg/mesh"
)

// Result is a normalized mesh together with the fit that produced it.
type Result struct {
	Mesh      *mesh.Mesh
	Transform align.RigidTransform

	// NormalizedModel is the model landmark set mapped through Transform. For
	// an exact fit it coincides with the reference set.
	NormalizedModel align.PointSet
	Residuals       []float64 // per-landmark distance to the reference set
	RMSD            float64
}

// Pipeline normalizes meshes. The zero value uses a default Aligner. A
// Pipeline holds no per-call state and may be shared between goroutines.
type Pipeline struct {
	Aligner align.Aligner
}

// New returns a pipeline using the given aligner.
func New(a align.Aligner) *Pipeline {
	return &Pipeline{Aligner: a}
}

// Align is AlignDetailed without the diagnostics.
func (p *Pipeline) Align(m *mesh.Mesh, model, reference align.PointSet) (*mesh.Mesh, error) {
	res, err := p.AlignDetailed(m, model, reference)
	if err != nil {
		return nil, err
	}
	return res.Mesh, nil
}

// AlignDetailed fits model onto reference and maps every vertex of m into the
// reference frame. On failure the *align.AlignmentError is returned unchanged
// and no mesh is produced. m is never modified.
func (p *Pipeline) AlignDetailed(m *mesh.Mesh, model, reference align.PointSet) (*Result, error) {
	return p.AlignWeighted(m, model, reference, nil)
}

// AlignWeighted is AlignDetailed with per-landmark weights; nil means uniform.
// A nil mesh is an InvalidInput error.
func (p *Pipeline) AlignWeighted(m *mesh.Mesh, model, reference align.PointSet, weights []float64) (*Result, error) {
	if m == nil {
		return nil, &align.AlignmentError{Kind: align.InvalidInput, Message: "nil mesh"}
	}
	t, err := p.Aligner.ComputeWeightedTransform(model, reference, weights)
	if err != nil {
		return nil, err
	}
	normalized := t.ApplyAll(model)
	residuals := align.Residuals(normalized, reference)
	return &Result{
		Mesh:            align.ApplyMesh(m, t),
		Transform:       t,
		NormalizedModel: normalized,
		Residuals:       residuals,
		RMSD:            align.RMSD(residuals),
	}, nil
}

// Align normalizes m with a default pipeline.
func Align(m *mesh.Mesh, model, reference align.PointSet) (*mesh.Mesh, error) {
	var p Pipeline
	return p.Align(m, model, reference)
}
