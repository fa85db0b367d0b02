package align

import (
	"errors"
	"math"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"
)

// DefaultDegenerateTolerance is the smallest accepted ratio between the second
// and the first singular value of the cross-covariance. Below it the landmark
// configuration is treated as colinear.
const DefaultDegenerateTolerance = 1e-9

// coincidentTolerance bounds the RMS spread of a centered point set, relative
// to the magnitude of its coordinates, below which all points coincide.
const coincidentTolerance = 1e-12

var errSVDFailed = errors.New("singular value decomposition did not converge")

// Aligner computes rigid transforms between landmark sets. The zero value is
// ready to use. An Aligner holds no per-call state and may be shared between
// goroutines.
type Aligner struct {
	// DegenerateTolerance overrides DefaultDegenerateTolerance when positive.
	DegenerateTolerance float64

	// Logger receives the intermediate values of each fit at debug level.
	// Nil disables logging.
	Logger *log.Logger
}

// ComputeTransform returns the rigid transform that best maps model onto
// reference in the least-squares sense, using uniform weights.
func ComputeTransform(model, reference PointSet) (RigidTransform, error) {
	var a Aligner
	return a.ComputeTransform(model, reference)
}

// ComputeWeightedTransform is ComputeTransform with one non-negative weight
// per landmark pair.
func ComputeWeightedTransform(model, reference PointSet, weights []float64) (RigidTransform, error) {
	var a Aligner
	return a.ComputeWeightedTransform(model, reference, weights)
}

// ComputeTransform returns the rigid transform that best maps model onto
// reference in the least-squares sense, using uniform weights.
func (a *Aligner) ComputeTransform(model, reference PointSet) (RigidTransform, error) {
	return a.ComputeWeightedTransform(model, reference, nil)
}

// ComputeWeightedTransform returns the rigid transform minimizing
// Σ wᵢ·|R·(mᵢ − c_m) + c_r − rᵢ|². A nil weights slice means uniform weights.
//
// Errors are *AlignmentError values: InvalidInput for malformed sets or
// weights, DegenerateConfiguration when the landmarks are coincident or
// colinear, NumericalFailure when the decomposition fails.
func (a *Aligner) ComputeWeightedTransform(model, reference PointSet, weights []float64) (RigidTransform, error) {
	if err := validateInput(model, reference, weights); err != nil {
		return RigidTransform{}, err
	}

	cm := model.WeightedCentroid(weights)
	cr := reference.WeightedCentroid(weights)
	pm := model.Centered(cm)
	pr := reference.Centered(cr)
	a.debug("centroids", "model", cm, "reference", cr)
	a.debug("centered", "model", pm, "reference", pr)

	if coincident(model, pm, weights) {
		return RigidTransform{}, degenerate("model landmarks coincide")
	}
	if coincident(reference, pr, weights) {
		return RigidTransform{}, degenerate("reference landmarks coincide")
	}

	h := crossCovariance(pm, pr, weights)
	a.debug("cross-covariance", "H", denseToMat3(h))

	var svd mat.SVD
	if !svd.Factorize(h, mat.SVDFull) {
		return RigidTransform{}, numericalFailure(errSVDFailed, "cross-covariance %v", denseToMat3(h))
	}
	sv := svd.Values(nil)
	a.debug("singular values", "S", sv)
	for _, s := range sv {
		if !isFinite(s) {
			return RigidTransform{}, numericalFailure(nil, "non-finite singular values %v", sv)
		}
	}
	if sv[0] <= 0 || sv[1] <= a.degenerateTolerance()*sv[0] {
		return RigidTransform{}, degenerate("cross-covariance rank < 2 (singular values %v)", sv)
	}

	var u, v, r mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	r.Mul(&v, u.T())

	// A negative determinant is a reflection. Flipping the axis of the
	// smallest singular value gives the best proper rotation.
	if mat.Det(&r) < 0 {
		a.debug("reflection corrected", "det", mat.Det(&r))
		for i := 0; i < 3; i++ {
			v.Set(i, 2, -v.At(i, 2))
		}
		r.Mul(&v, u.T())
	}

	rot := denseToMat3(&r)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !isFinite(rot[i][j]) {
				return RigidTransform{}, numericalFailure(nil, "non-finite rotation %v", rot)
			}
		}
	}
	a.debug("rotation", "R", rot, "det", rot.Det())

	return RigidTransform{
		Rotation:          rot,
		ModelCentroid:     cm,
		ReferenceCentroid: cr,
	}, nil
}

func (a *Aligner) degenerateTolerance() float64 {
	if a.DegenerateTolerance > 0 {
		return a.DegenerateTolerance
	}
	return DefaultDegenerateTolerance
}

func (a *Aligner) debug(msg string, keyvals ...any) {
	if a.Logger != nil {
		a.Logger.Debug(msg, keyvals...)
	}
}

func validateInput(model, reference PointSet, weights []float64) error {
	if len(model) != len(reference) {
		return invalidInput("model has %d points, reference has %d", len(model), len(reference))
	}
	if len(model) < MinPoints {
		return invalidInput("need at least %d point pairs, got %d", MinPoints, len(model))
	}
	if i := model.firstNonFinite(); i >= 0 {
		return invalidInput("model point %d is not finite: %v", i, model[i])
	}
	if i := reference.firstNonFinite(); i >= 0 {
		return invalidInput("reference point %d is not finite: %v", i, reference[i])
	}
	if weights == nil {
		return nil
	}
	if len(weights) != len(model) {
		return invalidInput("%d weights for %d point pairs", len(weights), len(model))
	}
	positive := 0
	for i, w := range weights {
		if !isFinite(w) || w < 0 {
			return invalidInput("weight %d is %v, must be finite and non-negative", i, w)
		}
		if w > 0 {
			positive++
		}
	}
	if positive < MinPoints {
		return invalidInput("need at least %d positively weighted pairs, got %d", MinPoints, positive)
	}
	return nil
}

// crossCovariance returns H = Σ wᵢ·pmᵢ⊗prᵢ as a 3x3 matrix.
func crossCovariance(pm, pr PointSet, weights []float64) *mat.Dense {
	m := pm.Dense()
	if weights != nil {
		n, _ := m.Dims()
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				m.Set(i, j, m.At(i, j)*weights[i])
			}
		}
	}
	h := mat.NewDense(3, 3, nil)
	h.Mul(m.T(), pr.Dense())
	return h
}

// coincident reports whether the centered set has vanishing spread relative
// to the magnitude of the original coordinates.
func coincident(orig, centered PointSet, weights []float64) bool {
	var scale, spread, total float64
	for i, p := range orig {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w == 0 {
			continue
		}
		scale = math.Max(scale, math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))))
		spread += w * centered[i].Dot(centered[i])
		total += w
	}
	rms := math.Sqrt(spread / total)
	return rms <= coincidentTolerance*(1+scale)
}

func denseToMat3(d *mat.Dense) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}
