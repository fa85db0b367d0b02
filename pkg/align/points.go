package align

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MinPoints is the smallest landmark count for which a 3-D rotation is
// well-posed.
const MinPoints = 3

// Point3 is a 3-D coordinate.
type Point3 = v3.Vec

// PointSet is an ordered landmark set. Index i of a model set corresponds to
// index i of the reference set it is aligned against.
type PointSet []Point3

// PointSetFrom builds a PointSet from coordinate triples.
func PointSetFrom(coords ...[3]float64) PointSet {
	ps := make(PointSet, len(coords))
	for i, c := range coords {
		ps[i] = Point3{X: c[0], Y: c[1], Z: c[2]}
	}
	return ps
}

// Centroid returns the arithmetic mean of the points. An empty set returns
// the origin.
func (ps PointSet) Centroid() Point3 {
	return ps.WeightedCentroid(nil)
}

// WeightedCentroid returns the weighted mean of the points. A nil weights
// slice means uniform weights.
func (ps PointSet) WeightedCentroid(weights []float64) Point3 {
	if len(ps) == 0 {
		return Point3{}
	}
	xs, ys, zs := ps.columns()
	return Point3{
		X: stat.Mean(xs, weights),
		Y: stat.Mean(ys, weights),
		Z: stat.Mean(zs, weights),
	}
}

// Centered returns a copy of the set translated so that c is the origin.
func (ps PointSet) Centered(c Point3) PointSet {
	out := make(PointSet, len(ps))
	for i, p := range ps {
		out[i] = p.Sub(c)
	}
	return out
}

// Dense returns the points as an N×3 matrix, one point per row. It panics on
// an empty set, as mat.NewDense does.
func (ps PointSet) Dense() *mat.Dense {
	data := make([]float64, 0, 3*len(ps))
	for _, p := range ps {
		data = append(data, p.X, p.Y, p.Z)
	}
	return mat.NewDense(len(ps), 3, data)
}

func (ps PointSet) columns() (xs, ys, zs []float64) {
	xs = make([]float64, len(ps))
	ys = make([]float64, len(ps))
	zs = make([]float64, len(ps))
	for i, p := range ps {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	return xs, ys, zs
}

// firstNonFinite returns the index of the first point with a NaN or infinite
// coordinate, or -1.
func (ps PointSet) firstNonFinite() int {
	for i, p := range ps {
		if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Z) {
			return i
		}
	}
	return -1
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
