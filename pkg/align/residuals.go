package align

import "math"

// Residuals returns the Euclidean distance between each transformed landmark
// and its reference counterpart. The sets must have equal length.
func Residuals(transformed, reference PointSet) []float64 {
	out := make([]float64, len(transformed))
	for i := range transformed {
		out[i] = transformed[i].Sub(reference[i]).Length()
	}
	return out
}

// RMSD returns the root mean square of the residuals, or 0 for none.
func RMSD(residuals []float64) float64 {
	if len(residuals) == 0 {
		return 0
	}
	var sum float64
	for _, r := range residuals {
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(residuals)))
}

// MaxResidual returns the largest residual, or 0 for none.
func MaxResidual(residuals []float64) float64 {
	var largest float64
	for _, r := range residuals {
		largest = math.Max(largest, r)
	}
	return largest
}
