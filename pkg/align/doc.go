// Package align computes the rigid transform (rotation + translation, no
// scale, no reflection) that best maps an ordered set of model-frame
// landmarks onto their reference-frame counterparts, and applies it to
// points and meshes.
//
// The fit is the weighted Kabsch / orthogonal Procrustes solution: both sets
// are centered on their centroids, the 3x3 cross-covariance H = Σ wᵢ·pᵢ⊗qᵢ is
// decomposed as H = U·S·Vᵗ and the rotation is R = V·Uᵗ, with the last column
// of V negated when that product is a reflection. A point v maps to
//
//	v' = R·(v − c_m) + c_r
//
// Everything in this package is a pure function of its inputs and is safe
// for concurrent use.
package align
