// Package vector provides similarity helpers, the immutable corpus, and embedding persistence.
package vector

import "math"

// InnerProduct returns the inner product of two vectors, accumulated in float64.
// Vectors of different length yield 0.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|) in [-1, 1].
// It returns 0 when either norm is zero or the lengths differ, never NaN.
func CosineSimilarity(a, b []float32) float64 {
	return CosineWithNorms(a, b, L2Norm(a), L2Norm(b))
}

// CosineWithNorms is CosineSimilarity with precomputed norms.
func CosineWithNorms(a, b []float32, normA, normB float64) float64 {
	if normA == 0 || normB == 0 || len(a) != len(b) {
		return 0
	}
	sim := InnerProduct(a, b) / (normA * normB)
	if math.IsNaN(sim) {
		return 0
	}
	return math.Max(-1, math.Min(1, sim))
}
