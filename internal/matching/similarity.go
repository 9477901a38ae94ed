package matching

import "math"

// CosineSimilarity returns the normalized dot product of two embedding
// vectors, in [-1, 1]. Nil, empty, or length-mismatched inputs yield 0, as
// does either vector having a zero norm.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
