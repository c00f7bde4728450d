package retrieval

import "math"

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of mismatched length or zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// hasUsableEmbedding reports whether a candidate can participate in dense
// scoring. Missing or zero-norm embeddings are excluded, not scored as 0.
func hasUsableEmbedding(c Candidate) bool {
	if len(c.Embedding) == 0 {
		return false
	}
	for _, v := range c.Embedding {
		if v != 0 {
			return true
		}
	}
	return false
}
