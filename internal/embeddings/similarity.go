package embeddings

import (
	"fmt"
	"math"
	"sort"
)

// CosineSimilarity returns the cosine of the angle between a and b,
// clamped to [-1, 1].
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have same length: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vectors cannot be empty")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("vector norm cannot be zero")
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, similarity)), nil
}

// Scored pairs a candidate index with its similarity to a query
type Scored struct {
	Index      int
	Similarity float64
}

// Rank scores every candidate against query and returns them most similar
// first. Candidates whose similarity cannot be computed are left out.
func Rank(query []float64, candidates [][]float64) []Scored {
	out := make([]Scored, 0, len(candidates))
	for i, c := range candidates {
		sim, err := CosineSimilarity(query, c)
		if err != nil {
			continue
		}
		out = append(out, Scored{Index: i, Similarity: sim})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out
}

// Validate rejects empty vectors and vectors holding NaN or Inf.
func Validate(vec []float64) error {
	if len(vec) == 0 {
		return fmt.Errorf("embedding vector is empty")
	}
	for i, val := range vec {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("embedding contains invalid value at index %d: %v", i, val)
		}
	}
	return nil
}
