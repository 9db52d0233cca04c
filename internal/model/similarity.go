// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import "math"

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// It returns 0 when the vectors differ in length, are empty, or either has
// zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, sim))
}

// MeanPool averages a token-by-dimension matrix into a single vector. Rows
// whose width differs from the first row are skipped.
func MeanPool(rows [][]float32) []float32 {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	dim := len(rows[0])
	sum := make([]float64, dim)
	n := 0
	for _, row := range rows {
		if len(row) != dim {
			continue
		}
		for i, v := range row {
			sum[i] += float64(v)
		}
		n++
	}
	out := make([]float32, dim)
	for i := range sum {
		out[i] = float32(sum[i] / float64(n))
	}
	return out
}
