package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Entropy calculates the Shannon entropy (natural log) of frequency counts.
// ok is false for empty counts.
func Entropy(counts []float64) (float64, bool) {
	if len(counts) == 0 {
		return 0, false
	}

	n := floats.Sum(counts)
	if n == 0 {
		return 0, true
	}

	p := make([]float64, len(counts))
	floats.ScaleTo(p, 1/n, counts)
	return stat.Entropy(p), true
}

// NormalizedEntropy divides the entropy by log(n) where n is the number of
// categories, giving a value between 0 and 1. With a single category the raw
// entropy is returned.
func NormalizedEntropy(counts []float64) (float64, bool) {
	entropy, ok := Entropy(counts)
	if !ok || len(counts) <= 1 {
		return entropy, ok
	}
	return entropy / math.Log(float64(len(counts))), true
}

// CosineDistance returns 1 - cos(a, b) for two equally sized frequency vectors
func CosineDistance(a, b []float64) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	normA, normB := floats.Norm(a, 2), floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return 1 - floats.Dot(a, b)/(normA*normB), true
}
