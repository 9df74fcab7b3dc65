package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values.
// ok is false for an empty slice.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}

// Moment calculates the n-th population central moment.
// Fewer than two values have a moment of 0.
func Moment(values []float64, n int) float64 {
	if len(values) <= 1 {
		return 0
	}
	return stat.Moment(float64(n), values, nil)
}

// Std calculates the population standard deviation
func Std(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return math.Sqrt(Moment(values, 2)), true
}

// Skewness calculates the population skewness m3 / m2^1.5
func Skewness(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	denom := math.Pow(Moment(values, 2), 1.5)
	if denom == 0 {
		return 0, true
	}
	return Moment(values, 3) / denom, true
}

// Kurtosis calculates the population (non-excess) kurtosis m4 / m2^2
func Kurtosis(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	m2 := Moment(values, 2)
	denom := m2 * m2
	if denom == 0 {
		return 0, true
	}
	return Moment(values, 4) / denom, true
}

// Median calculates the median value using the mean of the middle two
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	// Create a copy to avoid modifying the original slice
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	return (sorted[n/2] + sorted[(n-1)/2]) / 2, true
}

// Min returns the minimum value
func Min(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

// Max returns the maximum value
func Max(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

// Sum returns the sum of all values
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}
