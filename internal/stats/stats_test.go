package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryStats_ZeroOne(t *testing.T) {
	s := SummaryStats([]float64{1, 0})

	assert.Equal(t, 0.5, s.Mean)
	assert.Equal(t, 0.5, s.Std)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 1.0, s.Max)
	assert.Equal(t, 0.5, s.Median)
	assert.Equal(t, 0.0, s.Skewness)
	assert.Equal(t, 1.0, s.Kurtosis)
	assert.Equal(t, []float64{0, 1}, s.Distribution)
}

func TestSummaryStats_Empty(t *testing.T) {
	s := SummaryStats(nil)
	assert.True(t, s.Empty())
	_, ok := s.Attr(AttrMean)
	assert.False(t, ok)
	assert.Equal(t, "SummaryStats(empty)", s.String())
}

func TestSummaryStats_SingleValue(t *testing.T) {
	s := SummaryStats([]float64{3})
	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 0.0, s.Skewness)
	assert.Equal(t, 0.0, s.Kurtosis)
}

func TestSummary_Attr(t *testing.T) {
	s := SummaryStats([]float64{1, 2, 3, 10})
	for _, name := range []string{AttrMean, AttrStd, AttrMin, AttrMax, AttrMedian, AttrSkewness, AttrKurtosis} {
		_, ok := s.Attr(name)
		assert.True(t, ok, name)
	}
	_, ok := s.Attr("mode")
	assert.False(t, ok)

	median, _ := s.Attr(AttrMedian)
	assert.Equal(t, 2.5, median)
}

func TestScalar(t *testing.T) {
	assert.Nil(t, Null().Ptr())
	require.NotNil(t, Num(2).Ptr())
	assert.Equal(t, 2.0, *Num(2).Ptr())
	assert.Equal(t, "None", Null().String())
	assert.Equal(t, "2", Num(2).String())
}

func TestAggregations_Empty(t *testing.T) {
	for name, f := range map[string]func([]float64) (float64, bool){
		"mean": Mean, "std": Std, "skewness": Skewness, "kurtosis": Kurtosis,
		"median": Median, "min": Min, "max": Max,
	} {
		_, ok := f(nil)
		assert.False(t, ok, name)
	}
	assert.Zero(t, Sum(nil))
	assert.Zero(t, Moment([]float64{4}, 2))
}

func TestMoments_Population(t *testing.T) {
	// mean 4, deviations -3 -2 -1 6
	values := []float64{1, 2, 3, 10}
	assert.InDelta(t, 12.5, Moment(values, 2), 1e-12)
	assert.InDelta(t, 45.0, Moment(values, 3), 1e-12)
	assert.InDelta(t, 348.5, Moment(values, 4), 1e-12)

	std, ok := Std(values)
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(12.5), std, 1e-12)

	skew, _ := Skewness(values)
	assert.InDelta(t, 45/math.Pow(12.5, 1.5), skew, 1e-12)

	kurt, _ := Kurtosis(values)
	assert.InDelta(t, 348.5/(12.5*12.5), kurt, 1e-12)

	mean, _ := Mean(values)
	assert.Equal(t, 4.0, mean)
}

func TestEntropy(t *testing.T) {
	_, ok := Entropy(nil)
	assert.False(t, ok)

	e, ok := Entropy([]float64{1, 1})
	require.True(t, ok)
	assert.InDelta(t, math.Log(2), e, 1e-12)

	e, _ = Entropy([]float64{5})
	assert.Zero(t, e)
}

func TestNormalizedEntropy(t *testing.T) {
	e, ok := NormalizedEntropy([]float64{2, 2, 2})
	require.True(t, ok)
	assert.InDelta(t, 1, e, 1e-12)

	e, ok = NormalizedEntropy([]float64{4})
	require.True(t, ok)
	assert.Zero(t, e)

	_, ok = NormalizedEntropy(nil)
	assert.False(t, ok)
}

func TestCosineDistance(t *testing.T) {
	d, ok := CosineDistance([]float64{1, 0}, []float64{1, 0})
	require.True(t, ok)
	assert.InDelta(t, 0, d, 1e-12)

	d, _ = CosineDistance([]float64{1, 0}, []float64{0, 1})
	assert.InDelta(t, 1, d, 1e-12)

	_, ok = CosineDistance([]float64{1}, []float64{1, 2})
	assert.False(t, ok)
	_, ok = CosineDistance([]float64{0, 0}, []float64{1, 2})
	assert.False(t, ok)
}
