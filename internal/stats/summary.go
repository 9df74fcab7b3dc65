package stats

import (
	"fmt"
	"sort"
)

// Value is a raw per-bin indicator value: a Scalar or a *Summary.
// A nil Value stands for "no value".
type Value interface {
	statValue()
}

// Scalar is a nullable number
type Scalar struct {
	V     float64
	Valid bool
}

func (Scalar) statValue() {}

// Num returns a valid scalar
func Num(v float64) Scalar {
	return Scalar{V: v, Valid: true}
}

// Null returns an absent scalar
func Null() Scalar {
	return Scalar{}
}

// Ptr returns the scalar as a pointer, nil when absent
func (s Scalar) Ptr() *float64 {
	if !s.Valid {
		return nil
	}
	v := s.V
	return &v
}

func (s Scalar) String() string {
	if !s.Valid {
		return "None"
	}
	return fmt.Sprintf("%g", s.V)
}

// Summary attribute names, in the order they are reported
const (
	AttrMean     = "mean"
	AttrStd      = "std"
	AttrMin      = "min"
	AttrMax      = "max"
	AttrMedian   = "median"
	AttrSkewness = "skewness"
	AttrKurtosis = "kurtosis"
)

// Summary stores a numeric distribution with its descriptive statistics.
// An empty summary has no attributes.
type Summary struct {
	Mean         float64
	Std          float64
	Min          float64
	Max          float64
	Median       float64
	Skewness     float64
	Kurtosis     float64
	Distribution []float64 // Sorted ascending
}

func (*Summary) statValue() {}

// Empty reports whether the summary was built from no data
func (s *Summary) Empty() bool {
	return s == nil || len(s.Distribution) == 0
}

// Attr returns the named attribute, false when the summary is empty or the
// name is unknown
func (s *Summary) Attr(name string) (float64, bool) {
	if s.Empty() {
		return 0, false
	}
	switch name {
	case AttrMean:
		return s.Mean, true
	case AttrStd:
		return s.Std, true
	case AttrMin:
		return s.Min, true
	case AttrMax:
		return s.Max, true
	case AttrMedian:
		return s.Median, true
	case AttrSkewness:
		return s.Skewness, true
	case AttrKurtosis:
		return s.Kurtosis, true
	}
	return 0, false
}

func (s *Summary) String() string {
	if s.Empty() {
		return "SummaryStats(empty)"
	}
	return fmt.Sprintf("SummaryStats(mean=%g, std=%g, min=%g, max=%g, median=%g, skewness=%g, kurtosis=%g, n=%d)",
		s.Mean, s.Std, s.Min, s.Max, s.Median, s.Skewness, s.Kurtosis, len(s.Distribution))
}

// SummaryStats builds a Summary from data
func SummaryStats(data []float64) *Summary {
	if len(data) == 0 {
		return &Summary{Distribution: []float64{}}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	s := &Summary{Distribution: sorted}
	s.Mean, _ = Mean(sorted)
	s.Std, _ = Std(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Median, _ = Median(sorted)
	s.Skewness, _ = Skewness(sorted)
	s.Kurtosis, _ = Kurtosis(sorted)
	return s
}
