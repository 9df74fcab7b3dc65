package engine

import (
	"fmt"

	"github.com/jengzang/cdr-indicators/internal/stats"
)

// Datatype is the statistical shape of an indicator's raw output
type Datatype uint8

const (
	// Auto infers the datatype from the values
	Auto Datatype = iota
	Scalar
	SummaryStats
	DistributionScalar
	DistributionSummaryStats
)

func (d Datatype) String() string {
	switch d {
	case Scalar:
		return "scalar"
	case SummaryStats:
		return "summarystats"
	case DistributionScalar:
		return "distribution_scalar"
	case DistributionSummaryStats:
		return "distribution_summarystats"
	default:
		return "auto"
	}
}

// SummaryMode selects how much of a distribution is reported
type SummaryMode string

const (
	SummaryDefault  SummaryMode = "default"
	SummaryExtended SummaryMode = "extended"
	SummaryNone     SummaryMode = "none"
)

var summaryModes = []string{"default", "extended", "none"}

// ParseSummaryMode accepts default, extended and none. "" means default.
func ParseSummaryMode(s string) (SummaryMode, error) {
	switch s {
	case "":
		return SummaryDefault, nil
	case "default", "extended", "none":
		return SummaryMode(s), nil
	}
	return "", &Error{
		Kind:     KindInvalidSummaryMode,
		Msg:      fmt.Sprintf("%q is not a valid summary type", s),
		Value:    s,
		Accepted: summaryModes,
	}
}

var summaryKeys = map[SummaryMode][]string{
	SummaryDefault: {stats.AttrMean, stats.AttrStd},
	SummaryExtended: {
		stats.AttrMean, stats.AttrStd, stats.AttrMedian, stats.AttrSkewness,
		stats.AttrKurtosis, stats.AttrMin, stats.AttrMax,
	},
}

// InferType returns the datatype of a single raw value. None is a scalar.
func InferType(v stats.Value) Datatype {
	if _, ok := v.(*stats.Summary); ok {
		return SummaryStats
	}
	return Scalar
}

// InferDistribution returns the datatype of a list of raw values. The first
// non-None element decides; an empty or all-None list is a distribution of
// scalars. Every other element must be of the same kind.
func InferDistribution(values []stats.Value) (Datatype, error) {
	datatype := DistributionScalar
	for _, v := range values {
		if isNone(v) {
			continue
		}
		if InferType(v) == SummaryStats {
			datatype = DistributionSummaryStats
		}
		break
	}
	if err := checkElements(values, datatype); err != nil {
		return Auto, err
	}
	return datatype, nil
}

func checkElements(values []stats.Value, datatype Datatype) error {
	for i, v := range values {
		if isNone(v) {
			continue
		}
		switch v.(type) {
		case *stats.Summary:
			if datatype != DistributionSummaryStats {
				return typeMismatch(i, v, datatype)
			}
		case stats.Scalar:
			if datatype != DistributionScalar {
				return typeMismatch(i, v, datatype)
			}
		}
	}
	return nil
}

func isNone(v stats.Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case stats.Scalar:
		return !x.Valid
	case *stats.Summary:
		return x == nil
	}
	return false
}

// SummarizeValue reduces a single raw value. Scalars pass through as a
// *float64 (nil for None).
func SummarizeValue(v stats.Value, mode SummaryMode, datatype Datatype) (any, error) {
	if datatype == Auto {
		datatype = InferType(v)
	}

	switch datatype {
	case Scalar:
		s, ok := v.(stats.Scalar)
		if !ok && !isNone(v) {
			return nil, typeMismatch(0, v, Scalar)
		}
		return s.Ptr(), nil

	case SummaryStats:
		s, ok := v.(*stats.Summary)
		if !ok && !isNone(v) {
			return nil, typeMismatch(0, v, SummaryStats)
		}
		if mode == SummaryNone {
			if s == nil {
				return []float64{}, nil
			}
			return s.Distribution, nil
		}
		keys, ok := summaryKeys[mode]
		if !ok {
			return nil, invalidSummaryMode(mode, datatype)
		}
		t := NewTree()
		for _, key := range keys {
			var attr *float64
			if f, ok := s.Attr(key); ok {
				attr = &f
			}
			t.Set(key, attr)
		}
		return t, nil
	}

	return nil, invalidSummaryMode(mode, datatype)
}

// SummarizeDistribution reduces one raw value per bin
func SummarizeDistribution(values []stats.Value, mode SummaryMode, datatype Datatype) (any, error) {
	var err error
	if datatype == Auto {
		if datatype, err = InferDistribution(values); err != nil {
			return nil, err
		}
	} else if err = checkElements(values, datatype); err != nil {
		return nil, err
	}

	switch datatype {
	case DistributionScalar:
		switch mode {
		case SummaryDefault:
			return defaultStats(scalars(values)), nil
		case SummaryNone:
			raw := make([]*float64, len(values))
			for i, v := range values {
				if s, ok := v.(stats.Scalar); ok {
					raw[i] = s.Ptr()
				}
			}
			return raw, nil
		}

	case DistributionSummaryStats:
		if mode == SummaryNone {
			dists := make([][]float64, 0, len(values))
			for _, v := range values {
				if s, ok := v.(*stats.Summary); ok && s != nil {
					dists = append(dists, s.Distribution)
				} else {
					dists = append(dists, []float64{})
				}
			}
			return dists, nil
		}
		keys, ok := summaryKeys[mode]
		if !ok {
			break
		}
		t := NewTree()
		for _, key := range keys {
			var attrs []float64
			for _, v := range values {
				if s, ok := v.(*stats.Summary); ok {
					if f, ok := s.Attr(key); ok {
						attrs = append(attrs, f)
					}
				}
			}
			t.Set(key, defaultStats(attrs))
		}
		return t, nil
	}

	return nil, invalidSummaryMode(mode, datatype)
}

func scalars(values []stats.Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if s, ok := v.(stats.Scalar); ok && s.Valid {
			out = append(out, s.V)
		}
	}
	return out
}

// defaultStats reports {mean, std}, both null for no data
func defaultStats(data []float64) *Tree {
	t := NewTree()
	mean, ok := stats.Mean(data)
	if !ok {
		t.Set(stats.AttrMean, (*float64)(nil))
		t.Set(stats.AttrStd, (*float64)(nil))
		return t
	}
	std, _ := stats.Std(data)
	t.Set(stats.AttrMean, &mean)
	t.Set(stats.AttrStd, &std)
	return t
}
