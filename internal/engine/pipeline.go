package engine

import (
	"fmt"
	"slices"

	"github.com/jengzang/cdr-indicators/internal/stats"
)

// Reducer computes the raw value of one bin. It may return nil for None.
type Reducer func(bin Bin, u *User) (stats.Value, error)

// Pipeline evaluates a reducer over every bin and parameter combination of
// a subject and assembles the summarized values into a result tree.
type Pipeline struct {
	Name     string
	Using    Source
	Binning  bool
	Reduce   Reducer
	Datatype Datatype
	Summary  SummaryMode

	// Interactions is the default interaction dimension. A nil slice means
	// the pipeline is not divided by interaction.
	Interactions []string
}

// Options are the per-call settings of an evaluation
type Options struct {
	GroupBy      GroupBy
	Summary      SummaryMode
	SplitWeek    bool
	SplitDay     bool
	FilterEmpty  bool
	Interactions []string
	Datatype     Datatype
}

// Option overrides one evaluation setting
type Option func(*Options)

// WithGroupBy sets the grouping unit
func WithGroupBy(g GroupBy) Option {
	return func(o *Options) { o.GroupBy = g }
}

// WithSummary sets the summary mode
func WithSummary(m SummaryMode) Option {
	return func(o *Options) { o.Summary = m }
}

// SplitWeek adds weekday and weekend to the part of week dimension
func SplitWeek(split bool) Option {
	return func(o *Options) { o.SplitWeek = split }
}

// SplitDay adds day and night to the part of day dimension
func SplitDay(split bool) Option {
	return func(o *Options) { o.SplitDay = split }
}

// Padded keeps empty calendar periods as empty bins
func Padded(padded bool) Option {
	return func(o *Options) { o.FilterEmpty = !padded }
}

// WithInteractions replaces the interaction dimension. It has no effect on
// pipelines that are not divided by interaction.
func WithInteractions(interactions ...string) Option {
	return func(o *Options) { o.Interactions = interactions }
}

// WithDatatype skips type inference
func WithDatatype(d Datatype) Option {
	return func(o *Options) { o.Datatype = d }
}

// Options returns the pipeline defaults with opts applied
func (p *Pipeline) Options(opts ...Option) Options {
	o := Options{
		GroupBy:      GroupByWeek,
		Summary:      p.Summary,
		FilterEmpty:  true,
		Interactions: p.Interactions,
		Datatype:     p.Datatype,
	}
	if o.Summary == "" {
		o.Summary = SummaryDefault
	}
	for _, opt := range opts {
		opt(&o)
	}
	if p.Interactions == nil {
		o.Interactions = nil
	} else if len(o.Interactions) == 0 {
		o.Interactions = p.Interactions
	}
	return o
}

// Query builds the grouping query of an evaluation
func (p *Pipeline) Query(o Options) Query {
	return Query{
		Using:       p.Using,
		GroupBy:     o.GroupBy,
		FilterEmpty: o.FilterEmpty,
		Binning:     p.Binning,
		DivideBy:    DivideParameters(o.SplitWeek, o.SplitDay, o.Interactions),
	}
}

// Evaluate computes the indicator for u. Every option is validated before
// any record is read.
func (p *Pipeline) Evaluate(u *User, opts ...Option) (*Tree, error) {
	o := p.Options(opts...)
	if _, err := ParseSummaryMode(string(o.Summary)); err != nil {
		return nil, err
	}
	q := p.Query(o)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	groups, err := u.Bins(q)
	if err != nil {
		return nil, err
	}

	result := NewTree()
	for _, g := range groups {
		values := make([]stats.Value, 0, len(g.Bins))
		for _, bin := range g.Bins {
			v, err := p.Reduce(bin, u)
			if err != nil {
				return nil, fmt.Errorf("failed to compute %s: %w", p.Name, err)
			}
			values = append(values, v)
		}

		var summarized any
		if o.GroupBy == GroupByNone {
			var single stats.Value
			if len(values) > 0 {
				single = values[0]
			}
			summarized, err = SummarizeValue(single, o.Summary, scalarType(o.Datatype))
		} else {
			summarized, err = SummarizeDistribution(values, o.Summary, o.Datatype)
		}
		if err != nil {
			return nil, err
		}

		if err := result.Insert(g.Params.Values(), summarized); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// scalarType maps a distribution datatype hint to its element type
func scalarType(d Datatype) Datatype {
	switch d {
	case DistributionScalar:
		return Scalar
	case DistributionSummaryStats:
		return SummaryStats
	}
	return d
}

// Interactions lists the values accepted by WithInteractions
func Interactions() []string {
	return slices.Clone(acceptedValues[DimInteraction])
}
