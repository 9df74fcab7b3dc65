package engine

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Source selects which record list of a subject a query reads
type Source string

const (
	UsingRecords   Source = "records"
	UsingRecharges Source = "recharges"
)

// GroupBy is the calendar unit used to split records into bins
type GroupBy string

const (
	GroupByNone  GroupBy = "none"
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
	GroupByYear  GroupBy = "year"
)

var groupByValues = []string{"none", "day", "week", "month", "year"}

// ParseGroupBy accepts the unit names and "" for none
func ParseGroupBy(s string) (GroupBy, error) {
	if s == "" {
		return GroupByNone, nil
	}
	if !slices.Contains(groupByValues, s) {
		return "", invalidParameter("groupby", s, groupByValues)
	}
	return GroupBy(s), nil
}

// Dimension names and their accepted values
const (
	DimPartOfWeek  = "part_of_week"
	DimPartOfDay   = "part_of_day"
	DimInteraction = "interaction"
)

const (
	AllWeek = "allweek"
	Weekday = "weekday"
	Weekend = "weekend"

	AllDay = "allday"
	Day    = "day"
	Night  = "night"

	CallAndText = "callandtext"
)

var acceptedValues = map[string][]string{
	DimPartOfWeek:  {AllWeek, Weekday, Weekend},
	DimPartOfDay:   {AllDay, Day, Night},
	DimInteraction: {CallAndText, "call", "text", "gps"},
}

// Dimension is one filter axis with its candidate values, in declared order
type Dimension struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Dimensions is an ordered mapping from dimension name to candidate values
type Dimensions []Dimension

// Names returns the dimension names in declared order
func (d Dimensions) Names() []string {
	names := make([]string, len(d))
	for i, dim := range d {
		names[i] = dim.Name
	}
	return names
}

// Validate checks every dimension name and value
func (d Dimensions) Validate() error {
	seen := make(map[string]bool, len(d))
	for _, dim := range d {
		accepted, ok := acceptedValues[dim.Name]
		if !ok {
			return invalidParameter("dimension", dim.Name, []string{DimPartOfWeek, DimPartOfDay, DimInteraction})
		}
		if seen[dim.Name] {
			return &Error{Kind: KindInvalidParameter, Msg: fmt.Sprintf("dimension %s declared twice", dim.Name), Value: dim.Name}
		}
		seen[dim.Name] = true
		if len(dim.Values) == 0 {
			return &Error{Kind: KindInvalidParameter, Msg: fmt.Sprintf("dimension %s has no values", dim.Name), Value: dim.Name}
		}
		for _, v := range dim.Values {
			if !slices.Contains(accepted, v) {
				return invalidParameter(dim.Name, v, accepted)
			}
		}
	}
	return nil
}

// Query describes how a subject's records are filtered, grouped and binned
type Query struct {
	Using       Source     `json:"using"`
	GroupBy     GroupBy    `json:"groupby"`
	FilterEmpty bool       `json:"filter_empty"`
	Binning     bool       `json:"binning"`
	DivideBy    Dimensions `json:"divide_by"`
}

// Validate checks the query before any work is done
func (q Query) Validate() error {
	switch q.Using {
	case UsingRecords, UsingRecharges:
	default:
		return invalidParameter("using", string(q.Using), []string{string(UsingRecords), string(UsingRecharges)})
	}
	if !slices.Contains(groupByValues, string(q.GroupBy)) {
		return invalidParameter("groupby", string(q.GroupBy), groupByValues)
	}
	return q.DivideBy.Validate()
}

// Key returns the canonical encoding of the query. Two queries share cached
// bins iff their keys are equal.
func (q Query) Key() string {
	b, err := json.Marshal(q)
	if err != nil {
		// Query holds only strings, bools and slices of strings
		panic(fmt.Sprintf("engine: encoding query: %v", err))
	}
	return string(b)
}
