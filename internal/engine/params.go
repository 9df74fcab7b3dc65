package engine

// Param is one (dimension, value) pair of a parameter combination
type Param struct {
	Name  string
	Value string
}

// Params is one point of the parameter space, in dimension order
type Params []Param

// Get returns the value of the named dimension
func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// Values returns the parameter values in order; this is the key path of the
// result tree
func (p Params) Values() []string {
	values := make([]string, len(p))
	for i, param := range p {
		values[i] = param.Value
	}
	return values
}

// DivideParameters builds the dimensions an indicator is evaluated over.
// part_of_week and part_of_day are always present; interaction only when
// interactions is non-empty.
func DivideParameters(splitWeek, splitDay bool, interactions []string) Dimensions {
	partOfWeek := []string{AllWeek}
	if splitWeek {
		partOfWeek = append(partOfWeek, Weekday, Weekend)
	}

	partOfDay := []string{AllDay}
	if splitDay {
		partOfDay = append(partOfDay, Day, Night)
	}

	dims := Dimensions{
		{Name: DimPartOfWeek, Values: partOfWeek},
		{Name: DimPartOfDay, Values: partOfDay},
	}
	if len(interactions) > 0 {
		dims = append(dims, Dimension{Name: DimInteraction, Values: append([]string(nil), interactions...)})
	}
	return dims
}

// Enumerate returns the Cartesian product of the dimensions, preserving
// dimension order and value order. The last dimension varies fastest.
func Enumerate(dims Dimensions) []Params {
	combinations := []Params{{}}
	for _, dim := range dims {
		next := make([]Params, 0, len(combinations)*len(dim.Values))
		for _, prefix := range combinations {
			for _, v := range dim.Values {
				p := make(Params, len(prefix), len(prefix)+1)
				copy(p, prefix)
				next = append(next, append(p, Param{Name: dim.Name, Value: v}))
			}
		}
		combinations = next
	}
	return combinations
}
