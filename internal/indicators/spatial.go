package indicators

import (
	"math"

	"github.com/jengzang/cdr-indicators/internal/engine"
	"github.com/jengzang/cdr-indicators/internal/models"
	"github.com/jengzang/cdr-indicators/internal/spatial"
	"github.com/jengzang/cdr-indicators/internal/stats"
)

func init() {
	Register(positions("percent_at_home", percentAtHome))
	Register(positions("radius_of_gyration", radiusOfGyration))
	Register(positions("entropy_of_antennas", entropyOfAntennas))
	Register(positions("normalized_entropy_of_antennas", normalizedEntropyOfAntennas))
	Register(positions("number_of_antennas", numberOfAntennas))
	Register(positions("frequent_antennas", frequentAntennas))
	Register(churnRate{})
}

// percentAtHome is the share of 30-minute slots spent at home. None when the
// subject has no home.
func percentAtHome(bin engine.Bin, u *engine.User) (stats.Value, error) {
	home := u.Home()
	if home == nil {
		return nil, nil
	}
	if len(bin.Positions) == 0 {
		return stats.Num(0), nil
	}
	n := 0
	for _, p := range bin.Positions {
		if p.Equal(*home) {
			n++
		}
	}
	return stats.Num(float64(n) / float64(len(bin.Positions))), nil
}

func locate(p models.Position, u *engine.User) (models.LatLng, bool) {
	if p.Location != nil {
		return *p.Location, true
	}
	if p.Antenna != "" {
		return u.Antenna(p.Antenna)
	}
	return models.LatLng{}, false
}

// radiusOfGyration is the weighted root mean square distance, in km, of the
// visited places to their barycenter
func radiusOfGyration(bin engine.Bin, u *engine.User) (stats.Value, error) {
	var places []models.LatLng
	var weights []float64
	seen := make(map[models.LatLng]int)
	for _, p := range bin.Positions {
		ll, ok := locate(p, u)
		if !ok {
			continue
		}
		i, ok := seen[ll]
		if !ok {
			i = len(places)
			seen[ll] = i
			places = append(places, ll)
			weights = append(weights, 0)
		}
		weights[i]++
	}

	center, ok := spatial.Barycenter(places, weights)
	if !ok {
		return nil, nil
	}
	total := stats.Sum(weights)
	var r float64
	for i, ll := range places {
		d := spatial.GreatCircleDistance(center, ll)
		r += weights[i] / total * d * d
	}
	return stats.Num(math.Sqrt(r)), nil
}

func entropyOfAntennas(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	e, ok := stats.Entropy(countPositions(bin.Positions).counts)
	if !ok {
		return nil, nil
	}
	return stats.Num(e), nil
}

func normalizedEntropyOfAntennas(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	e, ok := stats.NormalizedEntropy(countPositions(bin.Positions).counts)
	if !ok {
		return nil, nil
	}
	return stats.Num(e), nil
}

func numberOfAntennas(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	return stats.Num(float64(len(countPositions(bin.Positions).positions))), nil
}

// frequentAntennas is the number of places accounting for 80% of the slots
func frequentAntennas(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	c := countPositions(bin.Positions).counter()
	target := math.Ceil(c.total() * ParetoPercentage)
	return stats.Num(float64(c.paretoCount(target))), nil
}

// churnRate is the distribution of cosine distances between the place
// frequency vectors of consecutive active weeks
type churnRate struct{}

func (churnRate) Name() string {
	return "churn_rate"
}

var churnQuery = engine.Query{
	Using:       engine.UsingRecords,
	GroupBy:     engine.GroupByWeek,
	FilterEmpty: true,
	Binning:     true,
	DivideBy:    engine.DivideParameters(false, false, nil),
}

func (c churnRate) Compute(u *engine.User, opts ...engine.Option) (*engine.Tree, error) {
	o := (&engine.Pipeline{Summary: engine.SummaryDefault}).Options(opts...)
	if _, err := engine.ParseSummaryMode(string(o.Summary)); err != nil {
		return nil, err
	}

	var distances []stats.Value
	if len(u.Records()) > 0 {
		groups, err := u.Bins(churnQuery)
		if err != nil {
			return nil, err
		}
		distances = weeklyChurn(groups[0].Bins)
	}

	summarized, err := engine.SummarizeDistribution(distances, o.Summary, engine.DistributionScalar)
	if err != nil {
		return nil, err
	}
	if t, ok := summarized.(*engine.Tree); ok {
		return t, nil
	}
	return engine.Leaf(summarized), nil
}

func weeklyChurn(weeks []engine.Bin) []stats.Value {
	var all []models.Position
	for _, w := range weeks {
		all = append(all, w.Positions...)
	}
	places := countPositions(all).positions

	frequencies := make([][]float64, len(weeks))
	for i, w := range weeks {
		counts := countPositions(w.Positions)
		f := make([]float64, len(places))
		for j, p := range places {
			for k, q := range counts.positions {
				if q.Equal(p) {
					f[j] = counts.counts[k] / float64(len(w.Positions))
					break
				}
			}
		}
		frequencies[i] = f
	}

	distances := make([]stats.Value, 0, len(weeks))
	for i := 1; i < len(frequencies); i++ {
		if d, ok := stats.CosineDistance(frequencies[i-1], frequencies[i]); ok {
			distances = append(distances, stats.Num(d))
		}
	}
	return distances
}
