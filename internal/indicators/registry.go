package indicators

import (
	"slices"
	"sort"
	"sync"

	"github.com/jengzang/cdr-indicators/internal/engine"
	"github.com/jengzang/cdr-indicators/internal/models"
)

// Indicator is the interface that all indicators must implement
type Indicator interface {
	// Name returns the registered name of the indicator
	Name() string

	// Compute evaluates the indicator for a subject. Options override the
	// indicator defaults (grouping unit, summary mode, splits, interactions).
	Compute(u *engine.User, opts ...engine.Option) (*engine.Tree, error)
}

var (
	registryMu sync.RWMutex

	// IndicatorRegistry maps indicator names to implementations
	IndicatorRegistry = make(map[string]Indicator)
)

// Register adds an indicator to the registry, replacing any indicator
// registered under the same name
func Register(ind Indicator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	IndicatorRegistry[ind.Name()] = ind
}

// Get retrieves an indicator by name
func Get(name string) (Indicator, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ind, ok := IndicatorRegistry[name]
	return ind, ok
}

// Names returns the registered indicator names in alphabetical order
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(IndicatorRegistry))
	for name := range IndicatorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pipelineIndicator adapts an engine pipeline to the Indicator interface
type pipelineIndicator struct {
	*engine.Pipeline
}

func (p pipelineIndicator) Name() string {
	return p.Pipeline.Name
}

func (p pipelineIndicator) Compute(u *engine.User, opts ...engine.Option) (*engine.Tree, error) {
	return p.Evaluate(u, opts...)
}

// Default interaction dimensions
var (
	callAndText = []string{"call", "text"}
	callOnly    = []string{"call"}
	combined    = []string{engine.CallAndText}
)

func records(name string, interactions []string, reduce engine.Reducer) Indicator {
	return pipelineIndicator{&engine.Pipeline{
		Name:         name,
		Using:        engine.UsingRecords,
		Reduce:       reduce,
		Summary:      engine.SummaryDefault,
		Interactions: slices.Clone(interactions),
	}}
}

func positions(name string, reduce engine.Reducer) Indicator {
	return pipelineIndicator{&engine.Pipeline{
		Name:    name,
		Using:   engine.UsingRecords,
		Binning: true,
		Reduce:  reduce,
		Summary: engine.SummaryDefault,
	}}
}

func recharges(name string, reduce engine.Reducer) Indicator {
	return pipelineIndicator{&engine.Pipeline{
		Name:    name,
		Using:   engine.UsingRecharges,
		Reduce:  reduce,
		Summary: engine.SummaryDefault,
	}}
}

// counter tallies string keys in first-seen order
type counter struct {
	keys   []string
	counts map[string]float64
}

func newCounter() *counter {
	return &counter{counts: make(map[string]float64)}
}

func (c *counter) add(key string, n float64) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

func (c *counter) values() []float64 {
	out := make([]float64, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.counts[k]
	}
	return out
}

func (c *counter) total() float64 {
	var sum float64
	for _, v := range c.counts {
		sum += v
	}
	return sum
}

// paretoCount is the number of keys, taken from the most frequent, whose
// counts reach target. Equal counts keep first-seen order and the later key
// is taken first.
func (c *counter) paretoCount(target float64) int {
	sorted := slices.Clone(c.keys)
	slices.SortStableFunc(sorted, func(a, b string) int {
		switch {
		case c.counts[a] < c.counts[b]:
			return -1
		case c.counts[a] > c.counts[b]:
			return 1
		}
		return 0
	})
	taken := 0
	for target > 0 && len(sorted) > taken {
		target -= c.counts[sorted[len(sorted)-1-taken]]
		taken++
	}
	return taken
}

// positionCounter tallies positions by Position.Equal in first-seen order
type positionCounter struct {
	positions []models.Position
	counts    []float64
}

func countPositions(ps []models.Position) *positionCounter {
	c := &positionCounter{}
	for _, p := range ps {
		i := slices.IndexFunc(c.positions, p.Equal)
		if i < 0 {
			c.positions = append(c.positions, p)
			c.counts = append(c.counts, 1)
			continue
		}
		c.counts[i]++
	}
	return c
}

func (c *positionCounter) counter() *counter {
	out := newCounter()
	for i, p := range c.positions {
		out.add(p.String(), c.counts[i])
	}
	return out
}
