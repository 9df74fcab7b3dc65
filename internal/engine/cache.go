package engine

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultQueryCacheSize bounds the number of distinct queries kept per subject
const DefaultQueryCacheSize = 512

// Metrics counts query cache hits and misses, labelled by query source.
// One Metrics value is shared by every subject's cache.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

// NewMetrics registers the cache counters with registerer. A nil registerer
// uses a private registry.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	factory := promauto.With(registerer)
	return &Metrics{
		hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indicator_query_cache_hits_total",
				Help: "Number of hits for a query cache lookup.",
			},
			[]string{"using"},
		),
		misses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indicator_query_cache_misses_total",
				Help: "Number of misses for a query cache lookup.",
			},
			[]string{"using"},
		),
	}
}

// QueryCache memoizes the filtered, grouped and binned records of a subject
// per distinct query. Lookup, computation and store happen under one lock,
// so a query is computed at most once between invalidations.
type QueryCache struct {
	mu           sync.Mutex
	lru          *lru.Cache[string, []Group]
	metrics      *Metrics
	computations atomic.Int64
}

// NewQueryCache returns a cache holding at most size queries
func NewQueryCache(size int, metrics *Metrics) *QueryCache {
	if size <= 0 {
		size = DefaultQueryCacheSize
	}
	c, err := lru.New[string, []Group](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &QueryCache{lru: c, metrics: metrics}
}

// GetOrCompute returns the groups stored for q, calling compute and storing
// its result on a miss. Errors are not cached.
func (c *QueryCache) GetOrCompute(q Query, compute func() ([]Group, error)) ([]Group, error) {
	key := q.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if groups, ok := c.lru.Get(key); ok {
		if c.metrics != nil {
			c.metrics.hits.WithLabelValues(string(q.Using)).Inc()
		}
		return groups, nil
	}

	groups, err := compute()
	if err != nil {
		return nil, err
	}
	c.computations.Add(1)
	c.lru.Add(key, groups)
	if c.metrics != nil {
		c.metrics.misses.WithLabelValues(string(q.Using)).Inc()
	}
	return groups, nil
}

// Invalidate drops every stored query
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len is the number of stored queries
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Computations is the number of times a query had to be computed
func (c *QueryCache) Computations() int64 {
	return c.computations.Load()
}
