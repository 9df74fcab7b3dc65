package engine

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jengzang/cdr-indicators/internal/models"
)

// Bin is the content of one calendar period under one parameter combination.
// Events or Recharges is set depending on the query source; Positions is set
// instead of Events when the query bins positions.
type Bin struct {
	Events    []models.Event
	Recharges []models.Recharge
	Positions []models.Position
}

// Len is the number of items in the bin
func (b Bin) Len() int {
	return len(b.Events) + len(b.Recharges) + len(b.Positions)
}

// Group is the bin sequence produced for one parameter combination
type Group struct {
	Params Params
	Bins   []Bin
}

// User is a subject: its records, antennas, recharges and calendar settings,
// along with the query cache over them. Every mutator invalidates the cache.
type User struct {
	Name string

	mu        sync.RWMutex
	calendar  Calendar
	records   []models.Event
	antennas  map[string]models.LatLng
	recharges []models.Recharge
	home      *models.Position

	startTime   time.Time
	endTime     time.Time
	hasCall     bool
	hasText     bool
	hasAntennas bool

	cache *QueryCache
}

// UserOption configures a User at construction
type UserOption func(*userOptions)

type userOptions struct {
	cacheSize int
	metrics   *Metrics
	calendar  Calendar
}

// WithCacheSize bounds the subject's query cache
func WithCacheSize(size int) UserOption {
	return func(o *userOptions) { o.cacheSize = size }
}

// WithMetrics reports cache hits and misses to m
func WithMetrics(m *Metrics) UserOption {
	return func(o *userOptions) { o.metrics = m }
}

// WithCalendar sets the weekend days and night window
func WithCalendar(cal Calendar) UserOption {
	return func(o *userOptions) { o.calendar = cal }
}

// NewUser returns an empty subject with the default calendar
func NewUser(name string, opts ...UserOption) *User {
	o := userOptions{
		cacheSize: DefaultQueryCacheSize,
		calendar:  Calendar{Weekend: DefaultWeekend, Night: DefaultNightWindow},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &User{
		Name:     name,
		calendar: o.calendar,
		antennas: map[string]models.LatLng{},
		cache:    NewQueryCache(o.cacheSize, o.metrics),
	}
}

// Cache exposes the subject's query cache
func (u *User) Cache() *QueryCache {
	return u.cache
}

// SetRecords replaces the records, sorting them by time. Home is recomputed.
func (u *User) SetRecords(records []models.Event) {
	u.mu.Lock()
	defer u.mu.Unlock()

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.Event) int {
		return a.DateTime.Compare(b.DateTime)
	})
	u.records = sorted
	u.locateRecords()

	u.startTime, u.endTime = time.Time{}, time.Time{}
	if len(sorted) > 0 {
		u.startTime = sorted[0].DateTime
		u.endTime = sorted[len(sorted)-1].DateTime
	}

	u.hasCall, u.hasText, u.hasAntennas = false, false, false
	for _, r := range sorted {
		switch r.Interaction {
		case models.InteractionCall:
			u.hasCall = true
		case models.InteractionText:
			u.hasText = true
		}
		if r.Position.Antenna != "" {
			u.hasAntennas = true
		}
	}

	u.recomputeHome()
}

// SetAntennas replaces the antenna map and updates the location of every
// record positioned by antenna. Records are relocated in a fresh slice so
// bins and slices handed out earlier keep their events.
func (u *User) SetAntennas(antennas map[string]models.LatLng) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.antennas = maps.Clone(antennas)
	if u.antennas == nil {
		u.antennas = map[string]models.LatLng{}
	}
	u.hasAntennas = len(u.antennas) > 0
	u.records = slices.Clone(u.records)
	u.locateRecords()
	u.cache.Invalidate()
}

// locateRecords must be called with mu held on a records slice no bin or
// caller shares
func (u *User) locateRecords() {
	for i := range u.records {
		pos := &u.records[i].Position
		if pos.Antenna == "" {
			continue
		}
		if ll, ok := u.antennas[pos.Antenna]; ok {
			pos.Location = &ll
		} else {
			pos.Location = nil
		}
	}
}

// SetRecharges replaces the recharges, sorting them by time
func (u *User) SetRecharges(recharges []models.Recharge) {
	u.mu.Lock()
	defer u.mu.Unlock()

	sorted := slices.Clone(recharges)
	slices.SortStableFunc(sorted, func(a, b models.Recharge) int {
		return a.DateTime.Compare(b.DateTime)
	})
	u.recharges = sorted
	u.cache.Invalidate()
}

// SetNightWindow changes the night window and recomputes home
func (u *User) SetNightWindow(w NightWindow) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calendar.Night = w
	u.recomputeHome()
}

// SetWeekend changes the weekend days
func (u *User) SetWeekend(days []time.Weekday) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calendar.Weekend = slices.Clone(days)
	u.cache.Invalidate()
}

// SetHome overrides the inferred home
func (u *User) SetHome(home models.Position) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.home = &home
	u.cache.Invalidate()
}

// RecomputeHome infers home as the position most often seen at night, one
// vote per 30-minute slot. Ties go to the position seen first. Home is nil
// when there are no night records.
func (u *User) RecomputeHome() *models.Position {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.recomputeHome()
	return clonePosition(u.home)
}

func (u *User) recomputeHome() {
	night := filterTime(u.records, Params{{Name: DimPartOfDay, Value: Night}}, u.calendar)

	var candidates []models.Position
	var counts []int
	for p := range BinPositions(night) {
		i := slices.IndexFunc(candidates, p.Equal)
		if i < 0 {
			candidates = append(candidates, p)
			counts = append(counts, 1)
			continue
		}
		counts[i]++
	}

	u.home = nil
	best := -1
	for i, n := range counts {
		if best < 0 || n > counts[best] {
			best = i
		}
	}
	if best >= 0 {
		home := candidates[best]
		u.home = &home
	}
	u.cache.Invalidate()
}

func clonePosition(p *models.Position) *models.Position {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Home returns the subject's home, nil when unknown
func (u *User) Home() *models.Position {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return clonePosition(u.home)
}

// Records returns the subject's records in chronological order. The slice
// must not be modified.
func (u *User) Records() []models.Event {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.records
}

// Recharges returns the subject's recharges in chronological order. The
// slice must not be modified.
func (u *User) Recharges() []models.Recharge {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.recharges
}

// Antenna returns the coordinate of an antenna
func (u *User) Antenna(id string) (models.LatLng, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	ll, ok := u.antennas[id]
	return ll, ok
}

// Antennas returns a copy of the antenna map
func (u *User) Antennas() map[string]models.LatLng {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return maps.Clone(u.antennas)
}

// Calendar returns the subject's weekend and night settings
func (u *User) Calendar() Calendar {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.calendar
}

// Span returns the time of the first and last record
func (u *User) Span() (start, end time.Time) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.startTime, u.endTime
}

// HasCall reports whether any record is a call
func (u *User) HasCall() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.hasCall
}

// HasText reports whether any record is a text
func (u *User) HasText() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.hasText
}

// HasAntennas reports whether any record is positioned by antenna, or, after
// SetAntennas, whether the antenna map is non-empty
func (u *User) HasAntennas() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.hasAntennas
}

// HasRecharges reports whether the subject has recharges
func (u *User) HasRecharges() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.recharges) > 0
}

// Bins returns the groups of q, one per parameter combination in enumeration
// order, computing them on the first request and serving them from the
// subject's cache afterwards
func (u *User) Bins(q Query) ([]Group, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	u.mu.RLock()
	defer u.mu.RUnlock()

	return u.cache.GetOrCompute(q, func() ([]Group, error) {
		return u.group(q)
	})
}

// group must be called with mu held
func (u *User) group(q Query) ([]Group, error) {
	combinations := Enumerate(q.DivideBy)
	groups := make([]Group, 0, len(combinations))

	for _, p := range combinations {
		g := Group{Params: p, Bins: []Bin{}}

		switch q.Using {
		case UsingRecharges:
			recharges, err := FilterRecharges(u.recharges, p, u.calendar)
			if err != nil {
				return nil, err
			}
			for chunk := range GroupRecords(recharges, q.GroupBy, q.FilterEmpty) {
				g.Bins = append(g.Bins, Bin{Recharges: chunk})
			}

		default:
			events, err := FilterEvents(u.records, p, u.calendar)
			if err != nil {
				return nil, err
			}
			for chunk := range GroupRecords(events, q.GroupBy, q.FilterEmpty) {
				if q.Binning {
					g.Bins = append(g.Bins, Bin{Positions: CollectPositions(chunk)})
				} else {
					g.Bins = append(g.Bins, Bin{Events: chunk})
				}
			}
		}

		groups = append(groups, g)
	}
	return groups, nil
}
