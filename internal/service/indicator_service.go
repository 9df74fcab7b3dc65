package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jengzang/cdr-indicators/internal/config"
	"github.com/jengzang/cdr-indicators/internal/engine"
	"github.com/jengzang/cdr-indicators/internal/indicators"
	"github.com/jengzang/cdr-indicators/internal/logger"
	"github.com/jengzang/cdr-indicators/internal/models"
	"github.com/jengzang/cdr-indicators/internal/repository"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrIndicatorNotFound is returned for names missing from the registry
var ErrIndicatorNotFound = errors.New("indicator not found")

// Options configures an IndicatorService
type Options struct {
	UserCacheSize  int
	QueryCacheSize int
	Metrics        *engine.Metrics
	Defaults       config.Defaults
}

// IndicatorService loads subjects from the store and computes indicators on
// them. Loaded subjects stay in an LRU so their query caches are reused.
type IndicatorService struct {
	repo     *repository.UserRepository
	users    *lru.Cache[string, *engine.User]
	loads    singleflight.Group
	metrics  *engine.Metrics
	opts     Options
	calendar engine.Calendar
}

// NewIndicatorService creates a new indicator service
func NewIndicatorService(repo *repository.UserRepository, opts Options) (*IndicatorService, error) {
	if opts.UserCacheSize <= 0 {
		opts.UserCacheSize = 128
	}
	if opts.QueryCacheSize <= 0 {
		opts.QueryCacheSize = engine.DefaultQueryCacheSize
	}
	if opts.Metrics == nil {
		opts.Metrics = engine.NewMetrics(nil)
	}

	users, err := lru.New[string, *engine.User](opts.UserCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create user cache: %w", err)
	}

	cal, err := calendarOf(opts.Defaults.Weekend, opts.Defaults.NightStart, opts.Defaults.NightEnd, engine.Calendar{
		Weekend: engine.DefaultWeekend,
		Night:   engine.DefaultNightWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid subject defaults: %w", err)
	}

	return &IndicatorService{
		repo:     repo,
		users:    users,
		metrics:  opts.Metrics,
		opts:     opts,
		calendar: cal,
	}, nil
}

// ListUsers returns the stored subjects
func (s *IndicatorService) ListUsers() ([]models.UserProfile, error) {
	return s.repo.ListUsers()
}

// Indicators returns the registered indicator names
func (s *IndicatorService) Indicators() []string {
	return indicators.Names()
}

// LoadUser returns the cached subject for id, loading it from the store on
// first use. Concurrent loads of the same id share one read.
func (s *IndicatorService) LoadUser(id string) (*engine.User, error) {
	if u, ok := s.users.Get(id); ok {
		return u, nil
	}

	v, err, _ := s.loads.Do(id, func() (any, error) {
		if u, ok := s.users.Get(id); ok {
			return u, nil
		}
		profile, err := s.repo.GetUser(id)
		if err != nil {
			return nil, err
		}
		cal, err := calendarOf(profile.Weekend, profile.NightStart, profile.NightEnd, s.calendar)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", id, err)
		}

		u := engine.NewUser(profile.ID,
			engine.WithCacheSize(s.opts.QueryCacheSize),
			engine.WithMetrics(s.metrics),
			engine.WithCalendar(cal),
		)
		if err := s.fill(u); err != nil {
			return nil, err
		}
		s.users.Add(id, u)

		logger.Named("service").Debug().Str("user", id).Int("records", len(u.Records())).Msg("loaded user")
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine.User), nil
}

func (s *IndicatorService) fill(u *engine.User) error {
	records, err := s.repo.LoadRecords(u.Name)
	if err != nil {
		return err
	}
	antennas, err := s.repo.LoadAntennas(u.Name)
	if err != nil {
		return err
	}
	recharges, err := s.repo.LoadRecharges(u.Name)
	if err != nil {
		return err
	}
	u.SetAntennas(antennas)
	u.SetRecords(records)
	u.SetRecharges(recharges)
	return nil
}

// Reload refreshes a subject from the store. A cached subject is updated in
// place, which invalidates its query cache.
func (s *IndicatorService) Reload(id string) (*engine.User, error) {
	u, ok := s.users.Get(id)
	if !ok {
		return s.LoadUser(id)
	}

	profile, err := s.repo.GetUser(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.users.Remove(id)
		}
		return nil, err
	}
	cal, err := calendarOf(profile.Weekend, profile.NightStart, profile.NightEnd, s.calendar)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	u.SetWeekend(cal.Weekend)
	u.SetNightWindow(cal.Night)
	if err := s.fill(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Compute evaluates one indicator for a subject
func (s *IndicatorService) Compute(id, name string, filter models.IndicatorFilter) (*engine.Tree, error) {
	ind, ok := indicators.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndicatorNotFound, name)
	}
	opts, err := s.Options(filter)
	if err != nil {
		return nil, err
	}
	u, err := s.LoadUser(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := ind.Compute(u, opts...)
	if err != nil {
		return nil, err
	}
	logger.Named("service").Debug().
		Str("user", id).
		Str("indicator", name).
		Dur("elapsed", time.Since(start)).
		Msg("computed indicator")
	return shape(result, filter), nil
}

// ComputeAll evaluates every registered indicator concurrently on the same
// subject. The result is keyed by indicator name in alphabetical order.
func (s *IndicatorService) ComputeAll(ctx context.Context, id string, filter models.IndicatorFilter) (*engine.Tree, error) {
	opts, err := s.Options(filter)
	if err != nil {
		return nil, err
	}
	u, err := s.LoadUser(id)
	if err != nil {
		return nil, err
	}

	names := indicators.Names()
	results := make([]*engine.Tree, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		ind, _ := indicators.Get(name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := ind.Compute(u, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = shape(r, filter)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := engine.NewTree()
	for i, name := range names {
		out.Set(name, results[i])
	}
	return out, nil
}

func shape(t *engine.Tree, filter models.IndicatorFilter) *engine.Tree {
	if filter.Flat && !t.IsLeaf() {
		return t.Flatten("__")
	}
	return t
}

// Options converts request filters to engine options, filling unset fields
// from the configured defaults
func (s *IndicatorService) Options(filter models.IndicatorFilter) ([]engine.Option, error) {
	groupBy := filter.GroupBy
	if groupBy == "" {
		groupBy = s.opts.Defaults.GroupBy
	}
	var opts []engine.Option
	if groupBy != "" {
		g, err := engine.ParseGroupBy(groupBy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithGroupBy(g))
	}

	summary := filter.Summary
	if summary == "" {
		summary = s.opts.Defaults.Summary
	}
	if summary != "" {
		m, err := engine.ParseSummaryMode(summary)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithSummary(m))
	}

	opts = append(opts, engine.SplitWeek(filter.SplitWeek), engine.SplitDay(filter.SplitDay))
	if filter.FilterEmpty != nil {
		opts = append(opts, engine.Padded(!*filter.FilterEmpty))
	}

	if filter.Interaction != "" {
		var interactions []string
		for _, i := range strings.Split(filter.Interaction, ",") {
			if i = strings.TrimSpace(i); i != "" {
				interactions = append(interactions, i)
			}
		}
		opts = append(opts, engine.WithInteractions(interactions...))
	}
	return opts, nil
}

// calendarOf builds a calendar from stored settings, keeping base for the
// fields left empty
func calendarOf(weekend []int, nightStart, nightEnd string, base engine.Calendar) (engine.Calendar, error) {
	cal := base
	if len(weekend) > 0 {
		days := make([]time.Weekday, 0, len(weekend))
		for _, d := range weekend {
			if d < 1 || d > 7 {
				return cal, fmt.Errorf("invalid weekend day %d", d)
			}
			days = append(days, time.Weekday(d%7))
		}
		cal.Weekend = days
	}
	if nightStart != "" {
		t, err := engine.ParseTimeOfDay(nightStart)
		if err != nil {
			return cal, err
		}
		cal.Night.Start = t
	}
	if nightEnd != "" {
		t, err := engine.ParseTimeOfDay(nightEnd)
		if err != nil {
			return cal, err
		}
		cal.Night.End = t
	}
	return cal, nil
}
