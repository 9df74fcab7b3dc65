package indicators

import (
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/cdr-indicators/internal/engine"
	"github.com/jengzang/cdr-indicators/internal/models"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse("2006-01-02 15:04:05", s)
	require.NoError(t, err)
	return v
}

func text(t *testing.T, s, contact string, dir models.Direction) models.Event {
	return models.Event{
		Interaction:     models.InteractionText,
		Direction:       dir,
		CorrespondentID: contact,
		DateTime:        ts(t, s),
		Position:        models.Position{Antenna: "a1"},
	}
}

func call(t *testing.T, s, contact string, dir models.Direction, seconds int64, antenna string) models.Event {
	return models.Event{
		Interaction:     models.InteractionCall,
		Direction:       dir,
		CorrespondentID: contact,
		DateTime:        ts(t, s),
		CallDuration:    &seconds,
		Position:        models.Position{Antenna: antenna},
	}
}

func compute(t *testing.T, name string, u *engine.User, opts ...engine.Option) *engine.Tree {
	t.Helper()
	ind, ok := Get(name)
	require.True(t, ok, name)
	res, err := ind.Compute(u, opts...)
	require.NoError(t, err)
	return res
}

func scalar(t *testing.T, res *engine.Tree, path ...string) float64 {
	t.Helper()
	v, ok := res.Float(path...)
	require.True(t, ok, "no number at %v", path)
	return v
}

func TestRegistry(t *testing.T) {
	names := Names()
	for _, name := range []string{
		"active_days", "number_of_contacts", "call_duration", "percent_nocturnal",
		"percent_initiated_interactions", "percent_initiated_conversations",
		"response_rate_text", "response_delay_text", "entropy_of_contacts",
		"interactions_per_contact", "interevent_time", "percent_pareto_interactions",
		"percent_pareto_durations", "balance_of_contacts", "number_of_interactions",
		"normalized_entropy_of_contacts", "normalized_entropy_of_antennas",
		"percent_at_home", "radius_of_gyration", "entropy_of_antennas",
		"number_of_antennas", "frequent_antennas", "churn_rate",
		"amount_recharges", "interevent_time_recharges", "percent_pareto_recharges",
		"number_of_recharges", "average_balance_recharges",
	} {
		assert.Contains(t, names, name)
	}
	assert.IsIncreasing(t, names)

	_, ok := Get("nope")
	assert.False(t, ok)
}

func TestConversations(t *testing.T) {
	events := []models.Event{
		text(t, "2014-01-01 10:00:00", "x", models.DirectionIn),
		text(t, "2014-01-01 10:01:00", "x", models.DirectionOut),
		call(t, "2014-01-01 10:02:00", "x", models.DirectionOut, 30, "a1"),
		text(t, "2014-01-01 10:03:00", "x", models.DirectionIn),
		text(t, "2014-01-01 12:00:00", "x", models.DirectionIn),
		text(t, "2014-01-01 12:04:00", "x", models.DirectionOut),
	}
	convs := conversations(events)
	require.Len(t, convs, 3)
	assert.Len(t, convs[0], 2)
	assert.Len(t, convs[1], 1)
	assert.Len(t, convs[2], 2)
}

func TestTextIndicators(t *testing.T) {
	u := engine.NewUser("texter")
	u.SetRecords([]models.Event{
		// I-O: responded after 60s
		text(t, "2014-01-06 10:00:00", "x", models.DirectionIn),
		text(t, "2014-01-06 10:01:00", "x", models.DirectionOut),
		// I-I: unanswered
		text(t, "2014-01-06 10:00:00", "y", models.DirectionIn),
		text(t, "2014-01-06 10:05:00", "y", models.DirectionIn),
		// O: initiated
		text(t, "2014-01-06 15:00:00", "z", models.DirectionOut),
	})

	opts := []engine.Option{engine.WithGroupBy(engine.GroupByNone)}

	res := compute(t, "response_rate_text", u, opts...)
	assert.InDelta(t, 0.5, scalar(t, res, "allweek", "allday", "callandtext"), 1e-9)

	res = compute(t, "percent_initiated_conversations", u, opts...)
	assert.InDelta(t, 1.0/3, scalar(t, res, "allweek", "allday", "callandtext"), 1e-9)

	res = compute(t, "response_delay_text", u, opts...)
	assert.InDelta(t, 60, scalar(t, res, "allweek", "allday", "callandtext", "mean"), 1e-9)

	res = compute(t, "active_days", u, opts...)
	assert.Equal(t, 1.0, scalar(t, res, "allweek", "allday", "callandtext"))

	res = compute(t, "number_of_contacts", u, opts...)
	assert.Equal(t, 3.0, scalar(t, res, "allweek", "allday", "text"))

	// no calls at all: zero bins under groupby none
	_, ok := res.Float("allweek", "allday", "call")
	assert.False(t, ok)
}

func TestContactIndicators(t *testing.T) {
	u := engine.NewUser("caller")
	u.SetRecords([]models.Event{
		call(t, "2014-01-06 09:00:00", "x", models.DirectionOut, 100, "a1"),
		call(t, "2014-01-06 10:00:00", "x", models.DirectionIn, 200, "a1"),
		call(t, "2014-01-06 11:00:00", "x", models.DirectionOut, 300, "a1"),
		call(t, "2014-01-06 20:00:00", "y", models.DirectionIn, 400, "a2"),
	})
	opts := []engine.Option{engine.WithGroupBy(engine.GroupByNone), engine.WithInteractions("call")}

	res := compute(t, "number_of_interactions", u, opts...)
	assert.Equal(t, 4.0, scalar(t, res, "allweek", "allday", "call"))

	res = compute(t, "percent_initiated_interactions", u, engine.WithGroupBy(engine.GroupByNone))
	assert.Equal(t, 0.5, scalar(t, res, "allweek", "allday", "call"))

	res = compute(t, "percent_nocturnal", u, opts...)
	assert.Equal(t, 0.25, scalar(t, res, "allweek", "allday", "call"))

	res = compute(t, "entropy_of_contacts", u, opts...)
	want := -(0.75*math.Log(0.75) + 0.25*math.Log(0.25))
	assert.InDelta(t, want, scalar(t, res, "allweek", "allday", "call"), 1e-9)

	res = compute(t, "normalized_entropy_of_contacts", u, opts...)
	assert.InDelta(t, want/math.Log(2), scalar(t, res, "allweek", "allday", "call"), 1e-9)

	res = compute(t, "interactions_per_contact", u, opts...)
	assert.Equal(t, 2.0, scalar(t, res, "allweek", "allday", "call", "mean"))
	assert.Equal(t, 1.0, scalar(t, res, "allweek", "allday", "call", "std"))

	res = compute(t, "call_duration", u, engine.WithGroupBy(engine.GroupByNone), engine.WithSummary(engine.SummaryExtended))
	assert.Equal(t, 250.0, scalar(t, res, "allweek", "allday", "call", "mean"))
	assert.Equal(t, 250.0, scalar(t, res, "allweek", "allday", "call", "median"))
	assert.Equal(t, 100.0, scalar(t, res, "allweek", "allday", "call", "min"))

	// gaps of 1h, 1h and 9h
	res = compute(t, "interevent_time", u, opts...)
	assert.InDelta(t, 11*3600.0/3, scalar(t, res, "allweek", "allday", "call", "mean"), 1e-9)
	_, ok := res.Float("allweek", "allday", "call", "max")
	assert.False(t, ok, "default summary carries mean and std only")

	res = compute(t, "interevent_time", u, append(opts, engine.WithSummary(engine.SummaryExtended))...)
	assert.Equal(t, 9*3600.0, scalar(t, res, "allweek", "allday", "call", "max"))

	// target ceil(3.2) = 4 interactions needs both contacts
	res = compute(t, "percent_pareto_interactions", u, opts...)
	assert.Equal(t, 0.5, scalar(t, res, "allweek", "allday", "call"))

	// durations x=600, y=400, target ceil(800): both contacts
	res = compute(t, "percent_pareto_durations", u, engine.WithGroupBy(engine.GroupByNone))
	assert.Equal(t, 0.5, scalar(t, res, "allweek", "allday", "call"))

	// out: x=2, y=0 over 4 interactions
	res = compute(t, "balance_of_contacts", u, opts...)
	assert.Equal(t, 0.25, scalar(t, res, "allweek", "allday", "call", "mean"))
}

func TestSpatialIndicators(t *testing.T) {
	u := engine.NewUser("walker")
	u.SetRecords([]models.Event{
		call(t, "2014-01-06 01:00:00", "x", models.DirectionOut, 10, "home"),
		call(t, "2014-01-06 02:00:00", "x", models.DirectionOut, 10, "home"),
		call(t, "2014-01-06 12:00:00", "x", models.DirectionOut, 10, "work"),
		call(t, "2014-01-06 12:10:00", "x", models.DirectionOut, 10, "work"),
		call(t, "2014-01-13 12:00:00", "x", models.DirectionOut, 10, "work"),
		call(t, "2014-01-13 23:00:00", "x", models.DirectionOut, 10, "home"),
	})
	u.SetAntennas(map[string]models.LatLng{
		"home": {Lat: 0, Lng: 0},
		"work": {Lat: 0, Lng: 1},
	})
	require.Equal(t, "home", u.Home().Antenna)

	none := engine.WithGroupBy(engine.GroupByNone)

	res := compute(t, "percent_at_home", u, none)
	assert.Equal(t, 0.6, scalar(t, res, "allweek", "allday"))

	res = compute(t, "number_of_antennas", u, none)
	assert.Equal(t, 2.0, scalar(t, res, "allweek", "allday"))

	res = compute(t, "entropy_of_antennas", u, none)
	want := -(0.6*math.Log(0.6) + 0.4*math.Log(0.4))
	assert.InDelta(t, want, scalar(t, res, "allweek", "allday"), 1e-9)

	res = compute(t, "frequent_antennas", u, none)
	assert.Equal(t, 2.0, scalar(t, res, "allweek", "allday"))

	// 3 slots at 0°, 2 at 1°: barycenter 0.4°, distances 0.4° and 0.6°
	res = compute(t, "radius_of_gyration", u, none)
	deg := 6371 * math.Pi / 180
	wantR := math.Sqrt(0.6*math.Pow(0.4*deg, 2) + 0.4*math.Pow(0.6*deg, 2))
	assert.InDelta(t, wantR, scalar(t, res, "allweek", "allday"), 1e-6)

	// week 1: home 2/3, work 1/3; week 2: home 1/2, work 1/2
	res = compute(t, "churn_rate", u)
	assert.InDelta(t, 1-3/math.Sqrt(10), scalar(t, res, "mean"), 1e-9)

	empty := engine.NewUser("empty")
	res = compute(t, "churn_rate", empty)
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":null,"std":null}`, string(b))

	res = compute(t, "percent_at_home", empty, none)
	_, ok := res.Float("allweek", "allday")
	assert.False(t, ok)
}

func TestRechargeIndicators(t *testing.T) {
	u := engine.NewUser("payer")
	u.SetRecharges([]models.Recharge{
		{DateTime: ts(t, "2014-01-01 10:00:00"), Amount: 10},
		{DateTime: ts(t, "2014-01-11 10:00:00"), Amount: 30},
		{DateTime: ts(t, "2014-01-21 10:00:00"), Amount: 60},
	})
	none := engine.WithGroupBy(engine.GroupByNone)

	res := compute(t, "number_of_recharges", u, none)
	assert.Equal(t, 3.0, scalar(t, res, "allweek", "allday"))

	res = compute(t, "amount_recharges", u, none)
	assert.Equal(t, 100.0/3, scalar(t, res, "allweek", "allday", "mean"))

	res = compute(t, "interevent_time_recharges", u, none)
	assert.Equal(t, 10*86400.0, scalar(t, res, "allweek", "allday", "mean"))

	// 60 + 30 >= 80
	res = compute(t, "percent_pareto_recharges", u, none)
	assert.InDelta(t, 2.0/3, scalar(t, res, "allweek", "allday"), 1e-9)

	// (10*10/2 + 30*10/2) / 20
	res = compute(t, "average_balance_recharges", u)
	v, ok := res.Float()
	require.True(t, ok)
	assert.Equal(t, 10.0, v)

	res = compute(t, "average_balance_recharges", engine.NewUser("nobody"))
	_, ok = res.Float()
	assert.False(t, ok)
}

func TestComputeConcurrentlySharesBins(t *testing.T) {
	u := engine.NewUser("busy")
	u.SetRecords([]models.Event{
		call(t, "2014-01-06 09:00:00", "x", models.DirectionOut, 100, "a1"),
		text(t, "2014-01-07 10:00:00", "y", models.DirectionIn),
		call(t, "2014-01-14 11:00:00", "x", models.DirectionIn, 300, "a1"),
	})

	names := []string{"number_of_contacts", "interevent_time", "number_of_interactions", "entropy_of_contacts"}
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ind, _ := Get(name)
			_, err := ind.Compute(u)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// every indicator above shares the default call/text weekly query
	assert.EqualValues(t, 1, u.Cache().Computations())
}
