package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/cdr-indicators/internal/models"
)

func TestGroupCompact_WeeklyScenario(t *testing.T) {
	events := []models.Event{
		event(t, "2014-08-24 10:00:00", models.InteractionText, "a"),
		event(t, "2014-09-04 10:00:00", models.InteractionText, "a"),
		event(t, "2014-09-11 10:00:00", models.InteractionText, "a"),
	}

	bins := collect(GroupCompact(events, GroupByWeek))
	require.Len(t, bins, 3)
	for i, bin := range bins {
		require.Len(t, bin, 1)
		assert.Equal(t, events[i].DateTime, bin[0].DateTime)
	}
}

func TestGroup_EmptyInput(t *testing.T) {
	for _, unit := range []GroupBy{GroupByNone, GroupByDay, GroupByWeek, GroupByMonth, GroupByYear} {
		assert.Empty(t, collect(GroupCompact([]models.Event{}, unit)), unit)
		assert.Empty(t, collect(GroupPadded([]models.Event{}, unit)), unit)
	}
}

func TestGroup_NoneIsOneBin(t *testing.T) {
	events := []models.Event{
		event(t, "2014-01-01 10:00:00", models.InteractionCall, "a"),
		event(t, "2015-06-01 10:00:00", models.InteractionCall, "a"),
	}
	for _, filterEmpty := range []bool{true, false} {
		bins := collect(GroupRecords(events, GroupByNone, filterEmpty))
		require.Len(t, bins, 1)
		assert.Len(t, bins[0], 2)
	}
}

func TestGroupCompact_Partition(t *testing.T) {
	events := []models.Event{
		event(t, "2014-01-01 10:00:00", models.InteractionCall, "a"),
		event(t, "2014-01-01 23:59:59", models.InteractionCall, "a"),
		event(t, "2014-01-02 00:00:00", models.InteractionText, "b"),
		event(t, "2014-01-09 08:00:00", models.InteractionText, "b"),
		event(t, "2014-03-30 08:00:00", models.InteractionText, "b"),
		event(t, "2015-01-01 08:00:00", models.InteractionText, "b"),
	}

	for _, unit := range []GroupBy{GroupByDay, GroupByWeek, GroupByMonth, GroupByYear} {
		var flat []models.Event
		for _, bin := range collect(GroupCompact(events, unit)) {
			assert.NotEmpty(t, bin, unit)
			flat = append(flat, bin...)
		}
		assert.Equal(t, events, flat, unit)
	}

	assert.Len(t, collect(GroupCompact(events, GroupByDay)), 5)
	assert.Len(t, collect(GroupCompact(events, GroupByMonth)), 3)
	assert.Len(t, collect(GroupCompact(events, GroupByYear)), 2)
}

func TestGroupPadded_Superset(t *testing.T) {
	events := []models.Event{
		event(t, "2014-08-24 10:00:00", models.InteractionText, "a"),
		event(t, "2014-09-04 10:00:00", models.InteractionText, "a"),
		event(t, "2014-09-11 10:00:00", models.InteractionText, "a"),
	}

	for _, unit := range []GroupBy{GroupByDay, GroupByWeek, GroupByMonth, GroupByYear} {
		compact := collect(GroupCompact(events, unit))
		padded := collect(GroupPadded(events, unit))
		require.GreaterOrEqual(t, len(padded), len(compact), unit)

		var nonEmpty [][]models.Event
		for _, bin := range padded {
			if len(bin) > 0 {
				nonEmpty = append(nonEmpty, bin)
			}
		}
		assert.Equal(t, compact, nonEmpty, unit)
	}

	// 2014-W34, W35 (empty), W36, W37
	weeks := collect(GroupPadded(events, GroupByWeek))
	require.Len(t, weeks, 4)
	assert.Empty(t, weeks[1])
	assert.Len(t, collect(GroupPadded(events, GroupByDay)), 19)
}

func TestGroupPadded_MonthWalkFromEndOfMonth(t *testing.T) {
	events := []models.Event{
		event(t, "2015-01-31 10:00:00", models.InteractionCall, "a"),
		event(t, "2015-02-28 10:00:00", models.InteractionCall, "a"),
		event(t, "2015-05-31 10:00:00", models.InteractionCall, "a"),
	}

	bins := collect(GroupPadded(events, GroupByMonth))
	require.Len(t, bins, 5)
	assert.Len(t, bins[0], 1)
	assert.Len(t, bins[1], 1)
	assert.Empty(t, bins[2])
	assert.Empty(t, bins[3])
	assert.Len(t, bins[4], 1)
}

func TestGroupPadded_LeapYear(t *testing.T) {
	events := []models.Event{
		event(t, "2012-02-29 10:00:00", models.InteractionCall, "a"),
		event(t, "2014-03-01 10:00:00", models.InteractionCall, "a"),
	}
	bins := collect(GroupPadded(events, GroupByYear))
	require.Len(t, bins, 3)
	assert.Empty(t, bins[1])
}

func TestGroupPadded_ISOWeekAcrossYears(t *testing.T) {
	// 2014-12-29 belongs to ISO week 2015-W01
	events := []models.Event{
		event(t, "2014-12-22 10:00:00", models.InteractionCall, "a"),
		event(t, "2014-12-29 10:00:00", models.InteractionCall, "a"),
		event(t, "2015-01-04 10:00:00", models.InteractionCall, "a"),
		event(t, "2015-01-12 10:00:00", models.InteractionCall, "a"),
	}
	bins := collect(GroupPadded(events, GroupByWeek))
	require.Len(t, bins, 4)
	assert.Len(t, bins[0], 1)
	assert.Len(t, bins[1], 2)
	assert.Empty(t, bins[2])
	assert.Len(t, bins[3], 1)
}

func TestGroupPadded_StopsEarly(t *testing.T) {
	events := []models.Event{
		event(t, "2014-01-01 10:00:00", models.InteractionCall, "a"),
		event(t, "2014-01-02 10:00:00", models.InteractionCall, "a"),
		event(t, "2014-01-03 10:00:00", models.InteractionCall, "a"),
	}
	n := 0
	for range GroupPadded(events, GroupByDay) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}
