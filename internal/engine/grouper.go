package engine

import (
	"iter"
	"time"
)

// periodKey maps a timestamp to an ordered integer identifying its calendar
// period. Keys of later periods compare greater.
func periodKey(unit GroupBy) func(time.Time) int {
	switch unit {
	case GroupByDay:
		return func(t time.Time) int { return t.Year()*10000 + int(t.Month())*100 + t.Day() }
	case GroupByWeek:
		return func(t time.Time) int {
			y, w := t.ISOWeek()
			return y*100 + w
		}
	case GroupByMonth:
		return func(t time.Time) int { return t.Year()*100 + int(t.Month()) }
	case GroupByYear:
		return func(t time.Time) int { return t.Year() }
	default:
		return func(time.Time) int { return 0 }
	}
}

// periodStart truncates t to the first instant of its period
func periodStart(t time.Time, unit GroupBy) time.Time {
	y, m, d := t.Date()
	switch unit {
	case GroupByWeek:
		// ISO weeks start on Monday
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
	case GroupByMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case GroupByYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
}

// nextPeriod advances a period start by one unit. Starts are normalised to
// the first day of the period, so month and year steps never overflow.
func nextPeriod(t time.Time, unit GroupBy) time.Time {
	switch unit {
	case GroupByWeek:
		return t.AddDate(0, 0, 7)
	case GroupByMonth:
		return t.AddDate(0, 1, 0)
	case GroupByYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// runs yields maximal runs of consecutive items sharing a period key. Input
// must be sorted by time.
func runs[T Timed](items []T, key func(time.Time) int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		start := 0
		for i := 1; i <= len(items); i++ {
			if i < len(items) && key(items[i].At()) == key(items[start].At()) {
				continue
			}
			if !yield(items[start:i:i]) {
				return
			}
			start = i
		}
	}
}

// GroupCompact partitions chronologically sorted items into bins, one per
// calendar period that holds at least one item
func GroupCompact[T Timed](items []T, unit GroupBy) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		if len(items) == 0 {
			return
		}
		if unit == GroupByNone {
			yield(items)
			return
		}
		for chunk := range runs(items, periodKey(unit)) {
			if !yield(chunk) {
				return
			}
		}
	}
}

// GroupPadded partitions chronologically sorted items into bins, one per
// calendar period between the first and the last item inclusive. Periods
// without items yield empty bins.
func GroupPadded[T Timed](items []T, unit GroupBy) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		if len(items) == 0 {
			return
		}
		if unit == GroupByNone {
			yield(items)
			return
		}

		key := periodKey(unit)
		cursor := periodStart(items[0].At(), unit)
		for chunk := range runs(items, key) {
			k := key(chunk[0].At())
			for key(cursor) < k {
				if !yield([]T{}) {
					return
				}
				cursor = nextPeriod(cursor, unit)
			}
			if !yield(chunk) {
				return
			}
			cursor = nextPeriod(cursor, unit)
		}
	}
}

// GroupRecords dispatches to GroupCompact or GroupPadded
func GroupRecords[T Timed](items []T, unit GroupBy, filterEmpty bool) iter.Seq[[]T] {
	if filterEmpty {
		return GroupCompact(items, unit)
	}
	return GroupPadded(items, unit)
}
