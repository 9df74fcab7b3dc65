package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/jengzang/cdr-indicators/internal/models"
)

// Timed is anything carrying a timestamp: events and recharges
type Timed interface {
	At() time.Time
}

// TimeOfDay is a wall-clock offset since midnight
type TimeOfDay time.Duration

// Clock builds a TimeOfDay from hours and minutes
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// TimeOfDayOf returns the wall-clock time of t
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond()))
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// NightWindow is the (start, end) wall-clock pair delimiting the night
type NightWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

// DefaultNightWindow is 19:00 to 07:00
var DefaultNightWindow = NightWindow{Start: Clock(19, 0), End: Clock(7, 0)}

// IsNight reports whether t falls inside the night window. A window with
// Start < End lies within one day; otherwise it wraps midnight.
func (w NightWindow) IsNight(t time.Time) bool {
	tod := TimeOfDayOf(t)
	if w.Start < w.End {
		return w.Start < tod && tod < w.End
	}
	return !(w.End < tod && tod < w.Start)
}

// DefaultWeekend is Saturday and Sunday
var DefaultWeekend = []time.Weekday{time.Saturday, time.Sunday}

// Calendar holds the subject-level settings the record filter depends on
type Calendar struct {
	Weekend []time.Weekday
	Night   NightWindow
}

// IsWeekend reports whether t falls on a weekend day
func (c Calendar) IsWeekend(t time.Time) bool {
	return slices.Contains(c.Weekend, t.Weekday())
}

// validateParams checks a parameter combination before any filtering
func validateParams(p Params) error {
	for _, param := range p {
		accepted, ok := acceptedValues[param.Name]
		if !ok {
			return invalidParameter("dimension", param.Name, []string{DimPartOfWeek, DimPartOfDay, DimInteraction})
		}
		if !slices.Contains(accepted, param.Value) {
			return invalidParameter(param.Name, param.Value, accepted)
		}
	}
	return nil
}

// FilterEvents returns the events matching the interaction, part of week and
// part of day of p, in their original order
func FilterEvents(events []models.Event, p Params, cal Calendar) ([]models.Event, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	if interaction, ok := p.Get(DimInteraction); ok {
		events = keep(events, interactionFilter(interaction))
	}
	return filterTime(events, p, cal), nil
}

// FilterRecharges applies the part of week and part of day of p to recharges.
// Recharges have no interaction.
func FilterRecharges(recharges []models.Recharge, p Params, cal Calendar) ([]models.Recharge, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}
	return filterTime(recharges, p, cal), nil
}

func interactionFilter(interaction string) func(models.Event) bool {
	if interaction == CallAndText {
		return func(e models.Event) bool {
			return e.Interaction == models.InteractionCall || e.Interaction == models.InteractionText
		}
	}
	kind := models.Interaction(interaction)
	return func(e models.Event) bool { return e.Interaction == kind }
}

func filterTime[T Timed](items []T, p Params, cal Calendar) []T {
	switch v, _ := p.Get(DimPartOfWeek); v {
	case Weekday:
		items = keep(items, func(r T) bool { return !cal.IsWeekend(r.At()) })
	case Weekend:
		items = keep(items, func(r T) bool { return cal.IsWeekend(r.At()) })
	}

	switch v, _ := p.Get(DimPartOfDay); v {
	case Day:
		items = keep(items, func(r T) bool { return !cal.Night.IsNight(r.At()) })
	case Night:
		items = keep(items, func(r T) bool { return cal.Night.IsNight(r.At()) })
	}
	return items
}

func keep[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}
