package engine

import (
	"iter"
	"testing"
	"time"

	"github.com/jengzang/cdr-indicators/internal/models"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", s, err)
	}
	return ts
}

func event(t *testing.T, s string, kind models.Interaction, antenna string) models.Event {
	t.Helper()
	e := models.Event{
		Interaction:     kind,
		Direction:       models.DirectionOut,
		CorrespondentID: "c1",
		DateTime:        at(t, s),
		Position:        models.Position{Antenna: antenna},
	}
	if kind == models.InteractionCall {
		d := int64(60)
		e.CallDuration = &d
	}
	return e
}

func collect[T any](seq iter.Seq[[]T]) [][]T {
	var out [][]T
	for chunk := range seq {
		out = append(out, chunk)
	}
	return out
}
