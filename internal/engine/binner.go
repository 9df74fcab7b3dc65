package engine

import (
	"iter"
	"time"

	"github.com/jengzang/cdr-indicators/internal/models"
)

// SlotWidth is the length of one spatial binning slot
const SlotWidth = 30 * time.Minute

func slotKey(t time.Time) int {
	return ((t.Year()*1000+t.YearDay())*24+t.Hour())*2 + t.Minute()/30
}

// BinPositions collapses events into one representative position per
// 30-minute slot, in input order. Within a slot the most frequent position
// wins; among equally frequent positions the one seen last wins.
func BinPositions(events []models.Event) iter.Seq[models.Position] {
	return func(yield func(models.Position) bool) {
		for slot := range runs(events, slotKey) {
			if !yield(representative(slot)) {
				return
			}
		}
	}
}

type tally struct {
	pos   models.Position
	count int
	last  int
}

func representative(slot []models.Event) models.Position {
	// Position equality is not a hashable relation, slots are small
	var tallies []tally
	for i, e := range slot {
		found := false
		for j := range tallies {
			if tallies[j].pos.Equal(e.Position) {
				tallies[j].count++
				tallies[j].last = i
				found = true
				break
			}
		}
		if !found {
			tallies = append(tallies, tally{pos: e.Position, count: 1, last: i})
		}
	}

	best := tallies[0]
	for _, t := range tallies[1:] {
		if t.count > best.count || (t.count == best.count && t.last > best.last) {
			best = t
		}
	}
	return best.pos
}

// CollectPositions drains BinPositions into a slice
func CollectPositions(events []models.Event) []models.Position {
	positions := []models.Position{}
	for p := range BinPositions(events) {
		positions = append(positions, p)
	}
	return positions
}
