package indicators

import (
	"math"
	"time"

	"github.com/jengzang/cdr-indicators/internal/engine"
	"github.com/jengzang/cdr-indicators/internal/models"
	"github.com/jengzang/cdr-indicators/internal/stats"
)

// ParetoPercentage is the share of interactions, durations or locations the
// pareto indicators look for
const ParetoPercentage = 0.8

// ConversationGap is the silence that ends a text conversation
const ConversationGap = time.Hour

func init() {
	Register(records("active_days", combined, activeDays))
	Register(records("number_of_contacts", callAndText, numberOfContacts))
	Register(records("call_duration", callOnly, callDuration))
	Register(records("percent_nocturnal", callAndText, percentNocturnal))
	Register(records("percent_initiated_interactions", callOnly, percentInitiatedInteractions))
	Register(records("percent_initiated_conversations", combined, percentInitiatedConversations))
	Register(records("response_rate_text", combined, responseRateText))
	Register(records("response_delay_text", combined, responseDelayText))
	Register(records("entropy_of_contacts", callAndText, entropyOfContacts))
	Register(records("normalized_entropy_of_contacts", callAndText, normalizedEntropyOfContacts))
	Register(records("interactions_per_contact", callAndText, interactionsPerContact))
	Register(records("interevent_time", callAndText, intereventTime))
	Register(records("percent_pareto_interactions", callAndText, percentParetoInteractions))
	Register(records("percent_pareto_durations", callOnly, percentParetoDurations))
	Register(records("balance_of_contacts", callAndText, balanceOfContacts))
	Register(records("number_of_interactions", callAndText, numberOfInteractions))
}

func contacts(events []models.Event) *counter {
	c := newCounter()
	for _, e := range events {
		c.add(e.CorrespondentID, 1)
	}
	return c
}

// byContact splits events per correspondent, keeping chronological order
// within each contact and first-seen order across contacts
func byContact(events []models.Event) [][]models.Event {
	index := make(map[string]int)
	var out [][]models.Event
	for _, e := range events {
		i, ok := index[e.CorrespondentID]
		if !ok {
			i = len(out)
			index[e.CorrespondentID] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], e)
	}
	return out
}

// conversations groups texts with one contact into conversations. A
// conversation ends on a call or after ConversationGap without activity.
func conversations(events []models.Event) [][]models.Event {
	var out [][]models.Event
	var current []models.Event
	var last time.Time
	for i, e := range events {
		if i == 0 || e.DateTime.Sub(last) < ConversationGap {
			if e.Interaction == models.InteractionText {
				current = append(current, e)
			} else if len(current) > 0 {
				out = append(out, current)
				current = nil
			}
		} else {
			if len(current) > 0 {
				out = append(out, current)
			}
			current = nil
			if e.Interaction != models.InteractionCall {
				current = []models.Event{e}
			}
		}
		last = e.DateTime
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

func activeDays(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	days := make(map[string]struct{})
	for _, e := range bin.Events {
		days[e.DateTime.Format(time.DateOnly)] = struct{}{}
	}
	return stats.Num(float64(len(days))), nil
}

func numberOfContacts(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	return stats.Num(float64(len(contacts(bin.Events).keys))), nil
}

func callDuration(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	durations := make([]float64, 0, len(bin.Events))
	for _, e := range bin.Events {
		durations = append(durations, float64(e.Duration()))
	}
	return stats.SummaryStats(durations), nil
}

func percentNocturnal(bin engine.Bin, u *engine.User) (stats.Value, error) {
	if len(bin.Events) == 0 {
		return stats.Num(0), nil
	}
	night := u.Calendar().Night
	n := 0
	for _, e := range bin.Events {
		if night.IsNight(e.DateTime) {
			n++
		}
	}
	return stats.Num(float64(n) / float64(len(bin.Events))), nil
}

func percentInitiatedInteractions(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	if len(bin.Events) == 0 {
		return stats.Num(0), nil
	}
	initiated := 0
	for _, e := range bin.Events {
		if e.Direction == models.DirectionOut {
			initiated++
		}
	}
	return stats.Num(float64(initiated) / float64(len(bin.Events))), nil
}

func percentInitiatedConversations(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	initiated, total := 0, 0
	for _, events := range byContact(bin.Events) {
		for _, conv := range conversations(events) {
			total++
			if conv[0].Direction == models.DirectionOut {
				initiated++
			}
		}
	}
	if total == 0 {
		return stats.Num(0), nil
	}
	return stats.Num(float64(initiated) / float64(total)), nil
}

// responseRateText is the share of conversations started by an incoming text
// that the subject answered
func responseRateText(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	if len(bin.Events) == 0 {
		return nil, nil
	}
	received, responded := 0, 0
	for _, events := range byContact(bin.Events) {
		for _, conv := range conversations(events) {
			first := conv[0]
			if first.Direction != models.DirectionIn || first.Interaction != models.InteractionText {
				continue
			}
			received++
			for _, e := range conv {
				if e.Direction == models.DirectionOut {
					responded++
					break
				}
			}
		}
	}
	if received == 0 {
		return nil, nil
	}
	return stats.Num(float64(responded) / float64(received)), nil
}

// responseDelayText is the distribution of delays, in seconds, between an
// incoming text and the reply that follows it within a conversation
func responseDelayText(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	var delays []float64
	for _, events := range byContact(bin.Events) {
		for _, conv := range conversations(events) {
			for i := 1; i < len(conv); i++ {
				a, b := conv[i-1], conv[i]
				if a.Direction != models.DirectionIn || b.Direction != models.DirectionOut {
					continue
				}
				if d := b.DateTime.Sub(a.DateTime).Seconds(); d > 0 {
					delays = append(delays, d)
				}
			}
		}
	}
	return stats.SummaryStats(delays), nil
}

func entropyOfContacts(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	e, ok := stats.Entropy(contacts(bin.Events).values())
	if !ok {
		return nil, nil
	}
	return stats.Num(e), nil
}

func normalizedEntropyOfContacts(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	e, ok := stats.NormalizedEntropy(contacts(bin.Events).values())
	if !ok {
		return nil, nil
	}
	return stats.Num(e), nil
}

func interactionsPerContact(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	return stats.SummaryStats(contacts(bin.Events).values()), nil
}

func intereventTime(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	return stats.SummaryStats(intervals(bin.Events)), nil
}

func intervals[T engine.Timed](items []T) []float64 {
	if len(items) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(items)-1)
	for i := 1; i < len(items); i++ {
		out = append(out, items[i].At().Sub(items[i-1].At()).Seconds())
	}
	return out
}

// percentParetoInteractions is the share of contacts accounting for 80% of
// the interactions, relative to the number of interactions
func percentParetoInteractions(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	if len(bin.Events) == 0 {
		return nil, nil
	}
	c := contacts(bin.Events)
	target := math.Ceil(c.total() * ParetoPercentage)
	return stats.Num(float64(c.paretoCount(target)) / float64(len(bin.Events))), nil
}

func percentParetoDurations(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	if len(bin.Events) == 0 {
		return nil, nil
	}
	c := newCounter()
	for _, e := range bin.Events {
		if e.Interaction == models.InteractionCall {
			c.add(e.CorrespondentID, float64(e.Duration()))
		}
	}
	target := math.Ceil(c.total() * ParetoPercentage)
	return stats.Num(float64(c.paretoCount(target)) / float64(len(bin.Events))), nil
}

// balanceOfContacts is the distribution of outgoing interactions per contact,
// weighted by the total number of interactions
func balanceOfContacts(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	out := newCounter()
	all := contacts(bin.Events)
	for _, e := range bin.Events {
		if e.Direction == models.DirectionOut {
			out.add(e.CorrespondentID, 1)
		}
	}
	total := all.total()
	balance := make([]float64, 0, len(all.keys))
	for _, k := range all.keys {
		balance = append(balance, out.counts[k]/total)
	}
	return stats.SummaryStats(balance), nil
}

func numberOfInteractions(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	return stats.Num(float64(len(bin.Events))), nil
}
