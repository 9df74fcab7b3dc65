package models

import "time"

// Interaction is the kind of a communication or location record
type Interaction string

const (
	InteractionCall Interaction = "call"
	InteractionText Interaction = "text"
	InteractionGPS  Interaction = "gps"
	InteractionNone Interaction = ""
)

// Direction is the direction of an interaction relative to the subject
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionNone Direction = ""
)

// Event represents a single call detail record or GPS fix of a subject.
// Events are immutable once loaded; a subject keeps them sorted by DateTime.
type Event struct {
	Interaction     Interaction `json:"interaction"`
	Direction       Direction   `json:"direction,omitempty"`
	CorrespondentID string      `json:"correspondentId,omitempty"`
	DateTime        time.Time   `json:"datetime"`
	CallDuration    *int64      `json:"callDuration,omitempty"` // Seconds, calls only
	Position        Position    `json:"position"`
}

// At returns the event timestamp
func (e Event) At() time.Time {
	return e.DateTime
}

// Duration returns the call duration in seconds, or 0 for non-calls
func (e Event) Duration() int64 {
	if e.CallDuration == nil {
		return 0
	}
	return *e.CallDuration
}

// Recharge represents a mobile phone top-up
type Recharge struct {
	DateTime   time.Time `json:"datetime"`
	Amount     float64   `json:"amount"`
	RetailerID string    `json:"retailerId,omitempty"`
}

// At returns the recharge timestamp
func (r Recharge) At() time.Time {
	return r.DateTime
}
