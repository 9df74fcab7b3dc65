package models

import "fmt"

// LatLng is a geographic coordinate in degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Position is the location of a subject at the time of an event.
// It carries an antenna identifier, a raw coordinate, or both.
type Position struct {
	Antenna  string  `json:"antenna,omitempty"`
	Location *LatLng `json:"location,omitempty"`
}

// IsZero reports whether the position carries neither an antenna nor a location
func (p Position) IsZero() bool {
	return p.Antenna == "" && p.Location == nil
}

// Equal compares two positions by antenna when both have one, otherwise by
// coordinate when both have one. Two empty positions are equal.
func (p Position) Equal(o Position) bool {
	if p.Antenna != "" && o.Antenna != "" {
		return p.Antenna == o.Antenna
	}
	if p.Location != nil && o.Location != nil {
		return *p.Location == *o.Location
	}
	return p.IsZero() && o.IsZero()
}

// String renders the position the way it was identified
func (p Position) String() string {
	switch {
	case p.Antenna != "" && p.Location != nil:
		return fmt.Sprintf("Position(antenna=%s, location=(%g, %g))", p.Antenna, p.Location.Lat, p.Location.Lng)
	case p.Antenna != "":
		return fmt.Sprintf("Position(antenna=%s)", p.Antenna)
	case p.Location != nil:
		return fmt.Sprintf("Position(location=(%g, %g))", p.Location.Lat, p.Location.Lng)
	default:
		return "Position()"
	}
}

// Resolve returns the coordinate of the position, looking the antenna up in
// antennas when the position has no coordinate of its own
func (p Position) Resolve(antennas map[string]LatLng) (LatLng, bool) {
	if p.Location != nil {
		return *p.Location, true
	}
	if p.Antenna != "" {
		ll, ok := antennas[p.Antenna]
		return ll, ok
	}
	return LatLng{}, false
}
