package galaxy

import (
	"sort"
	"time"
)

// EventFilter narrows a list of fleet events. Zero values mean "any".
type EventFilter struct {
	Missions      []Mission
	Origin        []Coordinate
	Dest          []Coordinate
	ArrivesAfter  time.Time
	ArrivesBefore time.Time
	ReturnFlight  *bool
}

func (f EventFilter) matches(e FleetEvent) bool {
	if len(f.Missions) > 0 && !containsMission(f.Missions, e.Mission) {
		return false
	}
	if len(f.Origin) > 0 && !containsCoord(f.Origin, e.Origin) {
		return false
	}
	if len(f.Dest) > 0 && !containsCoord(f.Dest, e.Dest) {
		return false
	}
	if !f.ArrivesAfter.IsZero() && !e.ArrivalAt.After(f.ArrivesAfter) {
		return false
	}
	if !f.ArrivesBefore.IsZero() && !e.ArrivalAt.Before(f.ArrivesBefore) {
		return false
	}
	if f.ReturnFlight != nil && e.ReturnFlight != *f.ReturnFlight {
		return false
	}
	return true
}

// FilterEvents returns events matching the filter, in input order.
func FilterEvents(events []FleetEvent, f EventFilter) []FleetEvent {
	var out []FleetEvent
	for _, e := range events {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// MovementFilter narrows a list of own in-flight fleets.
type MovementFilter struct {
	Missions     []Mission
	Origin       []Coordinate
	Dest         []Coordinate
	Ships        FleetComposition
	ReturnFlight *bool
}

func FilterFleets(fleets []FleetMovement, f MovementFilter) []FleetMovement {
	var out []FleetMovement
	for _, fl := range fleets {
		if len(f.Missions) > 0 && !containsMission(f.Missions, fl.Mission) {
			continue
		}
		if len(f.Origin) > 0 && !containsCoord(f.Origin, fl.Origin) {
			continue
		}
		if len(f.Dest) > 0 && !containsCoord(f.Dest, fl.Dest) {
			continue
		}
		if f.Ships != nil && !fl.Ships.Equal(f.Ships) {
			continue
		}
		if f.ReturnFlight != nil && fl.ReturnFlight != *f.ReturnFlight {
			continue
		}
		out = append(out, fl)
	}
	return out
}

// EarliestEvent picks the event arriving first. Ties break on the numeric
// event id so the choice is stable across cycles.
func EarliestEvent(events []FleetEvent) (FleetEvent, bool) {
	if len(events) == 0 {
		return FleetEvent{}, false
	}
	best := events[0]
	for _, e := range events[1:] {
		if e.ArrivalAt.Before(best.ArrivalAt) ||
			(e.ArrivalAt.Equal(best.ArrivalAt) && e.ID < best.ID) {
			best = e
		}
	}
	return best, true
}

// LatestEvent picks the event arriving last, with the same tie-break.
func LatestEvent(events []FleetEvent) (FleetEvent, bool) {
	if len(events) == 0 {
		return FleetEvent{}, false
	}
	best := events[0]
	for _, e := range events[1:] {
		if e.ArrivalAt.After(best.ArrivalAt) ||
			(e.ArrivalAt.Equal(best.ArrivalAt) && e.ID > best.ID) {
			best = e
		}
	}
	return best, true
}

// EarliestPerDestination collapses events to the first arrival at each
// destination, ordered by arrival time.
func EarliestPerDestination(events []FleetEvent) []FleetEvent {
	byDest := map[Coordinate]FleetEvent{}
	for _, e := range events {
		prev, ok := byDest[e.Dest]
		if !ok || e.ArrivalAt.Before(prev.ArrivalAt) ||
			(e.ArrivalAt.Equal(prev.ArrivalAt) && e.ID < prev.ID) {
			byDest[e.Dest] = e
		}
	}
	out := make([]FleetEvent, 0, len(byDest))
	for _, e := range byDest {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ArrivalAt.Equal(out[j].ArrivalAt) {
			return out[i].ArrivalAt.Before(out[j].ArrivalAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func containsMission(list []Mission, m Mission) bool {
	for _, v := range list {
		if v == m {
			return true
		}
	}
	return false
}

func containsCoord(list []Coordinate, c Coordinate) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

// BoolPtr is a convenience for filter literals.
func BoolPtr(v bool) *bool { return &v }
