package galaxy

import (
	"sort"
	"time"
)

// Body is a planet or moon owned by the account, with whatever was
// stationed there when the snapshot was taken.
type Body struct {
	Coords    Coordinate       `json:"coords"`
	Name      string           `json:"name"`
	Resources Resources        `json:"resources"`
	Stationed FleetComposition `json:"stationed"`
}

// DebrisField is a salvageable pile of resources at a coordinate, reported
// by a galaxy scan.
type DebrisField struct {
	Coords    Coordinate `json:"coords"`
	Resources Resources  `json:"resources"`
}

// Snapshot is one internally consistent read of the account state. The
// agent makes every decision of a cycle against a single snapshot.
type Snapshot struct {
	TakenAt            time.Time       `json:"taken_at"`
	Bodies             []Body          `json:"bodies"`
	Events             []FleetEvent    `json:"events"`
	Fleets             []FleetMovement `json:"fleets"`
	FreeFleetSlots     int             `json:"free_fleet_slots"`
	FreeExpeditionSlot int             `json:"free_expedition_slots"`
	Discoverer         bool            `json:"discoverer"`
}

// BodyAt finds the owned body at the given coordinates, nil if not owned.
func (s Snapshot) BodyAt(coords Coordinate) *Body {
	for i := range s.Bodies {
		if s.Bodies[i].Coords == coords {
			return &s.Bodies[i]
		}
	}
	return nil
}

// OwnsCoords reports whether the coordinates belong to one of the
// account's bodies.
func (s Snapshot) OwnsCoords(coords Coordinate) bool {
	return s.BodyAt(coords) != nil
}

// FleetByID finds an own in-flight fleet by mission id, nil if gone.
func (s Snapshot) FleetByID(id MissionID) *FleetMovement {
	for i := range s.Fleets {
		if s.Fleets[i].ID == id {
			return &s.Fleets[i]
		}
	}
	return nil
}

// SortedBodies returns the bodies in coordinate order so per-cycle
// iteration is stable.
func (s Snapshot) SortedBodies() []Body {
	out := make([]Body, len(s.Bodies))
	copy(out, s.Bodies)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Coords.Less(out[j].Coords)
	})
	return out
}
