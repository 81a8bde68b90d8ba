package warden

import (
	"time"

	"fleetwarden/internal/domain/galaxy"
)

// RepeatForever marks an expedition definition with no repeat budget.
const RepeatForever = -1

// ExpeditionDefinition is a user-authored template for a recurring
// expedition flight.
type ExpeditionDefinition struct {
	ID      string                  `json:"id"`
	Origin  galaxy.Coordinate       `json:"origin"`
	Dest    *galaxy.Coordinate      `json:"dest,omitempty"` // default: (origin.G, origin.S, 16)
	Ships   galaxy.FleetComposition `json:"ships"`
	Cargo   galaxy.Resources        `json:"cargo"`
	Speed   int                     `json:"speed"` // percent, 10..100
	Holding time.Duration           `json:"holding"`
	Repeat  int                     `json:"repeat"` // RepeatForever or remaining count
	Enabled bool                    `json:"enabled"`
}

// Destination resolves the explicit destination or the default deep-space
// slot in the origin's system.
func (d ExpeditionDefinition) Destination() galaxy.Coordinate {
	if d.Dest != nil {
		return *d.Dest
	}
	return galaxy.Coordinate{
		Galaxy:   d.Origin.Galaxy,
		System:   d.Origin.System,
		Position: galaxy.DeepSpacePosition,
		Type:     galaxy.TypePlanet,
	}
}

type ExpeditionPhase string

const (
	PhaseIdle     ExpeditionPhase = "idle"
	PhaseOutbound ExpeditionPhase = "outbound"
)

// ExpeditionRunState is the live side of a definition: which fleet is
// flying for it and how much budget is left.
type ExpeditionRunState struct {
	DefinitionID string           `json:"definition_id"`
	FleetID      galaxy.MissionID `json:"fleet_id,omitempty"` // 0 = no fleet in flight
	Remaining    int              `json:"remaining"`
	// Budget is the definition's Repeat at the time the state was seeded.
	// A re-saved definition with a different Repeat re-arms Remaining.
	Budget     int             `json:"budget"`
	Phase      ExpeditionPhase `json:"phase"`
	LastSentAt time.Time       `json:"last_sent_at,omitzero"`
}

func (s ExpeditionRunState) Running() bool {
	return s.FleetID != 0
}

// Exhausted reports whether the repeat budget is spent. Definitions with
// RepeatForever never exhaust.
func (s ExpeditionRunState) Exhausted() bool {
	return s.Remaining == 0
}
