package galaxy

import "time"

type Mission int

const (
	MissionUnknown      Mission = 0
	MissionAttack       Mission = 1
	MissionACSAttack    Mission = 2
	MissionTransport    Mission = 3
	MissionDeployment   Mission = 4
	MissionDefend       Mission = 5
	MissionEspionage    Mission = 6
	MissionColonization Mission = 7
	MissionHarvest      Mission = 8
	MissionDestroy      Mission = 9
	MissionMissile      Mission = 10
	MissionExpedition   Mission = 15
	MissionTrade        Mission = 16
)

func (m Mission) String() string {
	switch m {
	case MissionAttack:
		return "attack"
	case MissionACSAttack:
		return "acs_attack"
	case MissionTransport:
		return "transport"
	case MissionDeployment:
		return "deployment"
	case MissionDefend:
		return "defend"
	case MissionEspionage:
		return "espionage"
	case MissionColonization:
		return "colonization"
	case MissionHarvest:
		return "harvest"
	case MissionDestroy:
		return "destroy"
	case MissionMissile:
		return "missile"
	case MissionExpedition:
		return "expedition"
	case MissionTrade:
		return "trade"
	default:
		return "unknown"
	}
}

// FleetComposition maps ship type to count. A nil map is an empty fleet.
type FleetComposition map[Ship]int

// HasShips reports whether at least one ship is present.
func (f FleetComposition) HasShips() bool {
	for _, n := range f {
		if n > 0 {
			return true
		}
	}
	return false
}

// Contains reports whether f has at least the ships required.
func (f FleetComposition) Contains(required FleetComposition) bool {
	for ship, n := range required {
		if n > 0 && f[ship] < n {
			return false
		}
	}
	return true
}

// OnlyProbes reports whether espionage probes are the only ship type.
// Probe-only flights are scouting, not an attack worth reacting to.
func (f FleetComposition) OnlyProbes() bool {
	if !f.HasShips() {
		return false
	}
	for ship, n := range f {
		if n > 0 && ship != EspionageProbe {
			return false
		}
	}
	return true
}

// Movable returns the subset of ships that can actually leave the body.
func (f FleetComposition) Movable() FleetComposition {
	out := FleetComposition{}
	for ship, n := range f {
		if n > 0 && ship.CanMove() {
			out[ship] = n
		}
	}
	return out
}

func (f FleetComposition) Clone() FleetComposition {
	out := make(FleetComposition, len(f))
	for ship, n := range f {
		out[ship] = n
	}
	return out
}

// Equal compares compositions ignoring zero-count entries.
func (f FleetComposition) Equal(o FleetComposition) bool {
	for ship, n := range f {
		if n > 0 && o[ship] != n {
			return false
		}
	}
	for ship, n := range o {
		if n > 0 && f[ship] != n {
			return false
		}
	}
	return true
}

type MissionID int64

// FleetEvent is a predicted arrival visible on the event list. For hostile
// fleets the composition may be obscured, in which case ShipsKnown is false
// and Ships is empty.
type FleetEvent struct {
	ID           MissionID        `json:"id"`
	Mission      Mission          `json:"mission"`
	Origin       Coordinate       `json:"origin"`
	Dest         Coordinate       `json:"dest"`
	ArrivalAt    time.Time        `json:"arrival_at"`
	ReturnFlight bool             `json:"return_flight"`
	ShipsKnown   bool             `json:"ships_known"`
	Ships        FleetComposition `json:"ships,omitempty"`
}

// FleetMovement is one of the account's own fleets in flight, as seen on
// the movement page. ArrivalAt is the arrival at the destination; for a
// return flight it is the arrival back at the origin.
type FleetMovement struct {
	ID           MissionID        `json:"id"`
	Mission      Mission          `json:"mission"`
	Origin       Coordinate       `json:"origin"`
	Dest         Coordinate       `json:"dest"`
	Ships        FleetComposition `json:"ships"`
	Cargo        Resources        `json:"cargo"`
	DepartedAt   time.Time        `json:"departed_at"`
	ArrivalAt    time.Time        `json:"arrival_at"`
	ReturnFlight bool             `json:"return_flight"`
	Holding      bool             `json:"holding"`
}

// LoadCargo picks the resources to take given free hold space, most
// valuable first: deuterium, then crystal, then metal.
func LoadCargo(available Resources, freeCapacity int64) Resources {
	var cargo Resources
	take := func(amount int64) int64 {
		if freeCapacity <= 0 {
			return 0
		}
		taken := min64(amount, freeCapacity)
		freeCapacity -= taken
		return taken
	}
	cargo.Deuterium = take(available.Deuterium)
	cargo.Crystal = take(available.Crystal)
	cargo.Metal = take(available.Metal)
	return cargo
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
