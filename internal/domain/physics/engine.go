// Package physics implements the game's flight formulas as pure functions.
// All results are deterministic given the server settings, so the decision
// layers can evaluate candidate flights without touching the network.
package physics

import (
	"math"
	"time"

	"fleetwarden/internal/domain/galaxy"
)

// ServerSettings captures the universe parameters that feed the formulas.
type ServerSettings struct {
	Galaxies            int
	Systems             int
	DonutGalaxy         bool
	DonutSystem         bool
	FleetSpeed          int     // universe fleet speed multiplier, >= 1
	DeuteriumSaveFactor float64 // global fuel discount, 1.0 = none
}

func DefaultServerSettings() ServerSettings {
	return ServerSettings{
		Galaxies:            9,
		Systems:             499,
		DonutGalaxy:         true,
		DonutSystem:         true,
		FleetSpeed:          1,
		DeuteriumSaveFactor: 1.0,
	}
}

type Engine struct {
	Server ServerSettings
}

func NewEngine(server ServerSettings) Engine {
	if server.FleetSpeed < 1 {
		server.FleetSpeed = 1
	}
	if server.DeuteriumSaveFactor <= 0 {
		server.DeuteriumSaveFactor = 1.0
	}
	return Engine{Server: server}
}

// Distance returns the distance units between two coordinates.
func (e Engine) Distance(a, b galaxy.Coordinate) int {
	switch {
	case a.Galaxy != b.Galaxy:
		diff := abs(a.Galaxy - b.Galaxy)
		if e.Server.DonutGalaxy {
			diff = min(diff, e.Server.Galaxies-diff)
		}
		return 20000 * diff
	case a.System != b.System:
		diff := abs(a.System - b.System)
		if e.Server.DonutSystem {
			diff = min(diff, e.Server.Systems-diff)
		}
		return 2700 + 95*diff
	case a.Position != b.Position:
		return 1000 + 5*abs(a.Position-b.Position)
	case a.Type != b.Type:
		return 5
	default:
		return 0
	}
}

// FlightDuration returns the one-way duration for a fleet flying at the
// given speed percentage (10..100). The slowest ship sets the pace.
func (e Engine) FlightDuration(distance int, ships galaxy.FleetComposition, speedPercent int) time.Duration {
	slowest := slowestSpeed(ships)
	if slowest <= 0 || speedPercent <= 0 {
		return 0
	}
	seconds := math.Round((35000/float64(speedPercent)*
		math.Sqrt(float64(distance)*1000/float64(slowest)) + 10) / float64(e.Server.FleetSpeed))
	return time.Duration(seconds) * time.Second
}

// FuelConsumption returns the deuterium burned by the whole fleet over one
// flight, including the surcharge for holding at the destination.
func (e Engine) FuelConsumption(distance int, ships galaxy.FleetComposition, duration time.Duration, holding time.Duration) int64 {
	if distance <= 0 || duration <= 0 {
		return 0
	}
	flightSeconds := duration.Seconds() * float64(e.Server.FleetSpeed)
	// The speed factor below divides by flightSeconds-10.
	if flightSeconds <= 10 {
		flightSeconds = 11
	}
	var total float64
	for ship, count := range ships {
		if count <= 0 {
			continue
		}
		stats, ok := galaxy.Stats[ship]
		if !ok || stats.BaseSpeed <= 0 {
			continue
		}
		base := e.Server.DeuteriumSaveFactor * float64(stats.BaseFuelRate)
		factor := 35000/(flightSeconds-10)*math.Sqrt(10*float64(distance)/float64(stats.BaseSpeed))/10 + 1
		perShip := base * float64(distance) / 35000 * factor * factor
		total += perShip * float64(count)
	}
	fuel := int64(math.Round(total)) + 1
	if holding > 0 {
		// Holding costs a tenth of the base consumption per hour on station.
		var holdBase float64
		for ship, count := range ships {
			if count <= 0 {
				continue
			}
			if stats, ok := galaxy.Stats[ship]; ok {
				holdBase += float64(stats.BaseFuelRate) * float64(count)
			}
		}
		fuel += int64(math.Ceil(holdBase / 10 * holding.Hours()))
	}
	return fuel
}

// CargoCapacity returns the total hold space of the fleet.
func (e Engine) CargoCapacity(ships galaxy.FleetComposition) int64 {
	var total int64
	for ship, count := range ships {
		if count <= 0 {
			continue
		}
		if stats, ok := galaxy.Stats[ship]; ok {
			total += int64(stats.CargoSpace) * int64(count)
		}
	}
	return total
}

func slowestSpeed(ships galaxy.FleetComposition) int {
	slowest := 0
	for ship, count := range ships {
		if count <= 0 {
			continue
		}
		stats, ok := galaxy.Stats[ship]
		if !ok || stats.BaseSpeed <= 0 {
			continue
		}
		if slowest == 0 || stats.BaseSpeed < slowest {
			slowest = stats.BaseSpeed
		}
	}
	return slowest
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
