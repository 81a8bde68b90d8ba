// Package escape computes rescue flights for bodies under attack.
package escape

import (
	"errors"
	"sort"
	"time"

	"fleetwarden/internal/domain/galaxy"
	"fleetwarden/internal/domain/physics"
)

var (
	// ErrNoFeasibleRescue means not even the deep-space fallback can get
	// the fleet off the ground before the deadline.
	ErrNoFeasibleRescue = errors.New("no feasible rescue")

	// ErrNoShips means there is nothing movable stationed at the body.
	ErrNoShips = errors.New("no movable ships at body")

	// ErrNotEnoughFuel means every feasible flight costs more deuterium
	// than the body holds.
	ErrNotEnoughFuel = errors.New("not enough fuel for any escape flight")
)

type Config struct {
	// SafetyMargin is subtracted from the attack timestamp when checking
	// whether a candidate flight fits.
	SafetyMargin time.Duration
	// DeepSpaceHolding is how long the fallback flight holds at the empty
	// slot before turning around.
	DeepSpaceHolding time.Duration
}

type Planner struct {
	Engine physics.Engine
	Config Config
}

// Plan is a computed rescue command. The planner only computes; the
// defense scheduler decides when to issue it.
type Plan struct {
	Origin   galaxy.Coordinate
	Dest     galaxy.Coordinate
	Mission  galaxy.Mission
	Ships    galaxy.FleetComposition
	Cargo    galaxy.Resources
	Speed    int
	Fuel     int64
	Duration time.Duration
	Holding  time.Duration
}

type candidate struct {
	dest     galaxy.Coordinate
	speed    int
	fuel     int64
	duration time.Duration
	distance int
}

// Plan computes the cheapest feasible escape from a threatened body.
// hostiles is the full set of currently known hostile events so exposed
// destinations can be ruled out.
func (p Planner) Plan(snap galaxy.Snapshot, body galaxy.Body, attackAt time.Time, hostiles []galaxy.FleetEvent, now time.Time) (Plan, error) {
	ships := body.Stationed.Movable()
	if !ships.HasShips() {
		return Plan{}, ErrNoShips
	}

	timeLeft := attackAt.Add(-p.Config.SafetyMargin).Sub(now)
	if timeLeft <= 0 {
		return Plan{}, ErrNoFeasibleRescue
	}

	threatened := map[galaxy.Coordinate]bool{}
	for _, h := range hostiles {
		threatened[h.Dest] = true
	}

	candidates := p.ownedCandidates(snap, body.Coords, ships, threatened, timeLeft)
	mission := galaxy.MissionDeployment
	holding := time.Duration(0)
	if len(candidates) == 0 {
		// Last resort: hold in the deep-space slot next to the origin.
		// Nothing parked there can be phalanx-sniped from the body.
		candidates = p.deepSpaceCandidates(body.Coords, ships, timeLeft, holdingFuelCap(p.Config.DeepSpaceHolding))
		mission = galaxy.MissionExpedition
		holding = p.Config.DeepSpaceHolding
	}
	if len(candidates) == 0 {
		return Plan{}, ErrNoFeasibleRescue
	}

	sortCandidates(candidates)
	for _, c := range candidates {
		if c.fuel > body.Resources.Deuterium {
			continue
		}
		remaining := body.Resources
		remaining.Deuterium -= c.fuel
		capacity := p.Engine.CargoCapacity(ships)
		return Plan{
			Origin:   body.Coords,
			Dest:     c.dest,
			Mission:  mission,
			Ships:    ships,
			Cargo:    galaxy.LoadCargo(remaining, capacity),
			Speed:    c.speed,
			Fuel:     c.fuel,
			Duration: c.duration,
			Holding:  holding,
		}, nil
	}
	return Plan{}, ErrNotEnoughFuel
}

func (p Planner) ownedCandidates(snap galaxy.Snapshot, origin galaxy.Coordinate, ships galaxy.FleetComposition, threatened map[galaxy.Coordinate]bool, timeLeft time.Duration) []candidate {
	var out []candidate
	for _, dest := range snap.Bodies {
		if dest.Coords == origin {
			continue
		}
		// Never save towards a body with its own hostile arrival; that is
		// trading one deadline for another.
		if threatened[dest.Coords] {
			continue
		}
		out = append(out, p.flightsTo(origin, dest.Coords, ships, timeLeft, 0)...)
	}
	return out
}

func (p Planner) deepSpaceCandidates(origin galaxy.Coordinate, ships galaxy.FleetComposition, timeLeft time.Duration, holding time.Duration) []candidate {
	dest := galaxy.Coordinate{
		Galaxy:   origin.Galaxy,
		System:   origin.System,
		Position: galaxy.DeepSpacePosition,
		Type:     galaxy.TypePlanet,
	}
	return p.flightsTo(origin, dest, ships, timeLeft, holding)
}

// flightsTo enumerates speed steps from fastest down and keeps the ones
// that depart-and-fly inside the window.
func (p Planner) flightsTo(origin, dest galaxy.Coordinate, ships galaxy.FleetComposition, timeLeft time.Duration, holding time.Duration) []candidate {
	distance := p.Engine.Distance(origin, dest)
	var out []candidate
	for speed := 100; speed >= 10; speed -= 10 {
		duration := p.Engine.FlightDuration(distance, ships, speed)
		if duration <= 0 || duration > timeLeft {
			continue
		}
		fuel := p.Engine.FuelConsumption(distance, ships, duration, holding)
		out = append(out, candidate{
			dest:     dest,
			speed:    speed,
			fuel:     fuel,
			duration: duration,
			distance: distance,
		})
	}
	return out
}

// sortCandidates orders cheapest fuel first; ties prefer moons and closer
// slots, and finally coordinate order so the result is stable.
func sortCandidates(cs []candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].fuel != cs[j].fuel {
			return cs[i].fuel < cs[j].fuel
		}
		if cs[i].distance != cs[j].distance {
			return cs[i].distance < cs[j].distance
		}
		iMoon := cs[i].dest.Type == galaxy.TypeMoon
		jMoon := cs[j].dest.Type == galaxy.TypeMoon
		if iMoon != jMoon {
			return iMoon
		}
		return cs[i].dest.Less(cs[j].dest)
	})
}

func holdingFuelCap(holding time.Duration) time.Duration {
	if holding <= 0 {
		return time.Hour
	}
	return holding
}
