// Package harvest collects the debris fields that expeditions leave
// behind, when the account can see them at all.
package harvest

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"fleetwarden/internal/app/expedition"
	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/domain/galaxy"
	"fleetwarden/internal/domain/physics"
	"fleetwarden/internal/domain/warden"
)

type Config struct {
	Enabled bool
	// Speed is the percentage harvesting fleets fly at.
	Speed int
	// MinDebris is the resource total below which a field is not worth a
	// flight.
	MinDebris int64
}

type Harvester struct {
	Engine      physics.Engine
	Scanner     ports.GalaxyScanner
	Sink        ports.CommandSink
	Expeditions expedition.Scheduler
	Notifier    ports.Notifier
	Metrics     ports.CycleMetrics
	Config      Config
	Now         func() time.Time
	Log         *slog.Logger
}

// Evaluate scans the systems touched by active expeditions and dispatches
// pathfinders at any debris worth collecting.
func (h Harvester) Evaluate(ctx context.Context, snap galaxy.Snapshot) error {
	if !h.Config.Enabled {
		return nil
	}
	// Expedition debris is only visible to discoverer accounts.
	if !snap.Discoverer {
		return nil
	}
	dests, err := h.Expeditions.ActiveDestinations(ctx)
	if err != nil {
		return err
	}
	for _, dest := range dests {
		fields, err := h.Scanner.DebrisIn(ctx, dest.Galaxy, dest.System)
		if err != nil {
			return err
		}
		debrisAt := dest.WithType(galaxy.TypeDebris)
		for _, field := range fields {
			if field.Coords != debrisAt {
				continue
			}
			if field.Resources.Total() <= h.Config.MinDebris {
				continue
			}
			if err := h.harvestField(ctx, snap, dest, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h Harvester) harvestField(ctx context.Context, snap galaxy.Snapshot, dest galaxy.Coordinate, field galaxy.DebrisField) error {
	perShip := h.Engine.CargoCapacity(galaxy.FleetComposition{galaxy.Pathfinder: 1})
	if perShip <= 0 {
		return nil
	}
	required := int(math.Ceil(float64(field.Resources.Total()) / float64(perShip)))

	// Ships already heading for the field count against the requirement;
	// a second full wave would fly home empty.
	inFlight := galaxy.FilterFleets(snap.Fleets, galaxy.MovementFilter{
		Missions:     []galaxy.Mission{galaxy.MissionHarvest},
		Dest:         []galaxy.Coordinate{field.Coords},
		ReturnFlight: galaxy.BoolPtr(false),
	})
	for _, fl := range inFlight {
		required -= fl.Ships[galaxy.Pathfinder]
	}
	if required <= 0 {
		return nil
	}

	origins, err := h.Expeditions.OriginsFor(ctx, dest)
	if err != nil {
		return err
	}
	sort.Slice(origins, func(i, j int) bool {
		di := h.Engine.Distance(origins[i], field.Coords)
		dj := h.Engine.Distance(origins[j], field.Coords)
		if di != dj {
			return di < dj
		}
		return origins[i].Less(origins[j])
	})

	for _, origin := range origins {
		if required <= 0 {
			break
		}
		sent := h.sendFromOrigin(ctx, snap, origin, field, required)
		required -= sent
	}
	if required > 0 {
		h.notify(ctx, warden.NotifyDebrisHarvested, field.Coords, map[string]any{
			"debris":    field.Resources,
			"shortfall": required,
			"error":     "not enough pathfinders to fully harvest the field",
		})
		h.log().Warn("debris field not fully covered",
			"field", field.Coords.String(),
			"missing_pathfinders", required)
	}
	return nil
}

func (h Harvester) sendFromOrigin(ctx context.Context, snap galaxy.Snapshot, origin galaxy.Coordinate, field galaxy.DebrisField, required int) int {
	body := snap.BodyAt(origin)
	if body == nil {
		return 0
	}
	stationed := body.Stationed[galaxy.Pathfinder]
	if stationed <= 0 {
		return 0
	}

	distance := h.Engine.Distance(origin, field.Coords)
	single := galaxy.FleetComposition{galaxy.Pathfinder: 1}
	duration := h.Engine.FlightDuration(distance, single, h.Config.Speed)
	fuelPerShip := h.Engine.FuelConsumption(distance, single, duration, 0)
	if fuelPerShip <= 0 {
		fuelPerShip = 1
	}
	affordable := int(body.Resources.Deuterium / fuelPerShip)
	count := minInt(required, minInt(stationed, affordable))
	if count <= 0 {
		return 0
	}

	ships := galaxy.FleetComposition{galaxy.Pathfinder: count}
	id, err := h.Sink.SendFleet(ctx, ports.FleetCommand{
		Origin:  origin,
		Dest:    field.Coords,
		Ships:   ships,
		Speed:   h.Config.Speed,
		Mission: galaxy.MissionHarvest,
	})
	if err != nil {
		h.recordCommand("send_fleet", false)
		h.notify(ctx, warden.NotifyCommandFailed, origin, map[string]any{
			"command": "send_fleet",
			"dest":    field.Coords.String(),
			"err":     err.Error(),
		})
		h.log().Warn("harvest dispatch failed",
			"origin", origin.String(),
			"field", field.Coords.String(),
			"err", err)
		return 0
	}
	h.recordCommand("send_fleet", true)
	h.notify(ctx, warden.NotifyDebrisHarvested, field.Coords, map[string]any{
		"origin":      origin.String(),
		"pathfinders": count,
		"mission":     id,
	})
	h.log().Info("harvesting fleet sent",
		"origin", origin.String(),
		"field", field.Coords.String(),
		"pathfinders", count)
	return count
}

func (h Harvester) notify(ctx context.Context, kind warden.NotificationKind, body galaxy.Coordinate, details map[string]any) {
	if h.Notifier == nil {
		return
	}
	h.Notifier.Notify(ctx, warden.Notification{
		Kind:       kind,
		Body:       body.String(),
		OccurredAt: h.Now(),
		Details:    details,
	})
}

func (h Harvester) recordCommand(kind string, ok bool) {
	if h.Metrics != nil {
		h.Metrics.RecordCommand(kind, ok)
	}
}

func (h Harvester) log() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
