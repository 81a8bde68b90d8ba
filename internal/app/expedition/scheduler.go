// Package expedition keeps the user's recurring expedition flights running:
// re-dispatching fleets as they return and burning down repeat budgets.
package expedition

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/app/threat"
	"fleetwarden/internal/domain/galaxy"
	"fleetwarden/internal/domain/physics"
	"fleetwarden/internal/domain/warden"
)

type Scheduler struct {
	Engine   physics.Engine
	Detector threat.Detector
	Sink     ports.CommandSink
	Repo     ports.ExpeditionRepository
	Notifier ports.Notifier
	Metrics  ports.CycleMetrics
	Now      func() time.Time
	Log      *slog.Logger
}

// Evaluate runs one expedition pass against the snapshot: settle returned
// fleets, adopt unassigned ones, then dispatch every idle definition that
// still has budget.
func (s Scheduler) Evaluate(ctx context.Context, snap galaxy.Snapshot) error {
	defs, err := s.Repo.ListDefinitions(ctx)
	if err != nil {
		return err
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	states := make([]warden.ExpeditionRunState, len(defs))
	for i, def := range defs {
		st, err := s.loadState(ctx, def)
		if err != nil {
			return err
		}
		states[i] = s.settleReturn(ctx, def, st, snap)
	}

	s.adoptUnassignedFleets(defs, states, snap)

	freeFleetSlots := snap.FreeFleetSlots
	freeExpeditionSlots := snap.FreeExpeditionSlot
	for i, def := range defs {
		st := states[i]
		if !def.Enabled || st.Running() || st.Exhausted() {
			if err := s.Repo.SaveRunState(ctx, st); err != nil {
				return err
			}
			continue
		}
		if freeFleetSlots <= 0 || freeExpeditionSlots <= 0 {
			s.log().Warn("no free slots for expeditions")
			if err := s.Repo.SaveRunState(ctx, st); err != nil {
				return err
			}
			continue
		}
		sent := s.dispatch(ctx, def, &st, snap)
		if sent {
			freeFleetSlots--
			freeExpeditionSlots--
		}
		if err := s.Repo.SaveRunState(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// ActiveDestinations lists the distinct destinations of enabled
// definitions, for the debris harvester's scan scope.
func (s Scheduler) ActiveDestinations(ctx context.Context) ([]galaxy.Coordinate, error) {
	defs, err := s.Repo.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[galaxy.Coordinate]bool{}
	var out []galaxy.Coordinate
	for _, def := range defs {
		if !def.Enabled {
			continue
		}
		dest := def.Destination()
		if !seen[dest] {
			seen[dest] = true
			out = append(out, dest)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out, nil
}

// OriginsFor lists origins of enabled definitions targeting dest, used to
// pick where harvesting fleets launch from.
func (s Scheduler) OriginsFor(ctx context.Context, dest galaxy.Coordinate) ([]galaxy.Coordinate, error) {
	defs, err := s.Repo.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[galaxy.Coordinate]bool{}
	var out []galaxy.Coordinate
	for _, def := range defs {
		if !def.Enabled || def.Destination() != dest {
			continue
		}
		if !seen[def.Origin] {
			seen[def.Origin] = true
			out = append(out, def.Origin)
		}
	}
	return out, nil
}

func (s Scheduler) loadState(ctx context.Context, def warden.ExpeditionDefinition) (warden.ExpeditionRunState, error) {
	st, err := s.Repo.GetRunState(ctx, def.ID)
	if errors.Is(err, ports.ErrNotFound) {
		return warden.ExpeditionRunState{
			DefinitionID: def.ID,
			Remaining:    def.Repeat,
			Budget:       def.Repeat,
			Phase:        warden.PhaseIdle,
		}, nil
	}
	if err != nil {
		return warden.ExpeditionRunState{}, err
	}
	if st.Budget != def.Repeat {
		// The definition was reconfigured with a fresh repeat budget.
		st.Budget = def.Repeat
		st.Remaining = def.Repeat
		s.log().Info("expedition budget re-armed", "definition", def.ID, "remaining", st.Remaining)
	}
	return st, nil
}

// settleReturn marks the run idle once its fleet left the movement page,
// i.e. the mission completed and the ships landed.
func (s Scheduler) settleReturn(ctx context.Context, def warden.ExpeditionDefinition, st warden.ExpeditionRunState, snap galaxy.Snapshot) warden.ExpeditionRunState {
	if !st.Running() {
		return st
	}
	if snap.FleetByID(st.FleetID) != nil {
		st.Phase = warden.PhaseOutbound
		return st
	}
	st.FleetID = 0
	st.Phase = warden.PhaseIdle
	if st.Exhausted() {
		s.notify(ctx, warden.NotifyExpeditionDone, def.Origin, map[string]any{
			"definition": def.ID,
		})
		s.log().Info("expedition finished", "definition", def.ID)
	}
	return st
}

// adoptUnassignedFleets matches in-flight expedition fleets to idle
// definitions with the same template. This covers fleets the user sent by
// hand and dispatches whose mission id was lost to an earlier failure.
func (s Scheduler) adoptUnassignedFleets(defs []warden.ExpeditionDefinition, states []warden.ExpeditionRunState, snap galaxy.Snapshot) {
	assigned := map[galaxy.MissionID]bool{}
	for _, st := range states {
		if st.Running() {
			assigned[st.FleetID] = true
		}
	}
	for i, def := range defs {
		if states[i].Running() {
			continue
		}
		for _, fl := range snap.Fleets {
			if fl.Mission != galaxy.MissionExpedition || assigned[fl.ID] {
				continue
			}
			if fl.Origin != def.Origin || fl.Dest != def.Destination() {
				continue
			}
			if !fl.Ships.Equal(def.Ships) {
				continue
			}
			states[i].FleetID = fl.ID
			states[i].Phase = warden.PhaseOutbound
			assigned[fl.ID] = true
			s.log().Info("expedition matched with in-flight fleet",
				"definition", def.ID, "fleet", int64(fl.ID))
			break
		}
	}
}

func (s Scheduler) dispatch(ctx context.Context, def warden.ExpeditionDefinition, st *warden.ExpeditionRunState, snap galaxy.Snapshot) bool {
	body := snap.BodyAt(def.Origin)
	if body == nil {
		s.notify(ctx, warden.NotifyExpeditionDone, def.Origin, map[string]any{
			"definition": def.ID,
			"error":      "origin is not one of the account's bodies",
		})
		s.log().Warn("invalid expedition origin", "definition", def.ID)
		return false
	}
	// A body with a hostile inbound keeps its ships for the defense
	// scheduler to save; expeditions wait.
	if _, underThreat := s.Detector.EarliestHostileFor(snap, def.Origin); underThreat {
		s.log().Warn("origin under attack, postponing expedition", "definition", def.ID)
		return false
	}
	if !body.Stationed.Contains(def.Ships) {
		s.log().Warn("required ships not available, postponing expedition", "definition", def.ID)
		return false
	}

	capacity := s.Engine.CargoCapacity(def.Ships)
	if def.Cargo.Total() > capacity {
		s.notify(ctx, warden.NotifyExpeditionDone, def.Origin, map[string]any{
			"definition": def.ID,
			"error":      "cargo exceeds fleet capacity",
		})
		s.log().Warn("cargo exceeds capacity, disabling expedition", "definition", def.ID)
		st.Remaining = 0
		return false
	}
	if !body.Resources.Covers(def.Cargo) {
		s.log().Warn("not enough resources for cargo, postponing expedition", "definition", def.ID)
		return false
	}

	dest := def.Destination()
	distance := s.Engine.Distance(def.Origin, dest)
	duration := s.Engine.FlightDuration(distance, def.Ships, def.Speed)
	fuel := s.Engine.FuelConsumption(distance, def.Ships, duration, def.Holding)
	if body.Resources.Deuterium-def.Cargo.Deuterium < fuel {
		s.log().Warn("not enough fuel, postponing expedition", "definition", def.ID)
		return false
	}

	id, err := s.Sink.SendFleet(ctx, ports.FleetCommand{
		Origin:  def.Origin,
		Dest:    dest,
		Ships:   def.Ships,
		Cargo:   def.Cargo,
		Speed:   def.Speed,
		Mission: galaxy.MissionExpedition,
		Holding: def.Holding,
	})
	if err != nil {
		s.recordCommand("send_fleet", false)
		s.notify(ctx, warden.NotifyCommandFailed, def.Origin, map[string]any{
			"command":    "send_fleet",
			"definition": def.ID,
			"err":        err.Error(),
		})
		s.log().Warn("expedition dispatch failed", "definition", def.ID, "err", err)
		return false
	}
	s.recordCommand("send_fleet", true)
	if s.Metrics != nil {
		s.Metrics.RecordExpedition()
	}

	// The budget burns at issue time, not completion, so two cycles can
	// never double-spend the same repeat.
	if st.Remaining != warden.RepeatForever {
		st.Remaining--
	}
	st.FleetID = id
	st.Phase = warden.PhaseOutbound
	st.LastSentAt = s.Now()
	s.notify(ctx, warden.NotifyExpeditionSent, def.Origin, map[string]any{
		"definition": def.ID,
		"dest":       dest.String(),
		"mission":    id,
		"remaining":  st.Remaining,
	})
	s.log().Info("expedition sent", "definition", def.ID, "dest", dest.String())
	return true
}

func (s Scheduler) notify(ctx context.Context, kind warden.NotificationKind, body galaxy.Coordinate, details map[string]any) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(ctx, warden.Notification{
		Kind:       kind,
		Body:       body.String(),
		OccurredAt: s.Now(),
		Details:    details,
	})
}

func (s Scheduler) recordCommand(kind string, ok bool) {
	if s.Metrics != nil {
		s.Metrics.RecordCommand(kind, ok)
	}
}

func (s Scheduler) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
