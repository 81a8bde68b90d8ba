// Package defense runs the per-body state machine that decides when to
// save a stationed fleet from an incoming attack and when to bring it back.
package defense

import (
	"context"
	"log/slog"
	"time"

	"fleetwarden/internal/app/escape"
	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/app/threat"
	"fleetwarden/internal/domain/galaxy"
	"fleetwarden/internal/domain/warden"
)

type Config struct {
	// MinActLead and MaxActLead bound the window before the attack in
	// which the rescue is issued. The actual trigger is jittered inside
	// the window so the reaction pattern is not a fixed offset.
	MinActLead time.Duration
	MaxActLead time.Duration

	// TryRecall enables recalling a saved fleet once the threat clears.
	TryRecall bool
	// MaxReturnFlight caps how long a recalled fleet may take to get home.
	MaxReturnFlight time.Duration
}

// Rand is the subset of math/rand the scheduler needs for jitter.
type Rand interface {
	Int63n(n int64) int64
}

type Scheduler struct {
	Detector threat.Detector
	Planner  escape.Planner
	Sink     ports.CommandSink
	Notifier ports.Notifier
	Metrics  ports.CycleMetrics
	Config   Config
	Now      func() time.Time
	Rand     Rand
	Log      *slog.Logger
}

// Evaluate advances the state machine for every owned body against one
// snapshot. The defense table is owned by the caller and mutated in place.
func (s Scheduler) Evaluate(ctx context.Context, snap galaxy.Snapshot, table warden.DefenseTable) {
	table.Prune(snap.Bodies)
	hostiles := s.Detector.HostileEvents(snap)
	for _, body := range snap.SortedBodies() {
		s.evaluateBody(ctx, snap, body, hostiles, table.Get(body.Coords))
	}
}

// NextDeadline returns the earliest pending trigger time across all bodies
// so the poll loop can wake up just in time instead of sleeping through it.
func (s Scheduler) NextDeadline(table warden.DefenseTable) (time.Time, bool) {
	var next time.Time
	for _, st := range table {
		if st.State != warden.StateImminent || st.ActAt.IsZero() {
			continue
		}
		if next.IsZero() || st.ActAt.Before(next) {
			next = st.ActAt
		}
	}
	return next, !next.IsZero()
}

func (s Scheduler) evaluateBody(ctx context.Context, snap galaxy.Snapshot, body galaxy.Body, hostiles []galaxy.FleetEvent, st *warden.DefenseStatus) {
	now := s.Now()
	hostile, underThreat := s.Detector.EarliestHostileFor(snap, body.Coords)
	if underThreat && hostile.ArrivalAt.Sub(now) <= s.Config.MaxActLead {
		s.recallExposedDeployments(ctx, snap, body, hostile)
	}

	switch st.State {
	case warden.StateSafe:
		if !underThreat {
			return
		}
		st.State = warden.StateMonitoring
		st.ThreatID = hostile.ID
		st.ThreatArrival = hostile.ArrivalAt
		s.notify(ctx, warden.NotifyThreatDetected, body.Coords, map[string]any{
			"arrival": hostile.ArrivalAt,
			"mission": hostile.Mission.String(),
		})
		s.log().Info("hostile fleet detected",
			"body", body.Coords.String(),
			"arrival", hostile.ArrivalAt)
		// Fall through to monitoring so a short-notice attack still gets
		// handled in the cycle it was first seen.
		s.monitor(ctx, snap, body, hostiles, st, hostile, now)

	case warden.StateMonitoring:
		if !underThreat {
			s.clearThreat(ctx, st, now)
			return
		}
		s.trackArrivalChange(ctx, st, hostile)
		s.monitor(ctx, snap, body, hostiles, st, hostile, now)

	case warden.StateImminent:
		if !underThreat {
			s.clearThreat(ctx, st, now)
			return
		}
		if s.trackArrivalChange(ctx, st, hostile) {
			s.retarget(st, hostile, now)
			if st.State != warden.StateImminent {
				return
			}
		}
		s.actIfDue(ctx, snap, body, hostiles, st, hostile, now)

	case warden.StateSaved:
		// Idempotent while the threat holds: never launch a second rescue
		// for the same body.
		if underThreat {
			s.trackArrivalChange(ctx, st, hostile)
			return
		}
		s.tryRecover(ctx, snap, body, st, now)

	case warden.StateRecalling:
		fleet := snap.FleetByID(st.RescueMission)
		if fleet == nil || fleet.ReturnFlight {
			s.reset(st)
		}
	}
}

// monitor checks whether the threat has entered the action window and, if
// so, moves to Imminent and possibly acts in the same cycle.
func (s Scheduler) monitor(ctx context.Context, snap galaxy.Snapshot, body galaxy.Body, hostiles []galaxy.FleetEvent, st *warden.DefenseStatus, hostile galaxy.FleetEvent, now time.Time) {
	untilAttack := hostile.ArrivalAt.Sub(now)
	if untilAttack > s.Config.MaxActLead {
		return
	}
	st.State = warden.StateImminent
	st.ActAt = s.triggerTime(hostile.ArrivalAt, now)
	s.log().Info("entering action window",
		"body", body.Coords.String(),
		"act_at", st.ActAt,
		"attack_at", hostile.ArrivalAt)
	s.actIfDue(ctx, snap, body, hostiles, st, hostile, now)
}

// triggerTime picks when to issue the rescue: immediately when inside the
// minimum lead, otherwise uniformly within [T-max, T-min].
func (s Scheduler) triggerTime(attackAt, now time.Time) time.Time {
	untilAttack := attackAt.Sub(now)
	if untilAttack <= s.Config.MinActLead {
		return now
	}
	latest := attackAt.Add(-s.Config.MinActLead)
	earliest := attackAt.Add(-s.Config.MaxActLead)
	if earliest.Before(now) {
		earliest = now
	}
	window := latest.Sub(earliest)
	if window <= 0 {
		return latest
	}
	return earliest.Add(time.Duration(s.Rand.Int63n(int64(window))))
}

// retarget recomputes the trigger after the tracked threat moved while
// Imminent. A delay past the action window demotes back to Monitoring; an
// earlier arrival pulls the trigger forward so the rescue still departs
// before the attack.
func (s Scheduler) retarget(st *warden.DefenseStatus, hostile galaxy.FleetEvent, now time.Time) {
	if hostile.ArrivalAt.Sub(now) > s.Config.MaxActLead {
		st.State = warden.StateMonitoring
		st.ActAt = time.Time{}
		s.log().Info("attack pushed past the action window",
			"body", st.Body.String(),
			"attack_at", hostile.ArrivalAt)
		return
	}
	actAt := s.triggerTime(hostile.ArrivalAt, now)
	latest := hostile.ArrivalAt.Add(-s.Config.MinActLead)
	if !st.ActAt.IsZero() && st.ActAt.Before(actAt) && !st.ActAt.After(latest) {
		actAt = st.ActAt
	}
	st.ActAt = actAt
}

func (s Scheduler) actIfDue(ctx context.Context, snap galaxy.Snapshot, body galaxy.Body, hostiles []galaxy.FleetEvent, st *warden.DefenseStatus, hostile galaxy.FleetEvent, now time.Time) {
	if now.Before(st.ActAt) {
		return
	}
	plan, err := s.Planner.Plan(snap, body, hostile.ArrivalAt, hostiles, now)
	if err != nil {
		// Planning failures keep the machine in Imminent: planning is
		// retried every cycle and the operator is alerted immediately.
		s.notify(ctx, warden.NotifyNoFeasibleRescue, body.Coords, map[string]any{
			"reason":  err.Error(),
			"arrival": hostile.ArrivalAt,
		})
		s.log().Warn("no feasible rescue",
			"body", body.Coords.String(),
			"err", err)
		return
	}

	id, err := s.Sink.SendFleet(ctx, ports.FleetCommand{
		Origin:  plan.Origin,
		Dest:    plan.Dest,
		Ships:   plan.Ships,
		Cargo:   plan.Cargo,
		Speed:   plan.Speed,
		Mission: plan.Mission,
		Holding: plan.Holding,
	})
	if err != nil {
		// Command failed: no state transition, retried with recomputed
		// parameters next cycle.
		s.recordCommand("send_fleet", false)
		s.notify(ctx, warden.NotifyCommandFailed, body.Coords, map[string]any{
			"command": "send_fleet",
			"err":     err.Error(),
		})
		s.log().Warn("rescue dispatch failed",
			"body", body.Coords.String(),
			"err", err)
		return
	}
	s.recordCommand("send_fleet", true)
	if s.Metrics != nil {
		s.Metrics.RecordRescue()
	}

	st.State = warden.StateSaved
	st.RescueMission = id
	st.RescuedAt = now
	st.ActAt = time.Time{}
	s.notify(ctx, warden.NotifyFleetSaved, body.Coords, map[string]any{
		"dest":    plan.Dest.String(),
		"speed":   plan.Speed,
		"fuel":    plan.Fuel,
		"mission": id,
	})
	s.log().Info("fleet saved",
		"body", body.Coords.String(),
		"dest", plan.Dest.String(),
		"fuel", plan.Fuel)
}

// tryRecover handles Saved bodies whose threat has cleared: recall the
// rescue fleet when allowed and still cheap, otherwise wait for it to come
// home by itself.
func (s Scheduler) tryRecover(ctx context.Context, snap galaxy.Snapshot, body galaxy.Body, st *warden.DefenseStatus, now time.Time) {
	fleet := snap.FleetByID(st.RescueMission)
	if fleet == nil {
		// The rescue fleet is no longer in flight, so it is back home.
		s.reset(st)
		return
	}
	if fleet.ReturnFlight {
		st.State = warden.StateRecalling
		return
	}
	if !s.Config.TryRecall {
		return
	}
	// The return trip takes about as long as the fleet has been flying.
	if now.Sub(fleet.DepartedAt) > s.Config.MaxReturnFlight {
		return
	}
	if err := s.Sink.RecallFleet(ctx, st.RescueMission); err != nil {
		s.recordCommand("recall_fleet", false)
		s.notify(ctx, warden.NotifyCommandFailed, body.Coords, map[string]any{
			"command": "recall_fleet",
			"err":     err.Error(),
		})
		return
	}
	s.recordCommand("recall_fleet", true)
	st.State = warden.StateRecalling
	s.notify(ctx, warden.NotifyRecallIssued, body.Coords, map[string]any{
		"mission": st.RescueMission,
	})
	s.log().Info("saved fleet recalled", "body", body.Coords.String())
}

// deploymentRecallSlack bounds how close to the hostile arrival an own
// deployment may land before it gets recalled. A delayed attack could
// otherwise snipe the incoming fleet.
const deploymentRecallSlack = 10 * time.Second

// recallExposedDeployments turns around own deployment fleets headed for
// the threatened body whose landing would coincide with the attack.
func (s Scheduler) recallExposedDeployments(ctx context.Context, snap galaxy.Snapshot, body galaxy.Body, hostile galaxy.FleetEvent) {
	for i := range snap.Fleets {
		fl := snap.Fleets[i]
		if fl.Mission != galaxy.MissionDeployment || fl.ReturnFlight {
			continue
		}
		if fl.Dest != body.Coords || !snap.OwnsCoords(fl.Origin) {
			continue
		}
		gap := fl.ArrivalAt.Sub(hostile.ArrivalAt)
		if gap < -deploymentRecallSlack || gap > deploymentRecallSlack {
			continue
		}
		if err := s.Sink.RecallFleet(ctx, fl.ID); err != nil {
			s.recordCommand("recall_fleet", false)
			s.notify(ctx, warden.NotifyCommandFailed, body.Coords, map[string]any{
				"command": "recall_fleet",
				"err":     err.Error(),
			})
			continue
		}
		s.recordCommand("recall_fleet", true)
		s.notify(ctx, warden.NotifyRecallIssued, body.Coords, map[string]any{
			"mission": fl.ID,
			"reason":  "deployment landing with the attack",
		})
		s.log().Info("recalled deployment landing with the attack",
			"body", body.Coords.String(),
			"fleet", int64(fl.ID))
	}
}

// trackArrivalChange updates the tracked threat and reports whether it
// moved, either a new arrival time for the same event or another event
// taking over as the earliest.
func (s Scheduler) trackArrivalChange(ctx context.Context, st *warden.DefenseStatus, hostile galaxy.FleetEvent) bool {
	if st.ThreatID == hostile.ID && st.ThreatArrival.Equal(hostile.ArrivalAt) {
		return false
	}
	if st.ThreatID == hostile.ID {
		s.notify(ctx, warden.NotifyThreatDelayed, st.Body, map[string]any{
			"previous_arrival": st.ThreatArrival,
			"arrival":          hostile.ArrivalAt,
		})
	}
	st.ThreatID = hostile.ID
	st.ThreatArrival = hostile.ArrivalAt
	return true
}

func (s Scheduler) clearThreat(ctx context.Context, st *warden.DefenseStatus, now time.Time) {
	if st.ThreatArrival.After(now) {
		// The attacker recalled before arriving; worth telling the
		// operator the body is safe again.
		s.notify(ctx, warden.NotifyThreatCleared, st.Body, map[string]any{
			"was_arriving": st.ThreatArrival,
		})
	}
	s.reset(st)
}

func (s Scheduler) reset(st *warden.DefenseStatus) {
	st.State = warden.StateSafe
	st.ThreatID = 0
	st.ThreatArrival = time.Time{}
	st.ActAt = time.Time{}
	st.RescueMission = 0
	st.RescuedAt = time.Time{}
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
