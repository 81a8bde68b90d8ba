// Package threat classifies incoming fleet events. The classification
// heuristic is deliberately a Policy value rather than hard-coded rules:
// how aggressive a foreign transport or an obscured fleet should be treated
// depends on game-rule knowledge that shifts between servers.
package threat

import (
	"fleetwarden/internal/domain/galaxy"
)

type Policy struct {
	// HostileMissions are always hostile when flown from a foreign origin.
	HostileMissions []galaxy.Mission
	// TreatUnknownAsHostile classifies unknown mission types from foreign
	// origins as hostile. False negatives lose fleets; false positives
	// only burn fuel.
	TreatUnknownAsHostile bool
	// TreatObscuredTransportAsHostile covers the transport-as-attack trick
	// when the composition is not visible.
	TreatObscuredTransportAsHostile bool
	// IgnoreProbeOnly skips fleets known to contain nothing but espionage
	// probes.
	IgnoreProbeOnly bool
}

func DefaultPolicy() Policy {
	return Policy{
		HostileMissions: []galaxy.Mission{
			galaxy.MissionAttack,
			galaxy.MissionACSAttack,
			galaxy.MissionDestroy,
			galaxy.MissionEspionage,
		},
		TreatUnknownAsHostile:           true,
		TreatObscuredTransportAsHostile: true,
		IgnoreProbeOnly:                 true,
	}
}

type Detector struct {
	Policy Policy
}

func NewDetector(policy Policy) Detector {
	if len(policy.HostileMissions) == 0 {
		policy = DefaultPolicy()
	}
	return Detector{Policy: policy}
}

// IsHostile classifies one event against the account snapshot.
func (d Detector) IsHostile(snap galaxy.Snapshot, e galaxy.FleetEvent) bool {
	if e.ReturnFlight {
		return false
	}
	if !snap.OwnsCoords(e.Dest) {
		return false
	}
	// Own fleets are never a threat regardless of mission tag.
	if snap.OwnsCoords(e.Origin) {
		return false
	}
	if d.Policy.IgnoreProbeOnly && e.ShipsKnown && e.Ships.OnlyProbes() {
		return false
	}
	for _, m := range d.Policy.HostileMissions {
		if e.Mission == m {
			return true
		}
	}
	if e.Mission == galaxy.MissionUnknown && d.Policy.TreatUnknownAsHostile {
		return true
	}
	if e.Mission == galaxy.MissionTransport && !e.ShipsKnown && d.Policy.TreatObscuredTransportAsHostile {
		return true
	}
	return false
}

// HostileEvents returns every hostile event in the snapshot.
func (d Detector) HostileEvents(snap galaxy.Snapshot) []galaxy.FleetEvent {
	var out []galaxy.FleetEvent
	for _, e := range snap.Events {
		if d.IsHostile(snap, e) {
			out = append(out, e)
		}
	}
	return out
}

// HostileByBody returns the earliest hostile arrival per threatened body,
// ordered by arrival time.
func (d Detector) HostileByBody(snap galaxy.Snapshot) []galaxy.FleetEvent {
	return galaxy.EarliestPerDestination(d.HostileEvents(snap))
}

// EarliestHostileFor returns the first hostile arrival at one body.
func (d Detector) EarliestHostileFor(snap galaxy.Snapshot, body galaxy.Coordinate) (galaxy.FleetEvent, bool) {
	return galaxy.EarliestEvent(galaxy.FilterEvents(d.HostileEvents(snap), galaxy.EventFilter{
		Dest: []galaxy.Coordinate{body},
	}))
}
