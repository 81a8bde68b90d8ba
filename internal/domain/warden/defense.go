package warden

import (
	"time"

	"fleetwarden/internal/domain/galaxy"
)

// DefenseState is the per-body position in the save/recall cycle.
type DefenseState string

const (
	StateSafe       DefenseState = "safe"
	StateMonitoring DefenseState = "monitoring"
	StateImminent   DefenseState = "imminent"
	StateSaved      DefenseState = "saved"
	StateRecalling  DefenseState = "recalling"
)

// DefenseStatus tracks one body through the state machine. The table of
// statuses is owned by the orchestrator and handed to the defense scheduler
// each cycle.
type DefenseStatus struct {
	Body          galaxy.Coordinate `json:"body"`
	State         DefenseState      `json:"state"`
	ThreatID      galaxy.MissionID  `json:"threat_id,omitempty"`
	ThreatArrival time.Time         `json:"threat_arrival,omitzero"`
	ActAt         time.Time         `json:"act_at,omitzero"`
	RescueMission galaxy.MissionID  `json:"rescue_mission,omitempty"`
	RescuedAt     time.Time         `json:"rescued_at,omitzero"`
}

// DefenseTable maps body coordinates to their defense status.
type DefenseTable map[galaxy.Coordinate]*DefenseStatus

func (t DefenseTable) Get(body galaxy.Coordinate) *DefenseStatus {
	if st, ok := t[body]; ok {
		return st
	}
	st := &DefenseStatus{Body: body, State: StateSafe}
	t[body] = st
	return st
}

// Prune drops statuses for bodies no longer present in the account.
func (t DefenseTable) Prune(owned []galaxy.Body) {
	keep := make(map[galaxy.Coordinate]bool, len(owned))
	for _, b := range owned {
		keep[b.Coords] = true
	}
	for coords := range t {
		if !keep[coords] {
			delete(t, coords)
		}
	}
}
