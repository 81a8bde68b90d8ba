package inmemory

import "sync"

type Snapshot struct {
	CycleTotal     uint64            `json:"cycle_total"`
	CycleSuccess   uint64            `json:"cycle_success"`
	CycleFailure   uint64            `json:"cycle_failure"`
	Rescues        uint64            `json:"rescues"`
	Expeditions    uint64            `json:"expeditions"`
	CommandSuccess map[string]uint64 `json:"command_success"`
	CommandFailure map[string]uint64 `json:"command_failure"`
}

// Recorder keeps the agent's KPI counters for the ops surface.
type Recorder struct {
	mu             sync.Mutex
	cycleSuccess   uint64
	cycleFailure   uint64
	rescues        uint64
	expeditions    uint64
	commandSuccess map[string]uint64
	commandFailure map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		commandSuccess: map[string]uint64{},
		commandFailure: map[string]uint64{},
	}
}

func (r *Recorder) RecordCycle(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.cycleSuccess++
	} else {
		r.cycleFailure++
	}
}

func (r *Recorder) RecordCommand(kind string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.commandSuccess[kind]++
	} else {
		r.commandFailure[kind]++
	}
}

func (r *Recorder) RecordRescue() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rescues++
}

func (r *Recorder) RecordExpedition() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expeditions++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		CycleSuccess:   r.cycleSuccess,
		CycleFailure:   r.cycleFailure,
		CycleTotal:     r.cycleSuccess + r.cycleFailure,
		Rescues:        r.rescues,
		Expeditions:    r.expeditions,
		CommandSuccess: make(map[string]uint64, len(r.commandSuccess)),
		CommandFailure: make(map[string]uint64, len(r.commandFailure)),
	}
	for k, v := range r.commandSuccess {
		out.CommandSuccess[k] = v
	}
	for k, v := range r.commandFailure {
		out.CommandFailure[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
