package expedition

import (
	"context"
	"testing"
	"time"

	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/app/threat"
	"fleetwarden/internal/domain/galaxy"
	"fleetwarden/internal/domain/physics"
	"fleetwarden/internal/domain/warden"
)

var (
	origin    = galaxy.Coordinate{Galaxy: 1, System: 100, Position: 8, Type: galaxy.TypePlanet}
	deepSpace = galaxy.Coordinate{Galaxy: 1, System: 100, Position: 16, Type: galaxy.TypePlanet}
	foreign   = galaxy.Coordinate{Galaxy: 1, System: 102, Position: 4, Type: galaxy.TypePlanet}

	expNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func testDefinition(repeat int) warden.ExpeditionDefinition {
	return warden.ExpeditionDefinition{
		ID:      "exp-1",
		Origin:  origin,
		Ships:   galaxy.FleetComposition{galaxy.LargeCargo: 5, galaxy.Pathfinder: 1},
		Speed:   100,
		Holding: time.Hour,
		Repeat:  repeat,
		Enabled: true,
	}
}

func expeditionSnapshot() galaxy.Snapshot {
	return galaxy.Snapshot{
		TakenAt: expNow,
		Bodies: []galaxy.Body{{
			Coords:    origin,
			Resources: galaxy.Resources{Metal: 100000, Crystal: 100000, Deuterium: 100000},
			Stationed: galaxy.FleetComposition{galaxy.LargeCargo: 10, galaxy.Pathfinder: 4},
		}},
		FreeFleetSlots:     5,
		FreeExpeditionSlot: 2,
	}
}

func testExpeditionScheduler(repo *stubRepo, sink *stubSink, notifier *stubNotifier) Scheduler {
	return Scheduler{
		Engine:   physics.NewEngine(physics.DefaultServerSettings()),
		Detector: threat.NewDetector(threat.Policy{}),
		Sink:     sink,
		Repo:     repo,
		Notifier: notifier,
		Now:      func() time.Time { return expNow },
	}
}

func TestEvaluate_DispatchBurnsBudgetAtIssue(t *testing.T) {
	repo := newStubRepo(testDefinition(2))
	sink := &stubSink{}
	notifier := &stubNotifier{}
	s := testExpeditionScheduler(repo, sink, notifier)

	if err := s.Evaluate(context.Background(), expeditionSnapshot()); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}

	if len(sink.sent) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(sink.sent))
	}
	cmd := sink.sent[0]
	if cmd.Mission != galaxy.MissionExpedition {
		t.Fatalf("expected expedition mission, got %s", cmd.Mission)
	}
	if cmd.Dest != deepSpace {
		t.Fatalf("expected default deep-space destination, got %s", cmd.Dest)
	}
	if cmd.Holding != time.Hour {
		t.Fatalf("expected holding carried over, got %s", cmd.Holding)
	}

	st := repo.states["exp-1"]
	if st.Remaining != 1 {
		t.Fatalf("expected budget burned to 1, got %d", st.Remaining)
	}
	if !st.Running() || st.Phase != warden.PhaseOutbound {
		t.Fatalf("expected outbound run state, got %+v", st)
	}
	if !notifier.saw(warden.NotifyExpeditionSent) {
		t.Fatalf("expected sent notification, got %v", notifier.kinds)
	}
}

func TestEvaluate_ForeverBudgetNeverBurns(t *testing.T) {
	repo := newStubRepo(testDefinition(warden.RepeatForever))
	sink := &stubSink{}
	s := testExpeditionScheduler(repo, sink, &stubNotifier{})

	if err := s.Evaluate(context.Background(), expeditionSnapshot()); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if got := repo.states["exp-1"].Remaining; got != warden.RepeatForever {
		t.Fatalf("forever budget changed to %d", got)
	}
	if len(sink.sent) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(sink.sent))
	}
}

func TestEvaluate_ExhaustedDefinitionIsInert(t *testing.T) {
	repo := newStubRepo(testDefinition(1))
	repo.states["exp-1"] = warden.ExpeditionRunState{DefinitionID: "exp-1", Remaining: 0, Budget: 1, Phase: warden.PhaseIdle}
	sink := &stubSink{}
	s := testExpeditionScheduler(repo, sink, &stubNotifier{})

	if err := s.Evaluate(context.Background(), expeditionSnapshot()); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(sink.sent) != 0 {
		t.Fatalf("exhausted definition dispatched a fleet")
	}
}

func TestEvaluate_ReconfiguredBudgetRearms(t *testing.T) {
	repo := newStubRepo(testDefinition(1))
	sink := &stubSink{}
	s := testExpeditionScheduler(repo, sink, &stubNotifier{})

	if err := s.Evaluate(context.Background(), expeditionSnapshot()); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	// The fleet returned and the budget is spent.
	if err := s.Evaluate(context.Background(), expeditionSnapshot()); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(sink.sent) != 1 {
		t.Fatalf("spent budget dispatched again, sent %d", len(sink.sent))
	}

	// The definition is saved again with a fresh repeat budget.
	repo.defs[0].Repeat = 5
	if err := s.Evaluate(context.Background(), expeditionSnapshot()); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(sink.sent) != 2 {
		t.Fatalf("fresh budget ignored, sent %d", len(sink.sent))
	}
	if got := repo.states["exp-1"].Remaining; got != 4 {
		t.Fatalf("expected remaining 4 after re-arm, got %d", got)
	}
}

func TestEvaluate_RunningFleetBlocksRedispatch(t *testing.T) {
	repo := newStubRepo(testDefinition(warden.RepeatForever))
	repo.states["exp-1"] = warden.ExpeditionRunState{
		DefinitionID: "exp-1", FleetID: 77, Remaining: warden.RepeatForever, Budget: warden.RepeatForever, Phase: warden.PhaseOutbound,
	}
	sink := &stubSink{}
	s := testExpeditionScheduler(repo, sink, &stubNotifier{})

	snap := expeditionSnapshot()
	snap.Fleets = []galaxy.FleetMovement{{ID: 77, Mission: galaxy.MissionExpedition, Origin: origin, Dest: deepSpace}}
	if err := s.Evaluate(context.Background(), snap); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(sink.sent) != 0 {
		t.Fatalf("running definition should not dispatch again")
	}
}

func TestEvaluate_SettlesReturnedFleet(t *testing.T) {
	repo := newStubRepo(testDefinition(1))
	repo.states["exp-1"] = warden.ExpeditionRunState{
		DefinitionID: "exp-1", FleetID: 77, Remaining: 0, Budget: 1, Phase: warden.PhaseOutbound,
	}
	notifier := &stubNotifier{}
	s := testExpeditionScheduler(repo, &stubSink{}, notifier)

	// The fleet is gone from the movement page, so the run completed.
	if err := s.Evaluate(context.Background(), expeditionSnapshot()); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	st := repo.states["exp-1"]
	if st.Running() || st.Phase != warden.PhaseIdle {
		t.Fatalf("expected idle state, got %+v", st)
	}
	if !notifier.saw(warden.NotifyExpeditionDone) {
		t.Fatalf("expected completion notification, got %v", notifier.kinds)
	}
}

func TestEvaluate_AdoptsMatchingUnassignedFleet(t *testing.T) {
	repo := newStubRepo(testDefinition(warden.RepeatForever))
	sink := &stubSink{}
	s := testExpeditionScheduler(repo, sink, &stubNotifier{})

	snap := expeditionSnapshot()
	snap.Fleets = []galaxy.FleetMovement{{
		ID:      91,
		Mission: galaxy.MissionExpedition,
		Origin:  origin,
		Dest:    deepSpace,
		Ships:   galaxy.FleetComposition{galaxy.LargeCargo: 5, galaxy.Pathfinder: 1},
	}}
	if err := s.Evaluate(context.Background(), snap); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if got := repo.states["exp-1"].FleetID; got != 91 {
		t.Fatalf("expected fleet 91 adopted, got %d", got)
	}
	if len(sink.sent) != 0 {
		t.Fatalf("adopted definition should not dispatch")
	}
}

func TestEvaluate_OriginUnderAttackPostpones(t *testing.T) {
	repo := newStubRepo(testDefinition(2))
	sink := &stubSink{}
	s := testExpeditionScheduler(repo, sink, &stubNotifier{})

	snap := expeditionSnapshot()
	snap.Events = []galaxy.FleetEvent{{
		ID: 1, Mission: galaxy.MissionAttack, Origin: foreign, Dest: origin,
		ArrivalAt: expNow.Add(30 * time.Minute),
	}}
	if err := s.Evaluate(context.Background(), snap); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(sink.sent) != 0 {
		t.Fatalf("threatened origin should postpone expeditions")
	}
	if got := repo.states["exp-1"].Remaining; got != 2 {
		t.Fatalf("postponed dispatch must not burn budget, got %d", got)
	}
}

func TestEvaluate_CargoOverCapacityDisables(t *testing.T) {
	def := testDefinition(5)
	def.Cargo = galaxy.Resources{Metal: 10000000}
	repo := newStubRepo(def)
	notifier := &stubNotifier{}
	s := testExpeditionScheduler(repo, &stubSink{}, notifier)

	if err := s.Evaluate(context.Background(), expeditionSnapshot()); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if got := repo.states["exp-1"].Remaining; got != 0 {
		t.Fatalf("impossible cargo should zero the budget, got %d", got)
	}
	if !notifier.saw(warden.NotifyExpeditionDone) {
		t.Fatalf("expected operator notification, got %v", notifier.kinds)
	}
}

func TestEvaluate_NoFreeSlots(t *testing.T) {
	repo := newStubRepo(testDefinition(2))
	sink := &stubSink{}
	s := testExpeditionScheduler(repo, sink, &stubNotifier{})

	snap := expeditionSnapshot()
	snap.FreeExpeditionSlot = 0
	if err := s.Evaluate(context.Background(), snap); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(sink.sent) != 0 {
		t.Fatalf("no dispatch expected without expedition slots")
	}
}

func TestActiveDestinationsAndOrigins(t *testing.T) {
	a := testDefinition(1)
	b := testDefinition(1)
	b.ID = "exp-2"
	b.Origin = galaxy.Coordinate{Galaxy: 1, System: 101, Position: 5, Type: galaxy.TypePlanet}
	disabled := testDefinition(1)
	disabled.ID = "exp-3"
	disabled.Enabled = false
	repo := newStubRepo(a, b, disabled)
	s := testExpeditionScheduler(repo, &stubSink{}, &stubNotifier{})

	dests, err := s.ActiveDestinations(context.Background())
	if err != nil {
		t.Fatalf("ActiveDestinations error: %v", err)
	}
	if len(dests) != 2 {
		t.Fatalf("expected 2 destinations, got %v", dests)
	}

	origins, err := s.OriginsFor(context.Background(), deepSpace)
	if err != nil {
		t.Fatalf("OriginsFor error: %v", err)
	}
	if len(origins) != 1 || origins[0] != origin {
		t.Fatalf("expected only exp-1's origin, got %v", origins)
	}
}

type stubRepo struct {
	defs   []warden.ExpeditionDefinition
	states map[string]warden.ExpeditionRunState
}

func newStubRepo(defs ...warden.ExpeditionDefinition) *stubRepo {
	return &stubRepo{defs: defs, states: map[string]warden.ExpeditionRunState{}}
}

func (r *stubRepo) ListDefinitions(_ context.Context) ([]warden.ExpeditionDefinition, error) {
	return r.defs, nil
}

func (r *stubRepo) SaveDefinition(_ context.Context, def warden.ExpeditionDefinition) error {
	r.defs = append(r.defs, def)
	return nil
}

func (r *stubRepo) DeleteDefinition(_ context.Context, definitionID string) error {
	return ports.ErrNotFound
}

func (r *stubRepo) GetRunState(_ context.Context, definitionID string) (warden.ExpeditionRunState, error) {
	st, ok := r.states[definitionID]
	if !ok {
		return warden.ExpeditionRunState{}, ports.ErrNotFound
	}
	return st, nil
}

func (r *stubRepo) SaveRunState(_ context.Context, state warden.ExpeditionRunState) error {
	r.states[state.DefinitionID] = state
	return nil
}

type stubSink struct {
	sendErr error
	nextID  galaxy.MissionID
	sent    []ports.FleetCommand
}

func (s *stubSink) SendFleet(_ context.Context, cmd ports.FleetCommand) (galaxy.MissionID, error) {
	if s.sendErr != nil {
		return 0, s.sendErr
	}
	s.nextID++
	s.sent = append(s.sent, cmd)
	return s.nextID, nil
}

func (s *stubSink) RecallFleet(_ context.Context, _ galaxy.MissionID) error { return nil }

type stubNotifier struct {
	kinds []warden.NotificationKind
}

func (n *stubNotifier) Notify(_ context.Context, record warden.Notification) {
	n.kinds = append(n.kinds, record.Kind)
}

func (n *stubNotifier) saw(kind warden.NotificationKind) bool {
	for _, k := range n.kinds {
		if k == kind {
			return true
		}
	}
	return false
}
