package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/domain/galaxy"
	"fleetwarden/internal/domain/warden"
)

func TestStore_DefinitionsRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	origin := galaxy.Coordinate{Galaxy: 1, System: 100, Position: 8, Type: galaxy.TypePlanet}

	for _, id := range []string{"exp-b", "exp-a"} {
		def := warden.ExpeditionDefinition{
			ID:      id,
			Origin:  origin,
			Ships:   galaxy.FleetComposition{galaxy.LargeCargo: 3},
			Speed:   100,
			Repeat:  warden.RepeatForever,
			Enabled: true,
		}
		if err := s.SaveDefinition(ctx, def); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	defs, err := s.ListDefinitions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 2 || defs[0].ID != "exp-a" || defs[1].ID != "exp-b" {
		t.Fatalf("expected sorted definitions, got %+v", defs)
	}

	if err := s.DeleteDefinition(ctx, "exp-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteDefinition(ctx, "exp-a"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestStore_RunStates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.GetRunState(ctx, "exp-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for fresh state, got %v", err)
	}

	st := warden.ExpeditionRunState{
		DefinitionID: "exp-1",
		FleetID:      42,
		Remaining:    3,
		Phase:        warden.PhaseOutbound,
	}
	if err := s.SaveRunState(ctx, st); err != nil {
		t.Fatalf("save state: %v", err)
	}
	got, err := s.GetRunState(ctx, "exp-1")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if got != st {
		t.Fatalf("state mismatch: got=%+v want=%+v", got, st)
	}
}

func TestStore_DeleteDefinitionDropsRunState(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.SaveDefinition(ctx, warden.ExpeditionDefinition{ID: "exp-1"}); err != nil {
		t.Fatalf("save def: %v", err)
	}
	if err := s.SaveRunState(ctx, warden.ExpeditionRunState{DefinitionID: "exp-1"}); err != nil {
		t.Fatalf("save state: %v", err)
	}
	if err := s.DeleteDefinition(ctx, "exp-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetRunState(ctx, "exp-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected run state gone, got %v", err)
	}
}

func TestStore_Notifications(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	kinds := []warden.NotificationKind{
		warden.NotifyThreatDetected,
		warden.NotifyFleetSaved,
		warden.NotifyThreatCleared,
	}
	for i, kind := range kinds {
		err := s.Append(ctx, warden.Notification{Kind: kind, OccurredAt: base.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recent, err := s.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(recent))
	}
	// Chronological order, keeping the newest entries.
	if recent[0].Kind != warden.NotifyFleetSaved || recent[1].Kind != warden.NotifyThreatCleared {
		t.Fatalf("unexpected window: %v %v", recent[0].Kind, recent[1].Kind)
	}

	all, err := s.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3, got %d", len(all))
	}
}
