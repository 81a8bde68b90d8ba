package ports

import (
	"context"
	"time"

	"fleetwarden/internal/domain/galaxy"
)

// SnapshotProvider yields one internally consistent account snapshot per
// call. The agent never mixes data from two snapshots in one decision.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (galaxy.Snapshot, error)
}

// FleetCommand is a request to dispatch a fleet.
type FleetCommand struct {
	Origin  galaxy.Coordinate
	Dest    galaxy.Coordinate
	Ships   galaxy.FleetComposition
	Cargo   galaxy.Resources
	Speed   int // percent, 10..100
	Mission galaxy.Mission
	Holding time.Duration
}

// CommandSink accepts fleet commands on behalf of the game server. A
// returned error means the command did not take effect; the caller may
// retry with recomputed parameters next cycle.
type CommandSink interface {
	SendFleet(ctx context.Context, cmd FleetCommand) (galaxy.MissionID, error)
	RecallFleet(ctx context.Context, id galaxy.MissionID) error
}

// GalaxyScanner exposes galaxy-view reads, used only to locate expedition
// debris fields.
type GalaxyScanner interface {
	DebrisIn(ctx context.Context, galaxyIdx, system int) ([]galaxy.DebrisField, error)
}
