// Package mock provides scripted stand-ins for the game-side ports, used
// by tests and by the db-less demo mode.
package mock

import (
	"context"
	"sync"

	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/domain/galaxy"
)

// Provider serves a fixed snapshot, or a sequence of snapshots one per
// call when Script is set.
type Provider struct {
	Snap   galaxy.Snapshot
	Script []galaxy.Snapshot
	Err    error

	mu   sync.Mutex
	call int
}

func (p *Provider) Snapshot(_ context.Context) (galaxy.Snapshot, error) {
	if p.Err != nil {
		return galaxy.Snapshot{}, p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Script) > 0 {
		i := p.call
		if i >= len(p.Script) {
			i = len(p.Script) - 1
		}
		p.call++
		return p.Script[i], nil
	}
	return p.Snap, nil
}

// SentCommand is one recorded SendFleet call.
type SentCommand struct {
	ID  galaxy.MissionID
	Cmd ports.FleetCommand
}

// Sink records commands and hands out sequential mission ids.
type Sink struct {
	SendErr   error
	RecallErr error

	mu       sync.Mutex
	nextID   galaxy.MissionID
	Sent     []SentCommand
	Recalled []galaxy.MissionID
}

func (s *Sink) SendFleet(_ context.Context, cmd ports.FleetCommand) (galaxy.MissionID, error) {
	if s.SendErr != nil {
		return 0, s.SendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.Sent = append(s.Sent, SentCommand{ID: s.nextID, Cmd: cmd})
	return s.nextID, nil
}

func (s *Sink) RecallFleet(_ context.Context, id galaxy.MissionID) error {
	if s.RecallErr != nil {
		return s.RecallErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Recalled = append(s.Recalled, id)
	return nil
}

// Scanner serves canned debris fields per (galaxy, system).
type Scanner struct {
	Fields map[[2]int][]galaxy.DebrisField
	Err    error
}

func (s *Scanner) DebrisIn(_ context.Context, galaxyIdx, system int) ([]galaxy.DebrisField, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Fields[[2]int{galaxyIdx, system}], nil
}
