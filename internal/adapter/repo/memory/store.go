// Package memory backs the expedition catalog and notification log with
// in-process maps, for tests and database-less runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/domain/warden"
)

type Store struct {
	mu            sync.RWMutex
	definitions   map[string]warden.ExpeditionDefinition
	runStates     map[string]warden.ExpeditionRunState
	notifications []warden.Notification
}

func NewStore() *Store {
	return &Store{
		definitions: map[string]warden.ExpeditionDefinition{},
		runStates:   map[string]warden.ExpeditionRunState{},
	}
}

func (s *Store) ListDefinitions(_ context.Context) ([]warden.ExpeditionDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]warden.ExpeditionDefinition, 0, len(s.definitions))
	for _, def := range s.definitions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveDefinition(_ context.Context, def warden.ExpeditionDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions[def.ID] = def
	return nil
}

func (s *Store) DeleteDefinition(_ context.Context, definitionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.definitions[definitionID]; !ok {
		return ports.ErrNotFound
	}
	delete(s.definitions, definitionID)
	delete(s.runStates, definitionID)
	return nil
}

func (s *Store) GetRunState(_ context.Context, definitionID string) (warden.ExpeditionRunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.runStates[definitionID]
	if !ok {
		return warden.ExpeditionRunState{}, ports.ErrNotFound
	}
	return st, nil
}

func (s *Store) SaveRunState(_ context.Context, state warden.ExpeditionRunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runStates[state.DefinitionID] = state
	return nil
}

func (s *Store) Append(_ context.Context, n warden.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *Store) ListRecent(_ context.Context, limit int) ([]warden.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.notifications) {
		limit = len(s.notifications)
	}
	out := make([]warden.Notification, limit)
	copy(out, s.notifications[len(s.notifications)-limit:])
	return out, nil
}
