package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fleetwarden/internal/adapter/repo/gorm/model"
	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/domain/galaxy"
	"fleetwarden/internal/domain/warden"
)

type ExpeditionRepo struct {
	db *gorm.DB
}

func NewExpeditionRepo(db *gorm.DB) ExpeditionRepo {
	return ExpeditionRepo{db: db}
}

func (r ExpeditionRepo) ListDefinitions(ctx context.Context) ([]warden.ExpeditionDefinition, error) {
	var rows []model.ExpeditionDefinition
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]warden.ExpeditionDefinition, 0, len(rows))
	for _, row := range rows {
		def, err := definitionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

func (r ExpeditionRepo) SaveDefinition(ctx context.Context, def warden.ExpeditionDefinition) error {
	row, err := rowFromDefinition(def)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r ExpeditionRepo) DeleteDefinition(ctx context.Context, definitionID string) error {
	res := r.db.WithContext(ctx).Delete(&model.ExpeditionDefinition{}, "id = ?", definitionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	r.db.WithContext(ctx).Delete(&model.ExpeditionRunState{}, "definition_id = ?", definitionID)
	return nil
}

func (r ExpeditionRepo) GetRunState(ctx context.Context, definitionID string) (warden.ExpeditionRunState, error) {
	var row model.ExpeditionRunState
	err := r.db.WithContext(ctx).First(&row, "definition_id = ?", definitionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return warden.ExpeditionRunState{}, ports.ErrNotFound
	}
	if err != nil {
		return warden.ExpeditionRunState{}, err
	}
	state := warden.ExpeditionRunState{
		DefinitionID: row.DefinitionID,
		FleetID:      galaxy.MissionID(row.FleetID),
		Remaining:    row.Remaining,
		Budget:       row.Budget,
		Phase:        warden.ExpeditionPhase(row.Phase),
	}
	if row.LastSentAt != nil {
		state.LastSentAt = *row.LastSentAt
	}
	return state, nil
}

func (r ExpeditionRepo) SaveRunState(ctx context.Context, state warden.ExpeditionRunState) error {
	row := model.ExpeditionRunState{
		DefinitionID: state.DefinitionID,
		FleetID:      int64(state.FleetID),
		Remaining:    state.Remaining,
		Budget:       state.Budget,
		Phase:        string(state.Phase),
	}
	if !state.LastSentAt.IsZero() {
		t := state.LastSentAt
		row.LastSentAt = &t
	}
	return r.db.WithContext(ctx).Save(&row).Error
}

func definitionFromRow(row model.ExpeditionDefinition) (warden.ExpeditionDefinition, error) {
	var ships galaxy.FleetComposition
	if row.ShipsJSON != "" {
		if err := json.Unmarshal([]byte(row.ShipsJSON), &ships); err != nil {
			return warden.ExpeditionDefinition{}, fmt.Errorf("decode ships for %s: %w", row.ID, err)
		}
	}
	def := warden.ExpeditionDefinition{
		ID: row.ID,
		Origin: galaxy.Coordinate{
			Galaxy:   row.OriginGalaxy,
			System:   row.OriginSystem,
			Position: row.OriginPosition,
			Type:     galaxy.BodyType(row.OriginType),
		},
		Ships: ships,
		Cargo: galaxy.Resources{
			Metal:     row.CargoMetal,
			Crystal:   row.CargoCrystal,
			Deuterium: row.CargoDeuterium,
		},
		Speed:   row.Speed,
		Holding: time.Duration(row.HoldingSeconds) * time.Second,
		Repeat:  row.Repeat,
		Enabled: row.Enabled,
	}
	if row.HasDest {
		def.Dest = &galaxy.Coordinate{
			Galaxy:   row.DestGalaxy,
			System:   row.DestSystem,
			Position: row.DestPosition,
			Type:     galaxy.BodyType(row.DestType),
		}
	}
	return def, nil
}

func rowFromDefinition(def warden.ExpeditionDefinition) (model.ExpeditionDefinition, error) {
	ships, err := json.Marshal(def.Ships)
	if err != nil {
		return model.ExpeditionDefinition{}, fmt.Errorf("encode ships for %s: %w", def.ID, err)
	}
	row := model.ExpeditionDefinition{
		ID:             def.ID,
		OriginGalaxy:   def.Origin.Galaxy,
		OriginSystem:   def.Origin.System,
		OriginPosition: def.Origin.Position,
		OriginType:     int(def.Origin.Type),
		ShipsJSON:      string(ships),
		CargoMetal:     def.Cargo.Metal,
		CargoCrystal:   def.Cargo.Crystal,
		CargoDeuterium: def.Cargo.Deuterium,
		Speed:          def.Speed,
		HoldingSeconds: int64(def.Holding / time.Second),
		Repeat:         def.Repeat,
		Enabled:        def.Enabled,
	}
	if def.Dest != nil {
		row.HasDest = true
		row.DestGalaxy = def.Dest.Galaxy
		row.DestSystem = def.Dest.System
		row.DestPosition = def.Dest.Position
		row.DestType = int(def.Dest.Type)
	}
	return row, nil
}
