package ports

import (
	"context"

	"fleetwarden/internal/domain/warden"
)

type ExpeditionRepository interface {
	ListDefinitions(ctx context.Context) ([]warden.ExpeditionDefinition, error)
	GetRunState(ctx context.Context, definitionID string) (warden.ExpeditionRunState, error)
	SaveRunState(ctx context.Context, state warden.ExpeditionRunState) error
	DeleteDefinition(ctx context.Context, definitionID string) error
	SaveDefinition(ctx context.Context, def warden.ExpeditionDefinition) error
}

type NotificationRepository interface {
	Append(ctx context.Context, n warden.Notification) error
	ListRecent(ctx context.Context, limit int) ([]warden.Notification, error)
}
