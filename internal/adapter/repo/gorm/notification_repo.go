package gormrepo

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"fleetwarden/internal/adapter/repo/gorm/model"
	"fleetwarden/internal/domain/warden"
)

type NotificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return NotificationRepo{db: db}
}

func (r NotificationRepo) Append(ctx context.Context, n warden.Notification) error {
	details := ""
	if len(n.Details) > 0 {
		raw, err := json.Marshal(n.Details)
		if err == nil {
			details = string(raw)
		}
	}
	row := model.Notification{
		Kind:        string(n.Kind),
		Body:        n.Body,
		OccurredAt:  n.OccurredAt,
		DetailsJSON: details,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r NotificationRepo) ListRecent(ctx context.Context, limit int) ([]warden.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []model.Notification
	if err := r.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]warden.Notification, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		n := warden.Notification{
			Kind:       warden.NotificationKind(row.Kind),
			Body:       row.Body,
			OccurredAt: row.OccurredAt,
		}
		if row.DetailsJSON != "" {
			var details map[string]any
			if err := json.Unmarshal([]byte(row.DetailsJSON), &details); err == nil {
				n.Details = details
			}
		}
		out = append(out, n)
	}
	return out, nil
}
