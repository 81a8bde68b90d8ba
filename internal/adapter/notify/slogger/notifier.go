// Package slogger delivers agent notifications to the structured log and
// optionally tees them into a repository for the ops API.
package slogger

import (
	"context"
	"log/slog"

	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/domain/warden"
)

type Notifier struct {
	Log  *slog.Logger
	Repo ports.NotificationRepository
}

func (n Notifier) Notify(ctx context.Context, record warden.Notification) {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	attrs := []any{
		"kind", string(record.Kind),
		"body", record.Body,
	}
	for k, v := range record.Details {
		attrs = append(attrs, k, v)
	}
	switch record.Kind {
	case warden.NotifyNoFeasibleRescue, warden.NotifyCommandFailed, warden.NotifyProviderDegraded:
		log.Warn("agent notification", attrs...)
	default:
		log.Info("agent notification", attrs...)
	}
	if n.Repo != nil {
		if err := n.Repo.Append(ctx, record); err != nil {
			log.Warn("failed to persist notification", "err", err)
		}
	}
}
