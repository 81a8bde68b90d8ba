package ports

import (
	"context"

	"fleetwarden/internal/domain/warden"
)

// Notifier receives structured notifications for the operator. It must not
// block the decision cycle; slow deliveries are the adapter's problem.
type Notifier interface {
	Notify(ctx context.Context, n warden.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n warden.Notification)

func (f NotifierFunc) Notify(ctx context.Context, n warden.Notification) {
	f(ctx, n)
}
