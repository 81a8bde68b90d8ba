// Package ratelimit paces outbound game commands so the agent respects
// the server's limits and keeps its footprint unremarkable.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"fleetwarden/internal/app/ports"
	"fleetwarden/internal/domain/galaxy"
)

// Sink wraps a CommandSink, spacing requests at least MinDelay apart and
// bounding each call with Timeout.
type Sink struct {
	Next    ports.CommandSink
	limiter *rate.Limiter
	timeout time.Duration
}

func NewSink(next ports.CommandSink, minDelay, timeout time.Duration) *Sink {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &Sink{
		Next:    next,
		limiter: rate.NewLimiter(limit, 1),
		timeout: timeout,
	}
}

func (s *Sink) SendFleet(ctx context.Context, cmd ports.FleetCommand) (galaxy.MissionID, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Next.SendFleet(ctx, cmd)
}

func (s *Sink) RecallFleet(ctx context.Context, id galaxy.MissionID) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Next.RecallFleet(ctx, id)
}

func (s *Sink) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
